package master

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/DistributedClocks/GoVector/govec"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/grid"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/partition"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/protocol"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/solver"
)

// Defaults for the connection and reply policies. Dial retries exist because
// workers and master are usually launched together and the workers may not
// be listening yet; the reply deadline exists so a silent worker fails the
// run instead of stalling it forever.
const (
	DefaultDialAttempts = 10
	DefaultDialDelay    = 400 * time.Millisecond
	DefaultDialTimeout  = 2 * time.Second
	DefaultReplyTimeout = 30 * time.Second
)

// Config describes one distributed run.
type Config struct {
	Rows       int
	Cols       int
	Iterations int

	// Workers lists the worker addresses. Block i of the partition is
	// assigned to address i, so the spatial layout is fixed by this order.
	Workers []string

	// Boundary is the fixed border temperature; Hot optionally seeds a
	// rectangular region of the initial grid.
	Boundary float64
	Hot      *grid.HotRegion

	// DialAttempts/DialDelay/ReplyTimeout default to the package constants
	// when zero.
	DialAttempts int
	DialDelay    time.Duration
	ReplyTimeout time.Duration

	// Trace, when non-empty, names this process in a GoVector vector-clock
	// trace of every protocol message. Workers must trace as well.
	Trace string
}

// WorkerError reports which worker a distributed run failed on.
type WorkerError struct {
	Index int
	Addr  string
	Err   error
}

// Error implements the error interface.
func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d (%s): %v", e.Index, e.Addr, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *WorkerError) Unwrap() error {
	return e.Err
}

// session is one connected worker and the block it owns.
type session struct {
	conn  *protocol.Conn
	block partition.Block
	addr  string
}

// Run executes one distributed simulation: partition, connect, assign, then
// the fixed number of barrier-synchronized iteration rounds, then stop. The
// returned Result's Elapsed covers only the iteration loop, matching what
// the sequential and threaded runners measure.
func Run(cfg Config) (solver.Result, error) {
	if cfg.Rows < 3 || cfg.Cols < 3 {
		return solver.Result{}, fmt.Errorf("grid must be at least 3x3 for a distributed run, got %dx%d", cfg.Rows, cfg.Cols)
	}
	if cfg.Iterations < 0 {
		return solver.Result{}, fmt.Errorf("iteration count must not be negative, got %d", cfg.Iterations)
	}
	if len(cfg.Workers) == 0 {
		return solver.Result{}, fmt.Errorf("no worker addresses configured")
	}
	blocks, err := partition.Blocks(cfg.Rows, len(cfg.Workers))
	if err != nil {
		return solver.Result{}, err
	}

	var tracer *govec.GoLog
	if cfg.Trace != "" {
		tracer = protocol.NewTracer(cfg.Trace)
	}

	sessions, err := connect(cfg, blocks, tracer)
	if err != nil {
		return solver.Result{}, err
	}
	defer func() {
		for _, s := range sessions {
			s.conn.Close()
		}
	}()

	cur := grid.NewInitial(cfg.Rows, cfg.Cols, cfg.Boundary, cfg.Hot)
	next := cur.Clone()

	// Initial assignment: each worker learns its range and initial values
	// before the clock starts.
	for i, s := range sessions {
		assign := &protocol.Assign{
			Rows:       cfg.Rows,
			Cols:       cfg.Cols,
			Iterations: cfg.Iterations,
			RowStart:   s.block.Start,
			RowEnd:     s.block.End,
			Block:      cur.Block(s.block.Start, s.block.End),
		}
		if err := s.conn.Send(protocol.KindAssign, assign); err != nil {
			return solver.Result{}, &WorkerError{Index: i, Addr: s.addr, Err: err}
		}
	}

	replyTimeout := cfg.ReplyTimeout
	if replyTimeout <= 0 {
		replyTimeout = DefaultReplyTimeout
	}

	start := time.Now()
	for k := 0; k < cfg.Iterations; k++ {
		// Ship round k to every worker before reading any reply. The ghost
		// rows come from cur, which holds only round k-1 data until the
		// swap below.
		for i, s := range sessions {
			m := &protocol.Iterate{
				Iteration: k,
				Block:     cur[s.block.Start:s.block.End],
				Top:       cur[s.block.Above],
				Bottom:    cur[s.block.Below],
			}
			if err := s.conn.Send(protocol.KindIterate, m); err != nil {
				return solver.Result{}, &WorkerError{Index: i, Addr: s.addr, Err: err}
			}
		}

		// The barrier: every live worker's round k reply is consumed before
		// round k+1 is built.
		for i, s := range sessions {
			if err := s.conn.SetReadDeadline(time.Now().Add(replyTimeout)); err != nil {
				return solver.Result{}, &WorkerError{Index: i, Addr: s.addr, Err: err}
			}
			res, err := recvResult(s, k, cfg.Cols)
			if err != nil {
				return solver.Result{}, &WorkerError{Index: i, Addr: s.addr, Err: err}
			}
			for r, row := range res.Block {
				copy(next[s.block.Start+r], row)
			}
		}
		cur, next = next, cur
	}
	elapsed := time.Since(start)

	// Shutdown is one-way: write the stop frame and close. A worker that
	// already dropped cannot make the completed run fail.
	for _, s := range sessions {
		_ = s.conn.Send(protocol.KindStop, nil)
	}
	log.Printf("master: %d iterations on %dx%d grid across %d workers in %s",
		cfg.Iterations, cfg.Rows, cfg.Cols, len(sessions), elapsed)

	return solver.Result{Grid: cur, Elapsed: elapsed}, nil
}

// connect dials every worker in address order and pairs it with its block.
// Any worker that stays unreachable aborts the run.
func connect(cfg Config, blocks []partition.Block, tracer *govec.GoLog) ([]*session, error) {
	attempts := cfg.DialAttempts
	if attempts <= 0 {
		attempts = DefaultDialAttempts
	}
	delay := cfg.DialDelay
	if delay <= 0 {
		delay = DefaultDialDelay
	}

	sessions := make([]*session, 0, len(cfg.Workers))
	for i, addr := range cfg.Workers {
		nc, err := dial(addr, attempts, delay)
		if err != nil {
			for _, s := range sessions {
				s.conn.Close()
			}
			return nil, &WorkerError{Index: i, Addr: addr, Err: err}
		}
		conn := protocol.NewConn(nc)
		if tracer != nil {
			conn.SetTrace(tracer)
		}
		sessions = append(sessions, &session{conn: conn, block: blocks[i], addr: addr})
		log.Printf("master: worker %d @ %s owns rows [%d,%d)", i, addr, blocks[i].Start, blocks[i].End)
	}
	return sessions, nil
}

// dial retries the connection to ride out worker startup races.
func dial(addr string, attempts int, delay time.Duration) (net.Conn, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		nc, err := net.DialTimeout("tcp", addr, DefaultDialTimeout)
		if err == nil {
			return nc, nil
		}
		lastErr = err
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("connect after %d attempts: %w", attempts, lastErr)
}

// recvResult reads one reply and checks that it is the result this round and
// block call for.
func recvResult(s *session, iteration, cols int) (*protocol.Result, error) {
	kind, payload, err := s.conn.Recv()
	if err != nil {
		return nil, err
	}
	if kind != protocol.KindResult {
		return nil, &protocol.ProtocolError{Kind: kind, Reason: "expected result"}
	}
	res := payload.(*protocol.Result)
	if res.Iteration != iteration {
		return nil, &protocol.ProtocolError{Kind: kind, Reason: fmt.Sprintf("result for iteration %d, want %d", res.Iteration, iteration)}
	}
	if len(res.Block) != s.block.Height() {
		return nil, &protocol.ProtocolError{Kind: kind, Reason: fmt.Sprintf("result block of %d rows, want %d", len(res.Block), s.block.Height())}
	}
	for i, row := range res.Block {
		if len(row) != cols {
			return nil, &protocol.ProtocolError{Kind: kind, Reason: fmt.Sprintf("result row %d has %d cells, want %d", i, len(row), cols)}
		}
	}
	return res, nil
}
