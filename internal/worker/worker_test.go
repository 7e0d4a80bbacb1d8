package worker

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/protocol"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/solver"
)

// startWorker runs a worker on an ephemeral port and returns a connected
// master-side Conn plus the channel Serve's outcome lands on.
func startWorker(t *testing.T) (*protocol.Conn, chan error) {
	t.Helper()
	w, err := New("127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Serve() }()

	nc, err := net.Dial("tcp", w.Addr())
	require.NoError(t, err)
	conn := protocol.NewConn(nc)
	t.Cleanup(func() { conn.Close() })
	return conn, done
}

// testAssign is a valid assignment of rows [1,5) of a 10x4 grid.
func testAssign() *protocol.Assign {
	block := make([][]float64, 4)
	for i := range block {
		block[i] = []float64{0, float64(i), float64(i * 2), 0}
	}
	return &protocol.Assign{
		Rows: 10, Cols: 4, Iterations: 3,
		RowStart: 1, RowEnd: 5,
		Block: block,
	}
}

// serveResult waits for Serve to finish.
func serveResult(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish")
		return nil
	}
}

// TestWorkerComputesIteration verifies the full session happy path: assign,
// one iterate/result exchange matching the kernel exactly, then stop.
func TestWorkerComputesIteration(t *testing.T) {
	conn, done := startWorker(t)
	assign := testAssign()
	require.NoError(t, conn.Send(protocol.KindAssign, assign))

	top := []float64{1, 1, 1, 1}
	bottom := []float64{2, 2, 2, 2}
	req := &protocol.Iterate{Iteration: 0, Block: assign.Block, Top: top, Bottom: bottom}
	require.NoError(t, conn.Send(protocol.KindIterate, req))

	kind, payload, err := conn.Recv()
	require.NoError(t, err)
	require.Equal(t, protocol.KindResult, kind)
	res := payload.(*protocol.Result)
	assert.Equal(t, 0, res.Iteration)
	assert.Equal(t, solver.StepBlock(assign.Block, top, bottom), res.Block)

	require.NoError(t, conn.Send(protocol.KindStop, nil))
	assert.NoError(t, serveResult(t, done))
}

// TestWorkerSecondConnectionRefused verifies one worker serves exactly one
// session: once the master's connection is in, further dials are refused.
func TestWorkerSecondConnectionRefused(t *testing.T) {
	w, err := New("127.0.0.1:0")
	require.NoError(t, err)
	addr := w.Addr()

	done := make(chan error, 1)
	go func() { done <- w.Serve() }()

	nc, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	conn := protocol.NewConn(nc)
	defer conn.Close()

	// Round-trip once so the accept (and the listener close behind it) has
	// definitely happened.
	require.NoError(t, conn.Send(protocol.KindAssign, testAssign()))
	req := &protocol.Iterate{
		Iteration: 0,
		Block:     testAssign().Block,
		Top:       []float64{0, 0, 0, 0},
		Bottom:    []float64{0, 0, 0, 0},
	}
	require.NoError(t, conn.Send(protocol.KindIterate, req))
	_, _, err = conn.Recv()
	require.NoError(t, err)

	second, err := net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		second.Close()
	}
	assert.Error(t, err, "second connection should be refused")

	require.NoError(t, conn.Send(protocol.KindStop, nil))
	assert.NoError(t, serveResult(t, done))
}

// TestWorkerStop verifies stop in the ready state ends the session cleanly
// and that talking to the stopped worker is a connection error, not a crash.
func TestWorkerStop(t *testing.T) {
	conn, done := startWorker(t)
	require.NoError(t, conn.Send(protocol.KindAssign, testAssign()))
	require.NoError(t, conn.Send(protocol.KindStop, nil))
	assert.NoError(t, serveResult(t, done))

	// The worker closed its end; a subsequent message either fails to send
	// or is never answered.
	_ = conn.Send(protocol.KindIterate, &protocol.Iterate{})
	_, _, err := conn.Recv()
	assert.Error(t, err)
}

// TestWorkerStopBeforeAssign verifies a stop is obeyed in any state.
func TestWorkerStopBeforeAssign(t *testing.T) {
	conn, done := startWorker(t)
	require.NoError(t, conn.Send(protocol.KindStop, nil))
	assert.NoError(t, serveResult(t, done))
}

// TestWorkerRejectsIterateBeforeAssign verifies the session demands an
// assignment first.
func TestWorkerRejectsIterateBeforeAssign(t *testing.T) {
	conn, done := startWorker(t)
	require.NoError(t, conn.Send(protocol.KindIterate, &protocol.Iterate{Iteration: 0}))

	err := serveResult(t, done)
	var perr *protocol.ProtocolError
	require.ErrorAs(t, err, &perr)

	// And the worker hung up on us.
	_, _, err = conn.Recv()
	assert.Error(t, err)
}

// TestWorkerRejectsShapeMismatch verifies a block that disagrees with the
// session's established range is fatal.
func TestWorkerRejectsShapeMismatch(t *testing.T) {
	conn, done := startWorker(t)
	require.NoError(t, conn.Send(protocol.KindAssign, testAssign()))

	// Wrong height: three rows instead of four.
	bad := &protocol.Iterate{
		Iteration: 0,
		Block:     [][]float64{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		Top:       []float64{0, 0, 0, 0},
		Bottom:    []float64{0, 0, 0, 0},
	}
	require.NoError(t, conn.Send(protocol.KindIterate, bad))

	err := serveResult(t, done)
	var perr *protocol.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, protocol.KindIterate, perr.Kind)
}

// TestWorkerRejectsBadAssign verifies assignments outside the grid interior
// or with mismatched initial values are fatal.
func TestWorkerRejectsBadAssign(t *testing.T) {
	for name, mutate := range map[string]func(*protocol.Assign){
		"range outside interior": func(a *protocol.Assign) { a.RowEnd = 10 },
		"empty range":            func(a *protocol.Assign) { a.RowEnd = a.RowStart },
		"block height mismatch":  func(a *protocol.Assign) { a.Block = a.Block[:2] },
		"no interior":            func(a *protocol.Assign) { a.Cols = 2 },
	} {
		t.Run(name, func(t *testing.T) {
			conn, done := startWorker(t)
			a := testAssign()
			mutate(a)
			require.NoError(t, conn.Send(protocol.KindAssign, a))

			err := serveResult(t, done)
			var perr *protocol.ProtocolError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, protocol.KindAssign, perr.Kind)
		})
	}
}

// TestWorkerClose verifies closing an idle worker unblocks Serve.
func TestWorkerClose(t *testing.T) {
	w, err := New("127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Serve() }()
	require.NoError(t, w.Close())

	assert.Error(t, serveResult(t, done))
}
