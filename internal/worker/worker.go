// Package worker implements the distributed worker: a process that owns one
// block of the grid for the duration of a run and computes one Jacobi step
// per request from the master.
//
// A worker serves exactly one session. It accepts a single control
// connection and then closes its listener, so a second connection attempt is
// refused. The session walks a fixed state machine:
//
//	Listening → Connected → Ready → Computing → Ready → … → Stopped
//
// Any malformed message, unexpected kind, or block whose shape disagrees
// with the assigned range is fatal: the worker closes the connection and
// Serve returns the error. There is no restart or resume.
package worker

import (
	"fmt"
	"log"
	"net"

	"github.com/DistributedClocks/GoVector/govec"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/protocol"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/solver"
)

// Worker listens for the master's control connection and serves one session.
type Worker struct {
	ls    net.Listener
	trace *govec.GoLog
}

// New creates a worker listening on the given TCP address. An address with
// port 0 picks a free port; use Addr to discover it.
func New(listen string) (*Worker, error) {
	ls, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", listen, err)
	}
	return &Worker{ls: ls}, nil
}

// Addr returns the address the worker is listening on.
func (w *Worker) Addr() string {
	return w.ls.Addr().String()
}

// SetTrace attaches a GoVector logger to the session's connection.
// Must be called before Serve.
func (w *Worker) SetTrace(lg *govec.GoLog) {
	w.trace = lg
}

// Close closes the listener, unblocking a pending Serve.
func (w *Worker) Close() error {
	return w.ls.Close()
}

// Serve accepts one connection, runs the session on it, and returns when the
// session ends: nil after a stop message, otherwise the fatal error. The
// listener is closed as soon as the connection is accepted, so the session
// is exclusive for the run's lifetime.
func (w *Worker) Serve() error {
	nc, err := w.ls.Accept()
	if err != nil {
		return err
	}
	w.ls.Close()
	defer nc.Close()

	log.Printf("worker[%s]: session from %s", w.Addr(), nc.RemoteAddr())
	conn := protocol.NewConn(nc)
	if w.trace != nil {
		conn.SetTrace(w.trace)
	}
	return w.session(conn)
}

// session runs the per-connection state machine.
func (w *Worker) session(c *protocol.Conn) error {
	kind, payload, err := c.Recv()
	if err != nil {
		return err
	}
	if kind == protocol.KindStop {
		return nil
	}
	if kind != protocol.KindAssign {
		return &protocol.ProtocolError{Kind: kind, Reason: "expected assign before any other message"}
	}

	a := payload.(*protocol.Assign)
	if err := validateAssign(a); err != nil {
		return err
	}
	height := a.RowEnd - a.RowStart
	log.Printf("worker[%s]: assigned rows [%d,%d) of %dx%d grid, %d iterations",
		w.Addr(), a.RowStart, a.RowEnd, a.Rows, a.Cols, a.Iterations)

	for {
		kind, payload, err := c.Recv()
		if err != nil {
			return err
		}
		switch kind {
		case protocol.KindStop:
			log.Printf("worker[%s]: stopped", w.Addr())
			return nil
		case protocol.KindIterate:
			m := payload.(*protocol.Iterate)
			if err := validateIterate(m, height, a.Cols); err != nil {
				return err
			}
			updated := solver.StepBlock(m.Block, m.Top, m.Bottom)
			reply := &protocol.Result{Iteration: m.Iteration, Block: updated}
			if err := c.Send(protocol.KindResult, reply); err != nil {
				return err
			}
		default:
			return &protocol.ProtocolError{Kind: kind, Reason: "unexpected message in ready state"}
		}
	}
}

// validateAssign checks that the assignment describes a block the worker can
// actually own: a non-empty interior row range whose initial values match the
// announced shape.
func validateAssign(a *protocol.Assign) error {
	if a.Rows < 3 || a.Cols < 3 {
		return &protocol.ProtocolError{Kind: protocol.KindAssign, Reason: fmt.Sprintf("grid %dx%d has no interior", a.Rows, a.Cols)}
	}
	if a.RowStart < 1 || a.RowEnd > a.Rows-1 || a.RowStart >= a.RowEnd {
		return &protocol.ProtocolError{Kind: protocol.KindAssign, Reason: fmt.Sprintf("row range [%d,%d) outside interior of %d rows", a.RowStart, a.RowEnd, a.Rows)}
	}
	if err := checkBlockShape(a.Block, a.RowEnd-a.RowStart, a.Cols); err != nil {
		return &protocol.ProtocolError{Kind: protocol.KindAssign, Reason: err.Error()}
	}
	return nil
}

// validateIterate checks an iteration request against the session's
// established range.
func validateIterate(m *protocol.Iterate, height, cols int) error {
	if err := checkBlockShape(m.Block, height, cols); err != nil {
		return &protocol.ProtocolError{Kind: protocol.KindIterate, Reason: err.Error()}
	}
	if len(m.Top) != cols || len(m.Bottom) != cols {
		return &protocol.ProtocolError{Kind: protocol.KindIterate, Reason: fmt.Sprintf("ghost rows of %d and %d cells, want %d", len(m.Top), len(m.Bottom), cols)}
	}
	return nil
}

func checkBlockShape(block [][]float64, height, cols int) error {
	if len(block) != height {
		return fmt.Errorf("block of %d rows, want %d", len(block), height)
	}
	for i, row := range block {
		if len(row) != cols {
			return fmt.Errorf("block row %d has %d cells, want %d", i, len(row), cols)
		}
	}
	return nil
}
