package master

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/grid"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/partition"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/solver"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/worker"
)

// startWorkers runs n in-process workers on ephemeral loopback ports and
// returns their addresses. Cleanup waits for every session to end.
func startWorkers(t *testing.T, n int) []string {
	t.Helper()
	addrs := make([]string, n)
	done := make(chan error, n)
	workers := make([]*worker.Worker, n)
	for i := 0; i < n; i++ {
		w, err := worker.New("127.0.0.1:0")
		require.NoError(t, err)
		workers[i] = w
		addrs[i] = w.Addr()
		go func(w *worker.Worker) { done <- w.Serve() }(w)
	}
	t.Cleanup(func() {
		for _, w := range workers {
			w.Close()
		}
		for i := 0; i < n; i++ {
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Error("worker session did not end")
			}
		}
	})
	return addrs
}

// TestRunMatchesSequential verifies the core numerical property: for the
// same initial conditions and iteration count, the distributed engine
// produces the same grid as the plain sequential sweep, for several worker
// counts.
func TestRunMatchesSequential(t *testing.T) {
	hot := grid.CentralHotRegion(20, 20, 0.2, 100)
	seq, err := solver.RunSequential(20, 20, 50, 100, &hot)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 3} {
		res, err := Run(Config{
			Rows: 20, Cols: 20, Iterations: 50,
			Workers:  startWorkers(t, workers),
			Boundary: 100,
			Hot:      &hot,
		})
		require.NoError(t, err, "workers=%d", workers)
		assert.LessOrEqual(t, grid.MaxDiff(seq.Grid, res.Grid), 1e-9, "workers=%d", workers)
	}
}

// TestRunTwoBlockGhostExchange pins the smaller end-to-end case: a 2-worker
// run over an uneven grid must still match the sequential sweep, which only
// holds if every ghost row crossing the block boundary carries the previous
// iteration's values.
func TestRunTwoBlockGhostExchange(t *testing.T) {
	seq, err := solver.RunSequential(12, 8, 1, 75, nil)
	require.NoError(t, err)

	res, err := Run(Config{
		Rows: 12, Cols: 8, Iterations: 1,
		Workers:  startWorkers(t, 2),
		Boundary: 75,
	})
	require.NoError(t, err)
	assert.Equal(t, seq.Grid, res.Grid)
}

// TestRunBoundaryImmutability verifies the distributed run never rewrites a
// border cell.
func TestRunBoundaryImmutability(t *testing.T) {
	hot := grid.CentralHotRegion(16, 10, 0.3, 100)
	initial := grid.NewInitial(16, 10, 25, &hot)

	res, err := Run(Config{
		Rows: 16, Cols: 10, Iterations: 30,
		Workers:  startWorkers(t, 3),
		Boundary: 25,
		Hot:      &hot,
	})
	require.NoError(t, err)

	for j := 0; j < 10; j++ {
		assert.Equal(t, initial[0][j], res.Grid[0][j], "top border col %d", j)
		assert.Equal(t, initial[15][j], res.Grid[15][j], "bottom border col %d", j)
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, initial[i][0], res.Grid[i][0], "left border row %d", i)
		assert.Equal(t, initial[i][9], res.Grid[i][9], "right border row %d", i)
	}
}

// TestRunInvalidPartition verifies partition errors surface before any
// dialing happens (the addresses here are unreachable on purpose).
func TestRunInvalidPartition(t *testing.T) {
	_, err := Run(Config{
		Rows: 5, Cols: 5, Iterations: 1,
		Workers: []string{"127.0.0.1:1", "127.0.0.1:1", "127.0.0.1:1", "127.0.0.1:1"},
	})
	assert.ErrorIs(t, err, partition.ErrInvalidPartition)
}

// TestRunInvalidConfig verifies the cheap validations.
func TestRunInvalidConfig(t *testing.T) {
	_, err := Run(Config{Rows: 2, Cols: 5, Iterations: 1, Workers: []string{"x"}})
	assert.Error(t, err)

	_, err = Run(Config{Rows: 5, Cols: 5, Iterations: -1, Workers: []string{"x"}})
	assert.Error(t, err)

	_, err = Run(Config{Rows: 5, Cols: 5, Iterations: 1})
	assert.Error(t, err)
}

// TestRunWorkerUnreachable verifies a worker that cannot be dialed fails the
// run with its index and address.
func TestRunWorkerUnreachable(t *testing.T) {
	// A listener we close immediately: the port exists but refuses.
	ls, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ls.Addr().String()
	ls.Close()

	_, err = Run(Config{
		Rows: 10, Cols: 10, Iterations: 1,
		Workers:      []string{addr},
		DialAttempts: 1,
		DialDelay:    time.Millisecond,
	})
	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, 0, werr.Index)
	assert.Equal(t, addr, werr.Addr)
}

// TestRunReplyTimeout verifies the bounded wait: a worker that accepts
// traffic but never replies fails the run instead of stalling it forever.
func TestRunReplyTimeout(t *testing.T) {
	ls, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ls.Close()

	// A silent worker: consumes everything, says nothing.
	go func() {
		nc, err := ls.Accept()
		if err != nil {
			return
		}
		defer nc.Close()
		io.Copy(io.Discard, nc)
	}()

	_, err = Run(Config{
		Rows: 10, Cols: 10, Iterations: 1,
		Workers:      []string{ls.Addr().String()},
		ReplyTimeout: 200 * time.Millisecond,
	})
	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, 0, werr.Index)

	var nerr net.Error
	if errors.As(err, &nerr) {
		assert.True(t, nerr.Timeout())
	}
}

// TestRunWorkerDrops verifies a connection that dies mid-run is fatal with
// the failing worker identified.
func TestRunWorkerDrops(t *testing.T) {
	ls, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ls.Close()

	// Accept, read a little, hang up.
	go func() {
		nc, err := ls.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 64)
		nc.Read(buf)
		nc.Close()
	}()

	_, err = Run(Config{
		Rows: 10, Cols: 10, Iterations: 1,
		Workers:      []string{ls.Addr().String()},
		ReplyTimeout: 2 * time.Second,
	})
	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, 0, werr.Index)
}

// TestRunElapsedExcludesSetup verifies the reported duration covers the
// iteration loop, not connection establishment: a zero-iteration run
// reports (close to) zero.
func TestRunElapsedExcludesSetup(t *testing.T) {
	res, err := Run(Config{
		Rows: 10, Cols: 10, Iterations: 0,
		Workers: startWorkers(t, 2),
	})
	require.NoError(t, err)
	assert.Less(t, res.Elapsed, 100*time.Millisecond)
	assert.Equal(t, grid.NewInitial(10, 10, 0, nil), res.Grid)
}
