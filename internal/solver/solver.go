// Package solver implements the shared Jacobi stencil kernel and the
// single-process execution strategies: a sequential double-buffered sweep and
// a threaded variant that fans the same sweep out over disjoint row bands
// with a join-all barrier between iterations.
package solver

import (
	"fmt"
	"sync"
	"time"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/grid"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/partition"
)

// Result is what every strategy returns: the final grid and the wall-clock
// duration of the iteration loop only (setup and teardown excluded).
type Result struct {
	Grid    grid.Grid
	Elapsed time.Duration
}

// RunSequential runs the fixed-iteration Jacobi sweep in a single goroutine
// using two buffers swapped each iteration. Grids smaller than 3x3 have no
// interior cells and are returned unchanged after zero sweeps.
func RunSequential(rows, cols, iterations int, boundary float64, hot *grid.HotRegion) (Result, error) {
	if err := checkDimensions(rows, cols, iterations); err != nil {
		return Result{}, err
	}
	cur := grid.NewInitial(rows, cols, boundary, hot)
	next := cur.Clone()

	start := time.Now()
	if rows >= 3 && cols >= 3 {
		for k := 0; k < iterations; k++ {
			StepRange(cur, next, 1, rows-1)
			cur, next = next, cur
		}
	}
	return Result{Grid: cur, Elapsed: time.Since(start)}, nil
}

// RunThreaded runs the same sweep with the interior rows partitioned into one
// disjoint band per goroutine. Each goroutine writes only its own band of the
// scratch buffer, so no locking is needed; a WaitGroup join between
// iterations is the barrier that keeps the sweep a true Jacobi step.
func RunThreaded(rows, cols, iterations, threads int, boundary float64, hot *grid.HotRegion) (Result, error) {
	if err := checkDimensions(rows, cols, iterations); err != nil {
		return Result{}, err
	}
	var blocks []partition.Block
	if rows >= 3 && cols >= 3 {
		var err error
		blocks, err = partition.Blocks(rows, threads)
		if err != nil {
			return Result{}, err
		}
	}
	cur := grid.NewInitial(rows, cols, boundary, hot)
	next := cur.Clone()

	start := time.Now()
	if rows >= 3 && cols >= 3 {
		for k := 0; k < iterations; k++ {
			var wg sync.WaitGroup
			for _, b := range blocks {
				wg.Add(1)
				go func(c, n grid.Grid, b partition.Block) {
					defer wg.Done()
					StepRange(c, n, b.Start, b.End)
				}(cur, next, b)
			}
			wg.Wait()
			cur, next = next, cur
		}
	}
	return Result{Grid: cur, Elapsed: time.Since(start)}, nil
}

func checkDimensions(rows, cols, iterations int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if iterations < 0 {
		return fmt.Errorf("iteration count must not be negative, got %d", iterations)
	}
	return nil
}
