// Package grid provides the dense 2D temperature grid shared by every solver
// strategy, along with initial-condition helpers and result summaries.
package grid

import "math"

// Grid is a dense rows x cols matrix of temperatures. Each row is its own
// slice, so a band of rows can be handed out as an exclusive sub-slice with
// no access to neighboring rows through the same handle.
//
// The outermost rows and columns hold fixed boundary values for the whole
// run; solvers never write them.
type Grid [][]float64

// New creates a zeroed rows x cols grid.
func New(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

// NewInitial creates the initial grid for a run: zero interior, border cells
// set to the fixed boundary value, and an optional hot region applied last.
// The hot region may overwrite border cells; whatever the border holds after
// initialization is what stays fixed for the run.
func NewInitial(rows, cols int, boundary float64, hot *HotRegion) Grid {
	g := New(rows, cols)
	for j := 0; j < cols; j++ {
		g[0][j] = boundary
		g[rows-1][j] = boundary
	}
	for i := 0; i < rows; i++ {
		g[i][0] = boundary
		g[i][cols-1] = boundary
	}
	if hot != nil {
		g.ApplyHotRegion(*hot)
	}
	return g
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of columns in the grid.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Block returns a copy of rows [start, end).
func (g Grid) Block(start, end int) [][]float64 {
	out := make([][]float64, end-start)
	for i := start; i < end; i++ {
		row := make([]float64, len(g[i]))
		copy(row, g[i])
		out[i-start] = row
	}
	return out
}

// Checksum returns the sum of every cell, a cheap fingerprint for verifying
// that two runs produced the same grid.
func (g Grid) Checksum() float64 {
	var sum float64
	for _, row := range g {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// MinMax returns the smallest and largest cell values.
// An empty grid reports (0, 0).
func (g Grid) MinMax() (lo, hi float64) {
	if g.Rows() == 0 || g.Cols() == 0 {
		return 0, 0
	}
	lo, hi = g[0][0], g[0][0]
	for _, row := range g {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// MaxDiff returns the largest absolute cell-wise difference between two
// grids of identical shape.
func MaxDiff(a, b Grid) float64 {
	var max float64
	for i, row := range a {
		for j, v := range row {
			if d := math.Abs(v - b[i][j]); d > max {
				max = d
			}
		}
	}
	return max
}
