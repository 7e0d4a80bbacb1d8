package solver

// The Jacobi update rule, shared verbatim by every strategy: each interior
// cell becomes the average of its four neighbors, all read from the previous
// iteration's values. StepRange and StepBlock use the identical expression so
// the sequential, threaded, and distributed runs produce bit-identical grids.

// StepRange applies one Jacobi update to rows [r0, r1) of cur, writing the
// results into next. Edge columns are left as next already holds them; rows
// outside the range are not touched. Grids narrower than three columns have
// no interior and are left unchanged.
func StepRange(cur, next [][]float64, r0, r1 int) {
	if len(cur) == 0 {
		return
	}
	w := len(cur[0])
	if w < 3 {
		return
	}
	for i := r0; i < r1; i++ {
		up, down, row := cur[i-1], cur[i+1], cur[i]
		out := next[i]
		for j := 1; j < w-1; j++ {
			out[j] = 0.25 * (up[j] + down[j] + row[j-1] + row[j+1])
		}
	}
}

// StepBlock applies one Jacobi update to a detached block of rows, using the
// supplied ghost rows in place of the rows just above and below the block.
// It returns a new block; the input is not modified. Edge columns keep their
// prior values, and blocks narrower than three columns are returned as a
// plain copy.
func StepBlock(block [][]float64, top, bottom []float64) [][]float64 {
	h := len(block)
	out := make([][]float64, h)
	for i, row := range block {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	if h == 0 {
		return out
	}
	w := len(block[0])
	if w < 3 {
		return out
	}
	for i := 0; i < h; i++ {
		up := top
		if i > 0 {
			up = block[i-1]
		}
		down := bottom
		if i < h-1 {
			down = block[i+1]
		}
		row := block[i]
		for j := 1; j < w-1; j++ {
			out[i][j] = 0.25 * (up[j] + down[j] + row[j-1] + row[j+1])
		}
	}
	return out
}
