package grid

// HotRegion describes a rectangular patch of cells forced to a constant
// temperature before the first iteration. All coordinates are inclusive and
// are clamped to the grid when applied.
type HotRegion struct {
	RowStart int
	RowEnd   int
	ColStart int
	ColEnd   int
	Value    float64
}

// CentralHotRegion builds a centered rectangular hot region whose sides are
// the given fraction of each grid dimension, with a minimum side of one cell.
func CentralHotRegion(rows, cols int, fraction, value float64) HotRegion {
	sideRows := int(float64(rows) * fraction)
	if sideRows < 1 {
		sideRows = 1
	}
	sideCols := int(float64(cols) * fraction)
	if sideCols < 1 {
		sideCols = 1
	}
	rowStart := (rows - sideRows) / 2
	colStart := (cols - sideCols) / 2
	return HotRegion{
		RowStart: rowStart,
		RowEnd:   rowStart + sideRows - 1,
		ColStart: colStart,
		ColEnd:   colStart + sideCols - 1,
		Value:    value,
	}
}

// ApplyHotRegion sets every cell inside the region to the region's value.
// Coordinates outside the grid are clamped rather than rejected.
func (g Grid) ApplyHotRegion(r HotRegion) {
	rows, cols := g.Rows(), g.Cols()
	if rows == 0 || cols == 0 {
		return
	}
	r0 := clamp(r.RowStart, 0, rows-1)
	r1 := clamp(r.RowEnd, 0, rows-1)
	c0 := clamp(r.ColStart, 0, cols-1)
	c1 := clamp(r.ColEnd, 0, cols-1)
	for i := r0; i <= r1; i++ {
		for j := c0; j <= c1; j++ {
			g[i][j] = r.Value
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
