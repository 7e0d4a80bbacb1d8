// Package partition splits the grid's interior rows into contiguous,
// disjoint blocks, one per worker or thread, and records where each block's
// ghost rows come from.
//
// The split is deterministic: ranges are assigned n/parts rows each, with the
// first n%parts ranges receiving one extra row, so sizes differ by at most
// one and the union covers the input exactly once.
package partition

import (
	"errors"
	"fmt"
)

// ErrInvalidPartition is returned when the requested part count cannot
// produce non-empty ranges (parts <= 0 or parts > rows available).
var ErrInvalidPartition = errors.New("invalid partition")

// Range is a half-open interval [Start, End) of row indices.
type Range struct {
	Start int
	End   int
}

// Size returns the number of rows in the range.
func (r Range) Size() int {
	return r.End - r.Start
}

// Split divides [0, n) into parts contiguous ranges whose sizes differ by at
// most one row.
func Split(n, parts int) ([]Range, error) {
	if parts <= 0 {
		return nil, fmt.Errorf("%w: %d parts", ErrInvalidPartition, parts)
	}
	if parts > n {
		return nil, fmt.Errorf("%w: %d parts for %d rows", ErrInvalidPartition, parts, n)
	}
	base := n / parts
	remainder := n % parts
	ranges := make([]Range, parts)
	current := 0
	for i := range ranges {
		size := base
		if i < remainder {
			size++
		}
		ranges[i] = Range{Start: current, End: current + size}
		current += size
	}
	return ranges, nil
}

// Block is one worker's band of interior grid rows, in absolute grid
// coordinates, together with the indices of the rows that supply its two
// ghost rows. For edge blocks the ghost source is the fixed boundary row;
// otherwise it is the neighboring block's adjacent row.
type Block struct {
	Start int // first owned row, inclusive
	End   int // one past the last owned row
	Above int // row supplying the top ghost row
	Below int // row supplying the bottom ghost row
}

// Height returns the number of rows the block owns.
func (b Block) Height() int {
	return b.End - b.Start
}

// Blocks partitions the interior rows of a grid with the given total row
// count (boundaries included) into parts blocks. Blocks are disjoint and
// their union is exactly the interior [1, rows-1).
func Blocks(rows, parts int) ([]Block, error) {
	interior := rows - 2
	if interior < 1 {
		return nil, fmt.Errorf("%w: grid with %d rows has no interior", ErrInvalidPartition, rows)
	}
	ranges, err := Split(interior, parts)
	if err != nil {
		return nil, err
	}
	blocks := make([]Block, len(ranges))
	for i, r := range ranges {
		blocks[i] = Block{
			Start: r.Start + 1,
			End:   r.End + 1,
			Above: r.Start,
			Below: r.End + 1,
		}
	}
	return blocks, nil
}
