package protocol

// Kind identifies the type of a framed message.
type Kind byte

const (
	// KindAssign carries a worker's block assignment and initial values.
	KindAssign Kind = 1 + iota
	// KindIterate carries one iteration's block and ghost rows.
	KindIterate
	// KindResult carries the updated block back to the master.
	KindResult
	// KindStop ends a worker session. It has no payload and no reply.
	KindStop
)

// String returns a short name for logging and error messages.
func (k Kind) String() string {
	switch k {
	case KindAssign:
		return "assign"
	case KindIterate:
		return "iterate"
	case KindResult:
		return "result"
	case KindStop:
		return "stop"
	}
	return "unknown"
}

// Assign is the first message of every session. It fixes the worker's
// identity for the run: the grid shape, the iteration count, and the
// half-open row range [RowStart, RowEnd) the worker owns. Block holds the
// initial values of those rows.
type Assign struct {
	Rows       int
	Cols       int
	Iterations int
	RowStart   int
	RowEnd     int
	Block      [][]float64
}

// Iterate asks a worker to compute one Jacobi step. Block is the worker's
// current rows; Top and Bottom are the ghost rows copied from the rows
// directly above and below the block, taken from the previous iteration's
// grid.
type Iterate struct {
	Iteration int
	Block     [][]float64
	Top       []float64
	Bottom    []float64
}

// Result is a worker's reply to an Iterate: the updated block for the same
// iteration number.
type Result struct {
	Iteration int
	Block     [][]float64
}
