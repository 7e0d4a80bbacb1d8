// Package master implements the distributed master: the process that owns
// the authoritative grid, drives the iteration loop, and keeps every worker
// on the same logical iteration.
//
// # Round lifecycle
//
//	┌────────────────────────────────────────────────────────────┐
//	│ Master                                                     │
//	│  grid (round k)                                            │
//	│   │ extract ghost rows per block                           │
//	│   ├── iterate ──▶ worker 0 ──▶ result ──┐                  │
//	│   ├── iterate ──▶ worker 1 ──▶ result ──┤ copy into        │
//	│   └── iterate ──▶ worker W-1 ▶ result ──┘ scratch buffer   │
//	│   all W results received  ◀── the barrier                  │
//	│  swap buffers → grid (round k+1)                           │
//	└────────────────────────────────────────────────────────────┘
//
// All of round k's requests are written before any reply is read, so the
// sockets are used as independent pipelines, but the buffers are swapped
// only after every worker has replied. That barrier is the entire
// consistency mechanism: ghost rows for round k+1 are always extracted from
// a grid assembled wholly from round k, which keeps the distributed run a
// true synchronous Jacobi sweep, numerically identical to the sequential
// one.
//
// # Failure model
//
// Fail fast, no recovery. A worker that cannot be dialed, drops its
// connection, answers out of protocol, or misses the reply deadline aborts
// the whole run with a *WorkerError naming the worker's index and address.
// Partial results are discarded.
package master
