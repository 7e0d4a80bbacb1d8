// Package protocol defines the wire protocol spoken between the distributed
// master and its workers: the message kinds, their payloads, and the framed
// connection both sides use.
//
// # Wire format
//
// Every message is one frame on a TCP stream:
//
//	┌──────┬──────────────────┬─────────────────────┐
//	│ kind │  payload length  │       payload       │
//	│ 1 B  │ 8 B, big endian  │  gob-encoded bytes  │
//	└──────┴──────────────────┴─────────────────────┘
//
// The length prefix makes frames self-delimiting regardless of block height,
// and gob encoding preserves float64 values exactly, so a grid survives any
// number of round trips bit for bit.
//
// # Message kinds
//
//	Assign   master → worker   block row range, grid shape, initial values
//	Iterate  master → worker   current block plus both ghost rows
//	Result   worker → master   the updated block for one iteration
//	Stop     master → worker   empty payload, one way, never answered
//
// A session is exactly one Assign, then Iterate/Result pairs in lockstep,
// then one Stop. Anything else is a *ProtocolError and is fatal to the
// connection that sees it: there is no resynchronization.
//
// # Tracing
//
// A Conn may carry a GoVector logger. When set on both ends, every payload
// is wrapped with a vector-clock timestamp on send and unwrapped on receive,
// producing per-process logs whose partial order makes the per-iteration
// barrier visible: no round k+1 send may precede the matching round k
// receive. Both ends must enable tracing together; the wrapped payload is
// not readable by an untraced peer.
package protocol
