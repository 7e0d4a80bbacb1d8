package protocol

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/DistributedClocks/GoVector/govec"
)

// MaxFrameSize caps a single frame's payload. A header announcing more than
// this is treated as garbage rather than an allocation request.
const MaxFrameSize = 1 << 30

// headerSize is one kind byte plus an 8-byte big-endian payload length.
const headerSize = 9

// ProtocolError reports a malformed or unexpected message. It is fatal to
// the connection that detects it.
type ProtocolError struct {
	Kind   Kind
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error (%s): %s", e.Kind, e.Reason)
}

// Conn wraps a network connection with message framing and optional
// vector-clock tracing. A Conn is owned by exactly one master/worker pair
// and is not safe for concurrent use.
type Conn struct {
	nc    net.Conn
	r     *bufio.Reader
	w     *bufio.Writer
	trace *govec.GoLog
}

// NewConn wraps an established connection.
func NewConn(nc net.Conn) *Conn {
	return &Conn{
		nc: nc,
		r:  bufio.NewReader(nc),
		w:  bufio.NewWriter(nc),
	}
}

// SetTrace attaches a GoVector logger. Every subsequent send and receive is
// stamped with the local vector clock. The peer must trace as well.
func (c *Conn) SetTrace(lg *govec.GoLog) {
	c.trace = lg
}

// NewTracer creates a GoVector logger for one process of a traced run. The
// log is written to "<process>-Log.txt" in the working directory.
func NewTracer(process string) *govec.GoLog {
	return govec.InitGoVector(process, process, govec.GetDefaultConfig())
}

// Send writes one framed message and flushes it. A nil payload sends an
// empty frame, as the stop message requires.
func (c *Conn) Send(kind Kind, payload any) error {
	var body []byte
	if payload != nil {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		body = buf.Bytes()
	}
	if c.trace != nil {
		body = c.trace.PrepareSend("send "+kind.String(), body, govec.GetDefaultLogOptions())
	}

	var header [headerSize]byte
	header[0] = byte(kind)
	binary.BigEndian.PutUint64(header[1:], uint64(len(body)))
	if _, err := c.w.Write(header[:]); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	if _, err := c.w.Write(body); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	return nil
}

// Recv reads one framed message and decodes its payload into the type the
// kind dictates (*Assign, *Iterate, *Result, or nil for stop). Undersized
// frames, oversized frames, unknown kinds, and undecodable payloads all
// return a *ProtocolError.
func (c *Conn) Recv() (Kind, any, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		return 0, nil, err
	}
	kind := Kind(header[0])
	length := binary.BigEndian.Uint64(header[1:])
	if length > MaxFrameSize {
		return kind, nil, &ProtocolError{Kind: kind, Reason: fmt.Sprintf("frame of %d bytes exceeds limit", length)}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return kind, nil, &ProtocolError{Kind: kind, Reason: fmt.Sprintf("truncated frame: %v", err)}
	}
	if c.trace != nil {
		var unwrapped []byte
		c.trace.UnpackReceive("recv "+kind.String(), body, &unwrapped, govec.GetDefaultLogOptions())
		body = unwrapped
	}

	switch kind {
	case KindAssign:
		var m Assign
		if err := decode(kind, body, &m); err != nil {
			return kind, nil, err
		}
		return kind, &m, nil
	case KindIterate:
		var m Iterate
		if err := decode(kind, body, &m); err != nil {
			return kind, nil, err
		}
		return kind, &m, nil
	case KindResult:
		var m Result
		if err := decode(kind, body, &m); err != nil {
			return kind, nil, err
		}
		return kind, &m, nil
	case KindStop:
		return kind, nil, nil
	}
	return kind, nil, &ProtocolError{Kind: kind, Reason: "unknown message kind"}
}

// SetReadDeadline bounds the next Recv. The zero time clears the bound.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.nc.SetReadDeadline(t)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.nc.Close()
}

func decode(kind Kind, body []byte, out any) error {
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(out); err != nil {
		return &ProtocolError{Kind: kind, Reason: fmt.Sprintf("decode: %v", err)}
	}
	return nil
}
