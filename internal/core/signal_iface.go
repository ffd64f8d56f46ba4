package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is a raw encoded event ready for the wire.
type Frame []byte

// SignalConnection abstracts the per-connection event transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking. It fails with ErrBackpressure when
	// the buffer is full and ErrConnClosed after Close.
	TrySend(Frame) error
	Close()
}
