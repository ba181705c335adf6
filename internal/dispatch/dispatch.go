// Package dispatch serializes gesture labels onto a byte-stream transport
// (serial line or TCP socket) for a peripheral actuator. The wire contract
// is fixed: an ASCII label followed by a single ';' terminator, e.g.
// "Fist;". Dispatch is at-least-once-attempt: a failed write is reported to
// the caller and never retried here.
package dispatch

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Terminator closes every gesture message on the wire.
const Terminator = ";"

// ErrWriteFailed wraps any transport error or short write during dispatch.
var ErrWriteFailed = errors.New("failed to write gesture to transport")

// Porter is the minimal transport surface a dispatcher needs. Real serial
// ports, TCP connections and test mocks all satisfy it.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// Dispatcher writes gesture messages to a single Porter. A mutex serializes
// writers so interleaved labels cannot corrupt the terminator framing.
type Dispatcher struct {
	port Porter
	mu   sync.Mutex
}

// New wraps an open transport in a Dispatcher.
func New(port Porter) *Dispatcher {
	return &Dispatcher{port: port}
}

// Send writes one gesture message. The label must be non-empty printable
// ASCII without the terminator character, so the peripheral can frame
// messages by scanning for ';'.
func (d *Dispatcher) Send(label string) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	msg := []byte(label + Terminator)

	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.port.Write(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n != len(msg) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrWriteFailed, n, len(msg))
	}
	return nil
}

// Close closes the underlying transport.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.port.Close()
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("gesture label must not be empty")
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c < 0x20 || c > 0x7e || c == ';' {
			return fmt.Errorf("gesture label %q contains byte %#x, want printable ASCII without %q", label, c, Terminator)
		}
	}
	return nil
}
