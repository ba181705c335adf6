package dispatch

import (
	"fmt"
	"net"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the firmware on the actuator side of the link.
const DefaultBaudRate = 115200

// NewSerial opens the serial device at path (8-N-1 at the given baud rate,
// DefaultBaudRate when baud is 0) and wraps it in a Dispatcher.
func NewSerial(path string, baud int) (*Dispatcher, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return New(port), nil
}

// NewTCP dials a TCP actuator endpoint and wraps the connection in a
// Dispatcher.
func NewTCP(addr string, timeout time.Duration) (*Dispatcher, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial actuator at %s: %w", addr, err)
	}
	return New(conn), nil
}
