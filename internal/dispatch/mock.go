package dispatch

import (
	"bytes"
	"sync"
)

// MockPort implements Porter with configurable behaviour for testing. It
// captures writes and can inject errors and short writes.
type MockPort struct {
	mu sync.Mutex

	// ReadBuffer holds data returned by Read calls.
	ReadBuffer bytes.Buffer

	// WriteBuffer captures data written to the port.
	WriteBuffer bytes.Buffer

	// WriteError is returned by Write when set.
	WriteError error

	// ShortWrite truncates the next write to this many bytes when > 0.
	ShortWrite int

	// CloseError is returned by Close when set.
	CloseError error

	// Closed reports whether Close was called.
	Closed bool

	// WriteCalls counts Write invocations.
	WriteCalls int
}

func (m *MockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadBuffer.Read(p)
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls++
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	if m.ShortWrite > 0 && m.ShortWrite < len(p) {
		return m.WriteBuffer.Write(p[:m.ShortWrite])
	}
	return m.WriteBuffer.Write(p)
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.CloseError
}

// Written returns everything written to the port so far.
func (m *MockPort) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.WriteBuffer.String()
}
