// Package acquire feeds the sample ring buffer from an external
// acquisition system over TCP. Exactly one source appends into a given
// buffer: the pipeline core assumes a single producer.
package acquire

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"time"

	"github.com/openmyo/emgpipe/internal/emg/ring"
)

// frame layout on the wire: one float32 timestamp followed by one float32
// per channel, little endian. This matches the amplifier streaming format
// the capture rigs emit.
const bytesPerValue = 4

// TCPSource reads sample frames from a streaming acquisition host and
// appends them into a ring buffer.
type TCPSource struct {
	conn     net.Conn
	buf      *ring.Buffer
	channels int
}

// NewTCPSource dials the acquisition host and binds the stream to buf. The
// channel count is taken from the buffer.
func NewTCPSource(addr string, buf *ring.Buffer, timeout time.Duration) (*TCPSource, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial acquisition host %s: %w", addr, err)
	}
	return &TCPSource{conn: conn, buf: buf, channels: buf.Channels()}, nil
}

// Run reads frames until the context is cancelled or the stream ends. A
// clean remote close returns nil; any other read error is returned.
func (s *TCPSource) Run(ctx context.Context) error {
	defer s.conn.Close()

	reader := bufio.NewReader(s.conn)
	frame := make([]byte, (1+s.channels)*bytesPerValue)
	channels := make([]float64, s.channels)

	// Close the connection when the context ends so a blocked read
	// returns promptly.
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	for {
		if _, err := io.ReadFull(reader, frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				log.Printf("acquisition stream closed by remote")
				return nil
			}
			return fmt.Errorf("failed to read sample frame: %w", err)
		}

		ts := float64(float32FromLE(frame[:bytesPerValue]))
		for ch := 0; ch < s.channels; ch++ {
			off := (1 + ch) * bytesPerValue
			channels[ch] = float64(float32FromLE(frame[off : off+bytesPerValue]))
		}
		s.buf.Append(ts, channels)
	}
}

// Close terminates the connection; a blocked Run returns shortly after.
func (s *TCPSource) Close() error {
	return s.conn.Close()
}

func float32FromLE(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
