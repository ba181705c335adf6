// Package ring provides a fixed-capacity circular store for timestamped
// multi-channel samples. It is the single stateful ingestion point of the
// pipeline: one acquisition path appends, downstream consumers read
// chronological snapshots via Last.
package ring

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientData is returned when a caller requests more samples than
// the buffer currently holds.
var ErrInsufficientData = errors.New("insufficient data in ring buffer")

// Buffer is a fixed-capacity ring of multi-channel samples with parallel
// timestamps. The backing storage is a single interleaved array allocated at
// construction and never resized, so capture never allocates. Once the
// buffer fills, each append overwrites the logically oldest slot; the full
// state is absorbing short of an explicit Reset.
//
// Buffer supports one writer and independent readers: Last copies the
// requested range under the lock, so a reader never observes a torn sample,
// and Appends exposes a monotonic version counter for callers that want to
// detect a wraparound race across two reads.
type Buffer struct {
	mu       sync.Mutex
	channels int
	capacity int
	samples  []float64 // interleaved channel data, len = capacity*channels
	stamps   []float64 // len = capacity
	cursor   int       // next slot to overwrite, modulo capacity
	fill     int       // saturates at capacity
	appends  uint64    // total appends over the buffer lifetime
}

// New allocates a Buffer holding up to capacity samples of the given channel
// count.
func New(channels, capacity int) (*Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("ring: channel count must be >= 1, got %d", channels)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("ring: capacity must be >= 1, got %d", capacity)
	}
	return &Buffer{
		channels: channels,
		capacity: capacity,
		samples:  make([]float64, capacity*channels),
		stamps:   make([]float64, capacity),
	}, nil
}

// Append writes one sample into the current cursor slot and advances the
// cursor. It is O(1), never fails, and never allocates. The channel vector
// must match the construction-time channel count; a mismatch is a
// programming error and panics.
func (b *Buffer) Append(timestamp float64, channels []float64) {
	if len(channels) != b.channels {
		panic(fmt.Sprintf("ring: sample has %d channels, buffer expects %d", len(channels), b.channels))
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	copy(b.samples[b.cursor*b.channels:], channels)
	b.stamps[b.cursor] = timestamp
	b.cursor = (b.cursor + 1) % b.capacity
	if b.fill < b.capacity {
		b.fill++
	}
	b.appends++
}

// Last returns copies of the n most recent samples and their timestamps in
// chronological (oldest-to-newest) order. When the requested range wraps
// past the end of the backing array, the tail segment is assembled before
// the head segment. Last fails with ErrInsufficientData if n exceeds the
// current fill count.
func (b *Buffer) Last(n int) ([][]float64, []float64, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("ring: requested sample count must be >= 1, got %d", n)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.fill {
		return nil, nil, fmt.Errorf("ring: requested %d samples with %d buffered: %w", n, b.fill, ErrInsufficientData)
	}

	// end is one past the newest sample. Before the buffer first fills the
	// cursor and the fill count coincide; afterwards the cursor alone marks
	// the boundary between oldest and newest.
	end := b.cursor
	if b.fill < b.capacity {
		end = b.fill
	}
	start := ((end-n)%b.capacity + b.capacity) % b.capacity

	out := make([][]float64, n)
	stamps := make([]float64, n)
	for i := 0; i < n; i++ {
		slot := (start + i) % b.capacity
		row := make([]float64, b.channels)
		copy(row, b.samples[slot*b.channels:(slot+1)*b.channels])
		out[i] = row
		stamps[i] = b.stamps[slot]
	}
	return out, stamps, nil
}

// Full reports whether the fill count has reached capacity.
func (b *Buffer) Full() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fill == b.capacity
}

// Len returns the current fill count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fill
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return b.capacity }

// Channels returns the fixed per-sample channel count.
func (b *Buffer) Channels() int { return b.channels }

// Appends returns the total number of appends over the buffer lifetime. A
// reader that records this value before and after consuming a snapshot can
// detect whether more than capacity-n appends raced the read.
func (b *Buffer) Appends() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appends
}

// Reset zeroes the cursor and fill count for multi-session reuse. The
// backing storage is retained. Samples appended before the reset become
// unreachable but are not cleared.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = 0
	b.fill = 0
}
