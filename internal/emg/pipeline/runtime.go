package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/openmyo/emgpipe/internal/emg/decide"
	"github.com/openmyo/emgpipe/internal/emg/ring"
)

// GestureSink receives accepted gesture changes. dispatch.Dispatcher
// satisfies it.
type GestureSink interface {
	Send(label string) error
}

// Stats is a snapshot of the runtime counters.
type Stats struct {
	Ticks            uint64
	WindowsProcessed uint64
	GestureChanges   uint64
	DispatchFailures uint64
	ClassifyFailures uint64
}

// Runtime drives the pipeline periodically: every interval it reads the
// latest block, classifies each window, feeds the labels to the smoother
// and dispatches accepted gesture changes. Dispatch failures are logged and
// counted; they never roll back smoother or ring state.
type Runtime struct {
	SessionID string

	proc       *Processor
	classifier Classifier
	smoother   *decide.Smoother
	interval   time.Duration
	blockSize  int

	// Counters are atomics so Stats can be polled while Run is live.
	ticks            atomic.Uint64
	windowsProcessed atomic.Uint64
	gestureChanges   atomic.Uint64
	dispatchFailures atomic.Uint64
	classifyFailures atomic.Uint64
}

// RuntimeConfig bundles the Runtime collaborators, making wiring explicit
// and testing deterministic.
type RuntimeConfig struct {
	Processor  *Processor
	Classifier Classifier
	Sink       GestureSink // may be nil to run without an actuator
	Interval   time.Duration
	BlockSize  int // samples per periodic block read
	HistoryCap int // decision-smoother history capacity
}

// NewRuntime validates the wiring and builds the smoother with its change
// callback bound to the sink.
func NewRuntime(cfg RuntimeConfig) (*Runtime, error) {
	if cfg.Processor == nil {
		return nil, fmt.Errorf("pipeline: processor must be non-nil")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("pipeline: classifier must be non-nil")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("pipeline: interval must be > 0, got %v", cfg.Interval)
	}
	if cfg.BlockSize < 1 {
		return nil, fmt.Errorf("pipeline: block size must be >= 1, got %d", cfg.BlockSize)
	}

	r := &Runtime{
		SessionID:  uuid.NewString(),
		proc:       cfg.Processor,
		classifier: cfg.Classifier,
		interval:   cfg.Interval,
		blockSize:  cfg.BlockSize,
	}

	var onChange decide.ChangeFunc
	if cfg.Sink != nil {
		sink := cfg.Sink
		onChange = func(g decide.Gesture) error {
			return sink.Send(string(g))
		}
	}
	smoother, err := decide.NewSmoother(cfg.HistoryCap, onChange)
	if err != nil {
		return nil, err
	}
	r.smoother = smoother
	return r, nil
}

// Run loops until the context is cancelled. Before the ring holds a full
// block the tick is skipped quietly; any other pipeline error is returned.
func (r *Runtime) Run(ctx context.Context) error {
	log.Printf("pipeline session %s: processing every %v, block of %d samples", r.SessionID, r.interval, r.blockSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final := r.Stats()
			log.Printf("pipeline session %s: stopped after %d windows, %d gesture changes",
				r.SessionID, final.WindowsProcessed, final.GestureChanges)
			return nil
		case <-ticker.C:
			if err := r.tick(); err != nil {
				return err
			}
		}
	}
}

// tick processes one block; split out of Run so tests can drive the loop
// deterministically.
func (r *Runtime) tick() error {
	r.ticks.Add(1)

	features, err := r.proc.Features(r.blockSize)
	if err != nil {
		if errors.Is(err, ring.ErrInsufficientData) {
			return nil // still filling
		}
		return err
	}

	for _, wf := range features {
		r.windowsProcessed.Add(1)
		label, err := r.classifier.Classify(wf.Vector)
		if err != nil {
			r.classifyFailures.Add(1)
			log.Printf("pipeline session %s: classify window at %d: %v", r.SessionID, wf.Start, err)
			continue
		}
		changed, err := r.smoother.Observe(label)
		if changed {
			r.gestureChanges.Add(1)
		}
		if err != nil {
			r.dispatchFailures.Add(1)
			log.Printf("pipeline session %s: dispatch %q: %v", r.SessionID, label, err)
		}
	}
	return nil
}

// Active returns the currently accepted gesture, if any.
func (r *Runtime) Active() (decide.Gesture, bool) {
	return r.smoother.Active()
}

// Stats snapshots the runtime counters. It is safe to call from any
// goroutine while Run is live.
func (r *Runtime) Stats() Stats {
	return Stats{
		Ticks:            r.ticks.Load(),
		WindowsProcessed: r.windowsProcessed.Load(),
		GestureChanges:   r.gestureChanges.Load(),
		DispatchFailures: r.dispatchFailures.Load(),
		ClassifyFailures: r.classifyFailures.Load(),
	}
}
