// Package config loads and validates the pipeline configuration. The
// schema uses pointer fields so a partial JSON document is safe: omitted
// fields fall back to the capture-rig defaults through the Get accessors.
// All validation happens at load time, before any data is processed.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Descriptor-set and stage-mode tokens accepted by the config schema.
const (
	FeaturesRich    = "rich"
	FeaturesCompact = "compact"

	BandLowpass  = "lowpass"
	BandBandpass = "bandpass"

	EnvelopeRectify = "rectify"
	EnvelopeHilbert = "hilbert"
)

// PipelineConfig is the root configuration document. Fields omitted from
// the JSON file retain their defaults, so partial configs are safe.
type PipelineConfig struct {
	// Capture params
	Channels   *int     `json:"channels,omitempty"`
	Capacity   *int     `json:"capacity,omitempty"`
	SampleRate *float64 `json:"sample_rate,omitempty"`

	// Conditioning params
	NotchFreq     *float64 `json:"notch_freq,omitempty"`
	NotchQ        *float64 `json:"notch_q,omitempty"`
	Band          *string  `json:"band,omitempty"` // "lowpass" or "bandpass"
	LowCut        *float64 `json:"low_cut,omitempty"`
	HighCut       *float64 `json:"high_cut,omitempty"`
	FilterOrder   *int     `json:"filter_order,omitempty"`
	CommonAverage *bool    `json:"common_average,omitempty"`
	Envelope      *string  `json:"envelope,omitempty"` // "rectify" or "hilbert"
	Normalize     *bool    `json:"normalize,omitempty"`

	// Windowing and feature params
	WindowSize *int    `json:"window_size,omitempty"`
	Overlap    *int    `json:"overlap,omitempty"`
	Features   *string `json:"features,omitempty"` // "rich" or "compact"

	// Decision params
	HistoryCapacity *int `json:"history_capacity,omitempty"`

	// Runtime params
	BlockSamples    *int    `json:"block_samples,omitempty"`
	ProcessInterval *string `json:"process_interval,omitempty"` // duration string like "200ms"
}

// Default returns a PipelineConfig with all fields unset; the Get accessors
// supply the defaults.
func Default() *PipelineConfig {
	return &PipelineConfig{}
}

// Load reads and validates a PipelineConfig from a JSON file.
func Load(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every set field and the cross-field constraints. It is
// called by Load and must also be called after programmatic construction.
func (c *PipelineConfig) Validate() error {
	if c.GetChannels() < 1 {
		return fmt.Errorf("channels must be >= 1, got %d", c.GetChannels())
	}
	if c.GetCapacity() < 1 {
		return fmt.Errorf("capacity must be >= 1, got %d", c.GetCapacity())
	}
	rate := c.GetSampleRate()
	if rate <= 0 {
		return fmt.Errorf("sample_rate must be > 0, got %g", rate)
	}
	if f := c.GetNotchFreq(); f <= 0 || f >= rate/2 {
		return fmt.Errorf("notch_freq %g outside (0, %g)", f, rate/2)
	}
	if q := c.GetNotchQ(); q <= 0 {
		return fmt.Errorf("notch_q must be > 0, got %g", q)
	}
	switch c.GetBand() {
	case BandLowpass:
	case BandBandpass:
		if c.GetLowCut() >= c.GetHighCut() {
			return fmt.Errorf("low_cut %g must be below high_cut %g", c.GetLowCut(), c.GetHighCut())
		}
		if c.GetLowCut() <= 0 {
			return fmt.Errorf("low_cut must be > 0, got %g", c.GetLowCut())
		}
	default:
		return fmt.Errorf("band must be %q or %q, got %q", BandLowpass, BandBandpass, c.GetBand())
	}
	if h := c.GetHighCut(); h <= 0 || h >= rate/2 {
		return fmt.Errorf("high_cut %g outside (0, %g)", h, rate/2)
	}
	if c.GetFilterOrder() < 1 {
		return fmt.Errorf("filter_order must be >= 1, got %d", c.GetFilterOrder())
	}
	switch c.GetEnvelope() {
	case EnvelopeRectify, EnvelopeHilbert:
	default:
		return fmt.Errorf("envelope must be %q or %q, got %q", EnvelopeRectify, EnvelopeHilbert, c.GetEnvelope())
	}
	ws := c.GetWindowSize()
	if ws < 1 {
		return fmt.Errorf("window_size must be >= 1, got %d", ws)
	}
	ov := c.GetOverlap()
	if ov < 0 || ov >= ws {
		return fmt.Errorf("overlap %d must be in [0, window_size %d)", ov, ws)
	}
	switch c.GetFeatures() {
	case FeaturesRich, FeaturesCompact:
	default:
		return fmt.Errorf("features must be %q or %q, got %q", FeaturesRich, FeaturesCompact, c.GetFeatures())
	}
	if c.GetHistoryCapacity() < 1 {
		return fmt.Errorf("history_capacity must be >= 1, got %d", c.GetHistoryCapacity())
	}
	bs := c.GetBlockSamples()
	if bs < ws {
		return fmt.Errorf("block_samples %d must be >= window_size %d", bs, ws)
	}
	if bs > c.GetCapacity() {
		return fmt.Errorf("block_samples %d must be <= capacity %d", bs, c.GetCapacity())
	}
	if _, err := time.ParseDuration(c.GetProcessInterval()); err != nil {
		return fmt.Errorf("invalid process_interval: %w", err)
	}
	return nil
}

// Accessors with capture-rig defaults.

func (c *PipelineConfig) GetChannels() int {
	if c.Channels != nil {
		return *c.Channels
	}
	return 8
}

func (c *PipelineConfig) GetCapacity() int {
	if c.Capacity != nil {
		return *c.Capacity
	}
	return 4000
}

func (c *PipelineConfig) GetSampleRate() float64 {
	if c.SampleRate != nil {
		return *c.SampleRate
	}
	return 2000
}

func (c *PipelineConfig) GetNotchFreq() float64 {
	if c.NotchFreq != nil {
		return *c.NotchFreq
	}
	return 60
}

func (c *PipelineConfig) GetNotchQ() float64 {
	if c.NotchQ != nil {
		return *c.NotchQ
	}
	return 30
}

func (c *PipelineConfig) GetBand() string {
	if c.Band != nil {
		return *c.Band
	}
	return BandBandpass
}

func (c *PipelineConfig) GetLowCut() float64 {
	if c.LowCut != nil {
		return *c.LowCut
	}
	return 30
}

func (c *PipelineConfig) GetHighCut() float64 {
	if c.HighCut != nil {
		return *c.HighCut
	}
	return 500
}

func (c *PipelineConfig) GetFilterOrder() int {
	if c.FilterOrder != nil {
		return *c.FilterOrder
	}
	return 5
}

func (c *PipelineConfig) GetCommonAverage() bool {
	if c.CommonAverage != nil {
		return *c.CommonAverage
	}
	return false
}

func (c *PipelineConfig) GetEnvelope() string {
	if c.Envelope != nil {
		return *c.Envelope
	}
	return EnvelopeHilbert
}

func (c *PipelineConfig) GetNormalize() bool {
	if c.Normalize != nil {
		return *c.Normalize
	}
	return false
}

func (c *PipelineConfig) GetWindowSize() int {
	if c.WindowSize != nil {
		return *c.WindowSize
	}
	return 400
}

func (c *PipelineConfig) GetOverlap() int {
	if c.Overlap != nil {
		return *c.Overlap
	}
	return 200
}

func (c *PipelineConfig) GetFeatures() string {
	if c.Features != nil {
		return *c.Features
	}
	return FeaturesRich
}

func (c *PipelineConfig) GetHistoryCapacity() int {
	if c.HistoryCapacity != nil {
		return *c.HistoryCapacity
	}
	return 10
}

func (c *PipelineConfig) GetBlockSamples() int {
	if c.BlockSamples != nil {
		return *c.BlockSamples
	}
	return c.GetCapacity()
}

func (c *PipelineConfig) GetProcessInterval() string {
	if c.ProcessInterval != nil {
		return *c.ProcessInterval
	}
	return "200ms"
}

// ProcessIntervalDuration returns the parsed process interval. Validate
// guarantees it parses.
func (c *PipelineConfig) ProcessIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.GetProcessInterval())
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}
