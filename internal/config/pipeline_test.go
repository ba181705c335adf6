package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8, cfg.GetChannels())
	assert.Equal(t, 4000, cfg.GetCapacity())
	assert.Equal(t, 400, cfg.GetWindowSize())
	assert.Equal(t, 200, cfg.GetOverlap())
	assert.Equal(t, FeaturesRich, cfg.GetFeatures())
	assert.Equal(t, EnvelopeHilbert, cfg.GetEnvelope())
	assert.Equal(t, BandBandpass, cfg.GetBand())
	assert.Equal(t, 10, cfg.GetHistoryCapacity())
}

func TestLoadPartialConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"channels": 4, "features": "compact", "overlap": 100}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.GetChannels())
	assert.Equal(t, FeaturesCompact, cfg.GetFeatures())
	assert.Equal(t, 100, cfg.GetOverlap())
	// Omitted fields fall back to defaults.
	assert.Equal(t, 400, cfg.GetWindowSize())
	assert.Equal(t, 5, cfg.GetFilterOrder())
}

func TestLoadRejectsBadFiles(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/pipeline.json")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "pipeline.yaml"))
	assert.Error(t, err, "non-json extension")

	path := writeConfig(t, `{not json`)
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"zero channels", func(c *PipelineConfig) { c.Channels = ptrInt(0) }},
		{"zero capacity", func(c *PipelineConfig) { c.Capacity = ptrInt(0) }},
		{"negative rate", func(c *PipelineConfig) { c.SampleRate = ptrFloat64(-1) }},
		{"notch at nyquist", func(c *PipelineConfig) { c.NotchFreq = ptrFloat64(1000) }},
		{"high cut above nyquist", func(c *PipelineConfig) { c.HighCut = ptrFloat64(1200) }},
		{"inverted band", func(c *PipelineConfig) { c.LowCut = ptrFloat64(600); c.HighCut = ptrFloat64(500) }},
		{"unknown band", func(c *PipelineConfig) { c.Band = ptrString("highpass") }},
		{"zero order", func(c *PipelineConfig) { c.FilterOrder = ptrInt(0) }},
		{"unknown envelope", func(c *PipelineConfig) { c.Envelope = ptrString("square") }},
		{"zero window", func(c *PipelineConfig) { c.WindowSize = ptrInt(0) }},
		{"overlap equals window", func(c *PipelineConfig) { c.Overlap = ptrInt(400) }},
		{"unknown features", func(c *PipelineConfig) { c.Features = ptrString("everything") }},
		{"zero history", func(c *PipelineConfig) { c.HistoryCapacity = ptrInt(0) }},
		{"block below window", func(c *PipelineConfig) { c.BlockSamples = ptrInt(100) }},
		{"block above capacity", func(c *PipelineConfig) { c.BlockSamples = ptrInt(5000) }},
		{"bad interval", func(c *PipelineConfig) { c.ProcessInterval = ptrString("fast") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			// Defaults assume a 2 kHz rig.
			cfg.SampleRate = ptrFloat64(2000)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestProcessIntervalDuration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ProcessInterval = ptrString("1500ms")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "1.5s", cfg.ProcessIntervalDuration().String())
}
