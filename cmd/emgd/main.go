package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/openmyo/emgpipe/internal/acquire"
	"github.com/openmyo/emgpipe/internal/config"
	"github.com/openmyo/emgpipe/internal/dispatch"
	"github.com/openmyo/emgpipe/internal/emg/condition"
	"github.com/openmyo/emgpipe/internal/emg/decide"
	"github.com/openmyo/emgpipe/internal/emg/feature"
	"github.com/openmyo/emgpipe/internal/emg/pipeline"
	"github.com/openmyo/emgpipe/internal/emg/ring"
	"github.com/openmyo/emgpipe/internal/emg/window"
)

var (
	configPath   = flag.String("config", "", "Pipeline config JSON (defaults when empty)")
	sourceAddr   = flag.String("source", "127.0.0.1:5000", "Acquisition stream address")
	serialPort   = flag.String("serial", "", "Actuator serial device (log-only when empty)")
	baudRate     = flag.Int("baud", 0, "Serial baud rate (0 uses the default)")
	actuatorAddr = flag.String("actuator", "", "Actuator TCP address (takes precedence over -serial)")
	threshold    = flag.Float64("threshold", 0.1, "Mean-energy threshold separating Fist from Rest")
	dialTimeout  = flag.Duration("dial-timeout", 5*time.Second, "Timeout for outbound connections")
)

// energyClassifier is the built-in two-class fallback: the mean absolute
// descriptor value against a fixed threshold. Real deployments replace it
// through the pipeline.Classifier interface.
type energyClassifier struct {
	threshold float64
}

func (c energyClassifier) Classify(vector []float64) (decide.Gesture, error) {
	var sum float64
	for _, v := range vector {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	if sum/float64(len(vector)) > c.threshold {
		return "Fist", nil
	}
	return "Rest", nil
}

// logSink stands in for the actuator when no transport is configured.
type logSink struct{}

func (logSink) Send(label string) error {
	log.Printf("gesture change: %s", label)
	return nil
}

func buildConditioner(cfg *config.PipelineConfig) (*condition.Conditioner, error) {
	band := condition.Lowpass
	if cfg.GetBand() == config.BandBandpass {
		band = condition.Bandpass
	}
	envelope := condition.Rectify
	if cfg.GetEnvelope() == config.EnvelopeHilbert {
		envelope = condition.Hilbert
	}
	return condition.New(condition.Config{
		SampleRate:    cfg.GetSampleRate(),
		NotchFreq:     cfg.GetNotchFreq(),
		NotchQ:        cfg.GetNotchQ(),
		Band:          band,
		LowCut:        cfg.GetLowCut(),
		HighCut:       cfg.GetHighCut(),
		Order:         cfg.GetFilterOrder(),
		CommonAverage: cfg.GetCommonAverage(),
		Envelope:      envelope,
		Normalize:     cfg.GetNormalize(),
	})
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	} else if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid default config: %v", err)
	}

	buf, err := ring.New(cfg.GetChannels(), cfg.GetCapacity())
	if err != nil {
		log.Fatalf("failed to create ring buffer: %v", err)
	}

	cond, err := buildConditioner(cfg)
	if err != nil {
		log.Fatalf("failed to build conditioner: %v", err)
	}

	seg, err := window.NewSegmenter(cfg.GetWindowSize(), cfg.GetOverlap())
	if err != nil {
		log.Fatalf("failed to build segmenter: %v", err)
	}

	mode := feature.Rich
	if cfg.GetFeatures() == config.FeaturesCompact {
		mode = feature.Compact
	}
	extractor, err := feature.NewExtractor(mode, cfg.GetChannels())
	if err != nil {
		log.Fatalf("failed to build feature extractor: %v", err)
	}

	proc, err := pipeline.NewProcessor(buf, cond, seg, extractor)
	if err != nil {
		log.Fatalf("failed to build processor: %v", err)
	}

	// Pick the actuator transport: TCP wins over serial, and with neither
	// configured gesture changes only go to the log.
	var sink pipeline.GestureSink = logSink{}
	switch {
	case *actuatorAddr != "":
		d, err := dispatch.NewTCP(*actuatorAddr, *dialTimeout)
		if err != nil {
			log.Fatalf("failed to connect to actuator: %v", err)
		}
		defer d.Close()
		sink = d
	case *serialPort != "":
		d, err := dispatch.NewSerial(*serialPort, *baudRate)
		if err != nil {
			log.Fatalf("failed to open actuator serial port: %v", err)
		}
		defer d.Close()
		sink = d
	}

	rt, err := pipeline.NewRuntime(pipeline.RuntimeConfig{
		Processor:  proc,
		Classifier: energyClassifier{threshold: *threshold},
		Sink:       sink,
		Interval:   cfg.ProcessIntervalDuration(),
		BlockSize:  cfg.GetBlockSamples(),
		HistoryCap: cfg.GetHistoryCapacity(),
	})
	if err != nil {
		log.Fatalf("failed to build runtime: %v", err)
	}

	source, err := acquire.NewTCPSource(*sourceAddr, buf, *dialTimeout)
	if err != nil {
		log.Fatalf("failed to connect to acquisition source: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// acquisition routine fills the ring buffer from the stream
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stop() // a dead source makes further processing pointless
		if err := source.Run(ctx); err != nil {
			log.Printf("acquisition terminated: %v", err)
		}
		log.Print("acquisition routine terminated")
	}()

	// processing routine drives the classify/smooth/dispatch loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stop()
		if err := rt.Run(ctx); err != nil {
			log.Printf("pipeline terminated: %v", err)
		}
		log.Print("pipeline routine terminated")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
