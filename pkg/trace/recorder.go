package trace

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	StageCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buddy",
			Name:      "stage_calls_total",
			Help:      "Total number of pipeline stage calls",
		},
		[]string{"stage", "run_type", "status"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buddy",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage", "run_type"},
	)

	TracerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buddy",
			Name:      "tracer_failures_total",
			Help:      "Tracer failures that were reported and ignored",
		},
		[]string{"stage"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buddy",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// RegisterMetrics registers the pipeline metrics with the default registry.
// Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(StageCallsTotal, StageDuration, TracerFailuresTotal, EmbeddingCacheTotal)
	})
}

// Recorder is a Tracer that logs runs and records Prometheus metrics.
type Recorder struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder. A nil logger disables logging.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger, now: time.Now}
}

func (r *Recorder) Start(_ context.Context, name, runType string) (Run, error) {
	r.logger.Debug("Stage started", zap.String("stage", name), zap.String("run_type", runType))
	return &recordedRun{recorder: r, name: name, runType: runType, start: r.now()}, nil
}

func (r *Recorder) ReportFailure(name string, err error) {
	TracerFailuresTotal.WithLabelValues(name).Inc()
	r.logger.Warn("Tracing failed", zap.String("stage", name), zap.Error(err))
}

type recordedRun struct {
	recorder *Recorder
	name     string
	runType  string
	start    time.Time
}

func (run *recordedRun) End(output string, err error) error {
	duration := run.recorder.now().Sub(run.start)
	status := "ok"
	if err != nil {
		status = "error"
	}

	StageCallsTotal.WithLabelValues(run.name, run.runType, status).Inc()
	StageDuration.WithLabelValues(run.name, run.runType).Observe(duration.Seconds())

	if err != nil {
		run.recorder.logger.Error("Stage failed",
			zap.String("stage", run.name),
			zap.String("run_type", run.runType),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil
	}

	run.recorder.logger.Debug("Stage completed",
		zap.String("stage", run.name),
		zap.String("run_type", run.runType),
		zap.Duration("duration", duration),
		zap.String("output", output),
	)
	return nil
}
