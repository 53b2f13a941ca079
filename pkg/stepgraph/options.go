package stepgraph

import (
	"log/slog"

	"github.com/quantive/stepgraph/pkg/stepgraph/checkpoint"
	"github.com/quantive/stepgraph/pkg/stepgraph/observability"
)

// runConfig holds per-run execution settings.
type runConfig struct {
	maxIterations int
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	tracing       bool

	store         checkpoint.Store
	runID         string
	sequence      int
	failOnCkptErr bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures a single Run() or Resume() call.
type RunOption func(*runConfig)

// WithMaxIterations caps the number of step executions per run.
// Default: 1000. The ceiling is the loop-bound guard for cyclic graphs:
// a workflow that revisits its error-handling step forever terminates with
// a MaxIterationsError instead of spinning.
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithRunLogger sets the logger used for run-level events. Step-level
// logging uses the Context logger.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for this run.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans for the run and each step.
func WithTracing() RunOption {
	return func(c *runConfig) {
		c.tracing = true
		c.spans = observability.NewSpanManager()
	}
}

// WithCheckpointing persists state to the store after every step.
// A non-empty runID is required; Run() fails with ErrRunIDRequired without
// one.
func WithCheckpointing(store checkpoint.Store, runID string) RunOption {
	return func(c *runConfig) {
		c.store = store
		c.runID = runID
	}
}

// WithCheckpointFailureFatal makes checkpoint persistence failures abort
// the run. By default they are logged and execution continues.
func WithCheckpointFailureFatal() RunOption {
	return func(c *runConfig) {
		c.failOnCkptErr = true
	}
}
