// Package observability provides structured logging, OpenTelemetry metrics,
// and tracing for stepgraph runs. Everything is opt-in; no-op
// implementations are used when a feature is disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger returns a logger with run_id, step_id, and attempt fields.
func EnrichLogger(logger *slog.Logger, runID, stepID string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("step_id", stepID),
		slog.Int("attempt", attempt),
	)
}

// LogRunStart logs the start of a workflow run.
func LogRunStart(logger *slog.Logger, runID string) {
	if logger == nil {
		return
	}
	logger.Info("workflow run starting", slog.String("run_id", runID))
}

// LogRunComplete logs successful run completion.
func LogRunComplete(logger *slog.Logger, runID string, elapsed time.Duration, steps int) {
	if logger == nil {
		return
	}
	logger.Info("workflow run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", float64(elapsed.Milliseconds())),
		slog.Int("steps_executed", steps),
	)
}

// LogRunError logs run failure.
func LogRunError(logger *slog.Logger, runID string, err error, elapsed time.Duration, lastStep string) {
	if logger == nil {
		return
	}
	logger.Error("workflow run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", float64(elapsed.Milliseconds())),
		slog.String("last_step", lastStep),
	)
}

// LogStepStart logs step execution start.
func LogStepStart(logger *slog.Logger, stepID string) {
	if logger == nil {
		return
	}
	logger.Debug("step starting", slog.String("step_id", stepID))
}

// LogStepComplete logs successful step completion.
func LogStepComplete(logger *slog.Logger, stepID string, elapsed time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("step completed",
		slog.String("step_id", stepID),
		slog.Float64("duration_ms", float64(elapsed.Milliseconds())),
	)
}

// LogStepError logs step failure.
func LogStepError(logger *slog.Logger, stepID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("step failed",
		slog.String("step_id", stepID),
		slog.String("error", err.Error()),
	)
}

// LogCheckpoint logs a successful checkpoint save.
func LogCheckpoint(logger *slog.Logger, stepID string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("step_id", stepID),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogCheckpointError logs a non-fatal checkpoint failure.
func LogCheckpointError(logger *slog.Logger, stepID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("step_id", stepID),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
