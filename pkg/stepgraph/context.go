package stepgraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

// Context is the execution context handed to steps and routers. It extends
// context.Context with the services a step may need and per-run metadata.
//
// Contexts are immutable; the run loop derives a fresh context per step with
// the step ID set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the configured logger enriched with run and step
	// context. Never nil; defaults to slog.Default().
	Logger() *slog.Logger

	// LLM returns the chat client, or nil when none is configured.
	LLM() llm.Client

	// RunID returns the unique identifier of this run.
	RunID() string

	// StepID returns the step currently executing, or "" before the run
	// starts.
	StepID() string

	// Attempt returns the retry attempt number (1 = first attempt).
	Attempt() int
}

type execContext struct {
	context.Context

	logger  *slog.Logger
	chat    llm.Client
	runID   string
	stepID  string
	attempt int
}

func (c *execContext) Logger() *slog.Logger { return c.logger }
func (c *execContext) LLM() llm.Client      { return c.chat }
func (c *execContext) RunID() string        { return c.runID }
func (c *execContext) StepID() string       { return c.stepID }
func (c *execContext) Attempt() int         { return c.attempt }

// ContextOption configures a Context.
type ContextOption func(*execContext)

// WithLogger sets the base logger. The run loop enriches it with run_id,
// step_id, and attempt fields per step.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *execContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLLM sets the chat client exposed to steps via Context.LLM().
func WithLLM(client llm.Client) ContextOption {
	return func(c *execContext) {
		c.chat = client
	}
}

// WithContextRunID overrides the auto-generated run ID. Used for log and
// trace correlation; checkpointing takes its run ID from the WithRunID run
// option.
func WithContextRunID(id string) ContextOption {
	return func(c *execContext) {
		if id != "" {
			c.runID = id
		}
	}
}

// NewContext wraps a standard context with stepgraph services and metadata.
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &execContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// withStepID derives a per-step context with an enriched logger.
func (c *execContext) withStepID(stepID string) *execContext {
	return &execContext{
		Context: c.Context,
		logger:  c.logger.With("run_id", c.runID, "step_id", stepID, "attempt", c.attempt),
		chat:    c.chat,
		runID:   c.runID,
		stepID:  stepID,
		attempt: c.attempt,
	}
}
