package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantive/stepgraph/internal/country"
	"github.com/quantive/stepgraph/internal/paymethods"
	"github.com/quantive/stepgraph/pkg/stepgraph"
	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

const (
	stepParse  = "parse"
	stepLookup = "lookup"
)

// Options configures an Agent.
type Options struct {
	// Model is the chat model used for parsing. Defaults to
	// gpt-3.5-turbo.
	Model string

	// Logger receives run progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Agent answers payment-method questions: parse, normalize, look up.
type Agent struct {
	client llm.Client
	store  paymethods.Store
	graph  *stepgraph.Compiled[State]
	opts   Options
}

// New builds the agent over a payment-method store. client may be nil
// to parse with pattern matching only.
func New(client llm.Client, store paymethods.Store, opts Options) (*Agent, error) {
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	a := &Agent{client: client, store: store, opts: opts}

	graph, err := stepgraph.NewGraph[State]().
		AddStep(stepParse, a.parse).
		AddStep(stepLookup, a.lookup).
		SetEntry(stepParse).
		AddEdge(stepParse, stepLookup).
		AddEdge(stepLookup, stepgraph.END).
		Compile()
	if err != nil {
		return nil, fmt.Errorf("compile workflow: %w", err)
	}
	a.graph = graph
	return a, nil
}

func (a *Agent) parse(ctx stepgraph.Context, s State) (State, error) {
	parsed := Parse(ctx, a.client, a.opts.Model, s.UserInput)
	s.Parsed = &parsed

	ctx.Logger().Debug("parsed query",
		"country_text", parsed.CountryText,
		"payment_type", parsed.PaymentType)
	return s, nil
}

func (a *Agent) lookup(ctx stepgraph.Context, s State) (State, error) {
	parsed := s.Parsed
	if parsed == nil || parsed.CountryText == "" {
		s.Result = &Result{
			PaymentType: optional(categoryOf(parsed)),
			Types:       []string{},
			Note:        "No country specified in input",
		}
		return s, nil
	}

	code := country.Normalize(parsed.CountryText)
	if code == "" {
		s.Result = &Result{
			PaymentType: optional(parsed.PaymentType),
			Types:       []string{},
			Note:        "Invalid country",
		}
		return s, nil
	}

	types, err := a.store.Lookup(code, parsed.PaymentType)
	if err != nil {
		return s, fmt.Errorf("lookup payment methods for %s: %w", code, err)
	}

	note := ""
	if len(types) == 0 {
		if parsed.PaymentType != "" {
			note = fmt.Sprintf("No %s payment methods found for %s", parsed.PaymentType, code)
		} else {
			note = fmt.Sprintf("No payment methods found for %s", code)
		}
	}

	s.Result = &Result{
		Country:     optional(code),
		PaymentType: optional(parsed.PaymentType),
		Count:       len(types),
		Types:       types,
		Note:        note,
	}
	return s, nil
}

// Run answers one question.
func (a *Agent) Run(ctx context.Context, input string) (*Result, error) {
	sgCtx := stepgraph.NewContext(ctx,
		stepgraph.WithLLM(a.client),
		stepgraph.WithLogger(a.opts.Logger),
	)

	final, err := a.graph.Run(sgCtx, State{UserInput: input})
	if err != nil {
		return nil, err
	}
	return final.Result, nil
}

func categoryOf(p *ParsedQuery) string {
	if p == nil {
		return ""
	}
	return p.PaymentType
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
