package merchant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/quantive/stepgraph/internal/tools"
	"github.com/quantive/stepgraph/pkg/stepgraph"
	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
	"github.com/quantive/stepgraph/pkg/stepgraph/template"
)

const systemPrompt = `You are a specialized merchant transaction analysis agent. Your job is to:

1. Get merchant statistics using the merchant_statistics tool
2. Identify merchants with a suspicious q50/avg amount ratio
3. For each flagged merchant, get their detailed transactions using merchant_transactions
4. Analyze transaction patterns with analyze_anomalies to understand what causes the high ratio
5. Provide comprehensive insights and recommendations

Start by getting the merchant statistics. Focus on actionable insights about merchant behavior patterns.`

// phasePrompts nudge the model toward the right tool for the current
// phase, mirroring the step the workflow is in. ${merchant_id} is
// expanded from state at generation time.
var phasePrompts = map[Phase]string{
	PhaseGetStats:     "Start by calling merchant_statistics to get the list of merchants with their q50 amounts, average amounts, and transaction counts.",
	PhaseScreen:       "Review the flagged merchants and confirm which warrant detailed analysis.",
	PhaseTransactions: "Get detailed transactions for merchant ${merchant_id} using merchant_transactions.",
	PhasePatterns:     "Analyze the transaction patterns for merchant ${merchant_id} using analyze_anomalies.",
	PhaseCompile:      "Compile your final analysis with insights about the merchants whose q50/avg ratio is suspicious.",
}

// DefaultFilterExpr is the screening expression applied to each
// merchant's statistics row.
const DefaultFilterExpr = "ratio > 1.5"

// Options configures an Agent.
type Options struct {
	// Model is the chat model identifier. Defaults to gpt-4o-mini.
	Model string

	// Days is the trailing statistics window. Defaults to 30.
	Days int

	// FilterExpr screens merchants; variables: merchant_id, ratio,
	// q50, avg, count. Defaults to DefaultFilterExpr.
	FilterExpr string

	// MaxRetries bounds visits to the error-handling step before the
	// run fails hard. Defaults to 3.
	MaxRetries int

	// MaxIterations bounds total step executions. Defaults to 60.
	MaxIterations int

	// Logger receives run progress. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o *Options) fillDefaults() {
	if o.Model == "" {
		o.Model = "gpt-4o-mini"
	}
	if o.Days <= 0 {
		o.Days = defaultStatsDays
	}
	if o.FilterExpr == "" {
		o.FilterExpr = DefaultFilterExpr
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 60
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Agent runs the merchant-analysis workflow end to end.
type Agent struct {
	client   llm.Client
	registry *tools.Registry
	graph    *stepgraph.Compiled[State]
	filter   *vm.Program
	opts     Options
}

// New builds the agent: registers the analysis tools over src, compiles
// the screening expression, and compiles the workflow graph.
func New(client llm.Client, src TransactionSource, opts Options) (*Agent, error) {
	opts.fillDefaults()

	reg := tools.NewRegistry()
	if err := RegisterTools(reg, src, opts.Days); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	filter, err := expr.Compile(opts.FilterExpr,
		expr.Env(filterEnv(Merchant{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile filter expression %q: %w", opts.FilterExpr, err)
	}

	a := &Agent{client: client, registry: reg, filter: filter, opts: opts}

	graph, err := a.buildGraph().Compile()
	if err != nil {
		return nil, fmt.Errorf("compile workflow: %w", err)
	}
	a.graph = graph
	return a, nil
}

func (a *Agent) buildGraph() *stepgraph.Graph[State] {
	return stepgraph.NewGraph[State]().
		AddStep(stepStart, a.start).
		AddStep(stepGenerate, a.generate).
		AddStep(stepDispatch, a.dispatch).
		AddStep(stepScreen, a.screen).
		AddStep(stepIterate, a.iterate).
		AddStep(stepFinalize, a.finalize).
		AddStep(stepErrorHandle, a.handleError).
		SetEntry(stepStart).
		AddEdge(stepStart, stepGenerate).
		AddConditionalEdge(stepGenerate, route).
		AddEdge(stepDispatch, stepGenerate).
		AddEdge(stepScreen, stepGenerate).
		AddEdge(stepIterate, stepGenerate).
		AddEdge(stepErrorHandle, stepGenerate).
		AddEdge(stepFinalize, stepgraph.END)
}

// start seeds the conversation and moves into the statistics phase.
func (a *Agent) start(_ stepgraph.Context, s State) (State, error) {
	s = s.appendMessages(llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	s.Phase = PhaseGetStats
	return s, nil
}

// generate sends the conversation to the model with the tool schemas
// attached. A transport failure is fatal for the run.
func (a *Agent) generate(ctx stepgraph.Context, s State) (State, error) {
	if prompt, ok := phasePrompts[s.Phase]; ok {
		prompt = template.Expand(prompt, map[string]any{"merchant_id": s.CurrentMerchantID})
		s = s.appendMessages(llm.Message{Role: llm.RoleUser, Content: prompt})
	}

	resp, err := ctx.LLM().Complete(ctx, llm.Request{
		Model:       a.opts.Model,
		Messages:    s.Messages,
		Tools:       a.registry.Definitions(),
		Temperature: 0.1,
	})
	if err != nil {
		return s, fmt.Errorf("chat completion: %w", err)
	}

	s = s.appendMessages(resp.Message())
	s.Iterations++
	return s, nil
}

// dispatch runs every tool call from the newest model turn and folds
// domain results into the state accumulators.
func (a *Agent) dispatch(ctx stepgraph.Context, s State) (State, error) {
	calls := s.lastMessage().ToolCalls
	for _, call := range calls {
		msg := a.registry.Dispatch(ctx, call)
		s = s.appendMessages(msg)

		switch call.Name {
		case ToolMerchantTransactions:
			if !isErrorPayload(msg.Content) {
				s.Phase = PhasePatterns
			}
		case ToolAnalyzeAnomalies:
			var analysis map[string]any
			if err := json.Unmarshal([]byte(msg.Content), &analysis); err == nil {
				if _, failed := analysis["error"]; !failed {
					s.AnalysisResults = append(append([]map[string]any(nil), s.AnalysisResults...), analysis)
					s.Phase = PhasePatterns
				}
			}
		}
	}
	return s, nil
}

// screen extracts the newest statistics payload from the conversation
// and filters merchants through the screening expression.
func (a *Agent) screen(ctx stepgraph.Context, s State) (State, error) {
	report, ok := latestStatsReport(s.Messages)
	if !ok {
		s.LastError = "no merchant statistics found in conversation"
		return s, nil
	}

	var flagged []Merchant
	for _, m := range report.Merchants {
		keep, err := vm.Run(a.filter, filterEnv(m))
		if err != nil {
			return s, fmt.Errorf("evaluate filter for merchant %s: %w", m.MerchantID, err)
		}
		if keep.(bool) {
			flagged = append(flagged, m)
		}
	}

	s.MerchantData = &report
	s.HighRatio = flagged
	s.Phase = PhaseScreen

	ctx.Logger().Info("screened merchants",
		"total", len(report.Merchants),
		"flagged", len(flagged),
		"filter", a.opts.FilterExpr)

	s = s.appendMessages(llm.Message{
		Role: llm.RoleAssistant,
		Content: fmt.Sprintf("Found %d of %d merchants matching %q. Will analyze each in turn.",
			len(flagged), len(report.Merchants), a.opts.FilterExpr),
	})
	return s, nil
}

// iterate picks the next flagged merchant, or moves to compilation when
// the cap or the list is exhausted.
func (a *Agent) iterate(_ stepgraph.Context, s State) (State, error) {
	analyzed := len(s.AnalysisResults)
	if analyzed < len(s.HighRatio) && analyzed < maxAnalyzedMerchants {
		m := s.HighRatio[analyzed]
		s.CurrentMerchantID = m.MerchantID
		s.Phase = PhaseTransactions
		s = s.appendMessages(llm.Message{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("Now analyze merchant %s (q50/avg ratio: %.3f). First get their detailed transactions, then analyze the patterns.",
				m.MerchantID, m.Q50AvgRatio),
		})
		return s, nil
	}
	s.Phase = PhaseCompile
	return s, nil
}

// finalize builds the human-readable closing turn and marks the run
// complete.
func (a *Agent) finalize(_ stepgraph.Context, s State) (State, error) {
	total := 0
	if s.MerchantData != nil {
		total = len(s.MerchantData.Merchants)
	}
	s = s.appendMessages(llm.Message{
		Role: llm.RoleAssistant,
		Content: fmt.Sprintf(
			"Merchant analysis complete. Analyzed %d merchants, flagged %d, completed detailed analysis for %d.",
			total, len(s.HighRatio), len(s.AnalysisResults)),
	})
	s.Phase = PhaseCompleted
	return s, nil
}

// handleError records the pending error in the conversation, clears it,
// and counts the retry. Exceeding the ceiling fails the run.
func (a *Agent) handleError(ctx stepgraph.Context, s State) (State, error) {
	s.Retries++
	if s.Retries > a.opts.MaxRetries {
		return s, fmt.Errorf("retry ceiling reached after %d attempts: %s", a.opts.MaxRetries, s.LastError)
	}

	ctx.Logger().Warn("recovering from workflow error",
		"error", s.LastError,
		"retry", s.Retries)

	s = s.appendMessages(llm.Message{
		Role:    llm.RoleAssistant,
		Content: fmt.Sprintf("An error occurred: %s. Retry count: %d", s.LastError, s.Retries),
	})
	s.LastError = ""
	return s, nil
}

// Run executes the workflow and returns the compiled report.
func (a *Agent) Run(ctx context.Context) (*Report, error) {
	sgCtx := stepgraph.NewContext(ctx,
		stepgraph.WithLLM(a.client),
		stepgraph.WithLogger(a.opts.Logger),
	)

	final, err := a.graph.Run(sgCtx, NewState(),
		stepgraph.WithMaxIterations(a.opts.MaxIterations),
		stepgraph.WithRunLogger(a.opts.Logger),
	)
	if err != nil {
		return nil, err
	}
	return buildReport(final), nil
}

// Report is the persisted outcome of one analysis run.
type Report struct {
	Status             string           `json:"status"`
	Summary            ReportSummary    `json:"analysis_summary"`
	HighRatioMerchants []Merchant       `json:"high_ratio_merchants"`
	DetailedAnalysis   []map[string]any `json:"detailed_analysis"`
	Messages           []string         `json:"messages"`
	TotalIterations    int              `json:"total_iterations"`
	Configuration      map[string]any   `json:"configuration,omitempty"`
}

// ReportSummary carries the headline counts.
type ReportSummary struct {
	TotalMerchants    int    `json:"total_merchants_analyzed"`
	HighRatioFound    int    `json:"high_ratio_merchants_found"`
	DetailedCompleted int    `json:"detailed_analysis_completed"`
	Timestamp         string `json:"analysis_timestamp"`
}

func buildReport(s State) *Report {
	total := 0
	if s.MerchantData != nil {
		total = len(s.MerchantData.Merchants)
	}

	msgs := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		msgs = append(msgs, m.Content)
	}

	return &Report{
		Status: "completed",
		Summary: ReportSummary{
			TotalMerchants:    total,
			HighRatioFound:    len(s.HighRatio),
			DetailedCompleted: len(s.AnalysisResults),
			Timestamp:         time.Now().Format(time.RFC3339),
		},
		HighRatioMerchants: s.HighRatio,
		DetailedAnalysis:   s.AnalysisResults,
		Messages:           msgs,
		TotalIterations:    s.Iterations,
	}
}

// SaveReport writes the report as indented JSON. An empty path gets a
// timestamped file name in the working directory. Returns the path
// written.
func SaveReport(report *Report, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("merchant_analysis_results_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func filterEnv(m Merchant) map[string]any {
	return map[string]any{
		"merchant_id": m.MerchantID,
		"ratio":       m.Q50AvgRatio,
		"q50":         m.Q50Amount,
		"avg":         m.AvgAmount,
		"count":       m.TransactionCount,
	}
}

// latestStatsReport scans the conversation newest-first for a
// merchant_statistics tool result.
func latestStatsReport(msgs []llm.Message) (StatsReport, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Role != llm.RoleTool || m.Name != ToolMerchantStatistics {
			continue
		}
		if isErrorPayload(m.Content) {
			continue
		}
		var report StatsReport
		if err := json.Unmarshal([]byte(m.Content), &report); err != nil {
			continue
		}
		return report, true
	}
	return StatsReport{}, false
}

func isErrorPayload(content string) bool {
	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return false
	}
	_, ok := payload["error"]
	return ok
}
