// Package merchant implements the merchant-analysis agent: a step-state
// workflow that pulls merchant transaction statistics, screens for
// merchants whose q50/avg amount ratio is suspicious, analyzes each
// flagged merchant's transactions for outliers, and compiles a results
// report.
package merchant

import (
	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

// Phase tags where a run is in the analysis pipeline. The router
// dispatches on it after every model turn.
type Phase string

const (
	PhaseStart        Phase = "start"
	PhaseGetStats     Phase = "get_merchant_stats"
	PhaseScreen       Phase = "screen_merchants"
	PhaseTransactions Phase = "analyze_transactions"
	PhasePatterns     Phase = "analyze_patterns"
	PhaseCompile      Phase = "compile_final"
	PhaseCompleted    Phase = "completed"
)

// maxAnalyzedMerchants caps how many flagged merchants get a detailed
// pass before the run compiles results.
const maxAnalyzedMerchants = 5

// Merchant is one row of the statistics report.
type Merchant struct {
	MerchantID       string  `json:"merchant_id"`
	Q50Amount        float64 `json:"q50_amount"`
	AvgAmount        float64 `json:"avg_amount"`
	TransactionCount int     `json:"transaction_count"`
	Q50AvgRatio      float64 `json:"q50_avg_ratio"`
}

// State is the workflow state threaded through every step. Steps return
// an updated copy; the conversation only grows.
type State struct {
	Messages   []llm.Message  `json:"messages"`
	Phase      Phase          `json:"phase"`
	Iterations int            `json:"iterations"`
	Retries    int            `json:"retries"`
	LastError  string         `json:"last_error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`

	MerchantData      *StatsReport     `json:"merchant_data,omitempty"`
	HighRatio         []Merchant       `json:"high_ratio_merchants"`
	AnalysisResults   []map[string]any `json:"analysis_results"`
	CurrentMerchantID string           `json:"current_merchant_id"`
}

// NewState creates the fresh per-run state.
func NewState() State {
	return State{
		Phase:           PhaseStart,
		Metadata:        map[string]any{},
		HighRatio:       []Merchant{},
		AnalysisResults: []map[string]any{},
	}
}

// appendMessages returns state with turns appended, never mutating the
// original slice header in place.
func (s State) appendMessages(msgs ...llm.Message) State {
	s.Messages = append(append([]llm.Message(nil), s.Messages...), msgs...)
	return s
}

// lastMessage returns the newest conversation turn, or a zero Message
// when the conversation is empty.
func (s State) lastMessage() llm.Message {
	if len(s.Messages) == 0 {
		return llm.Message{}
	}
	return s.Messages[len(s.Messages)-1]
}
