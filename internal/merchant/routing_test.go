package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantive/stepgraph/pkg/stepgraph"
	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

func stateWithToolCall(phase Phase) State {
	s := NewState()
	s.Phase = phase
	return s.appendMessages(llm.Message{
		Role:      llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{ID: "call_1", Name: ToolMerchantStatistics}},
	})
}

// TestRoute_ToolCallsWin dispatches pending tool calls before anything
// else, including pending errors.
func TestRoute_ToolCallsWin(t *testing.T) {
	s := stateWithToolCall(PhaseGetStats)
	assert.Equal(t, stepDispatch, route(nil, s))

	s.LastError = "something broke"
	assert.Equal(t, stepDispatch, route(nil, s))
}

// TestRoute_ErrorBeforePhase handles a pending error before consulting the
// phase table.
func TestRoute_ErrorBeforePhase(t *testing.T) {
	s := NewState()
	s.Phase = PhaseGetStats
	s.LastError = "no merchant statistics found in conversation"

	assert.Equal(t, stepErrorHandle, route(nil, s))
}

// TestRoute_PhaseTable maps each phase to its next step.
func TestRoute_PhaseTable(t *testing.T) {
	flagged := []Merchant{{MerchantID: "m-1"}, {MerchantID: "m-2"}}

	tests := []struct {
		name  string
		state func() State
		want  string
	}{
		{"stats go to screening", func() State {
			s := NewState()
			s.Phase = PhaseGetStats
			return s
		}, stepScreen},
		{"screen with flagged merchants iterates", func() State {
			s := NewState()
			s.Phase = PhaseScreen
			s.HighRatio = flagged
			return s
		}, stepIterate},
		{"screen with nothing flagged finalizes", func() State {
			s := NewState()
			s.Phase = PhaseScreen
			return s
		}, stepFinalize},
		{"transactions phase keeps generating", func() State {
			s := NewState()
			s.Phase = PhaseTransactions
			return s
		}, stepGenerate},
		{"patterns with merchants left iterates", func() State {
			s := NewState()
			s.Phase = PhasePatterns
			s.HighRatio = flagged
			s.AnalysisResults = []map[string]any{{"merchant_id": "m-1"}}
			return s
		}, stepIterate},
		{"patterns with all analyzed finalizes", func() State {
			s := NewState()
			s.Phase = PhasePatterns
			s.HighRatio = flagged
			s.AnalysisResults = []map[string]any{
				{"merchant_id": "m-1"}, {"merchant_id": "m-2"},
			}
			return s
		}, stepFinalize},
		{"compile finalizes", func() State {
			s := NewState()
			s.Phase = PhaseCompile
			return s
		}, stepFinalize},
		{"completed ends", func() State {
			s := NewState()
			s.Phase = PhaseCompleted
			return s
		}, stepgraph.END},
		{"unknown phase fails safe to finalize", func() State {
			s := NewState()
			s.Phase = Phase("nonsense")
			return s
		}, stepFinalize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, route(nil, tt.state()))
		})
	}
}

// TestRoute_AnalysisCap stops iterating once five merchants are analyzed
// even when more are flagged.
func TestRoute_AnalysisCap(t *testing.T) {
	s := NewState()
	s.Phase = PhasePatterns
	for i := 0; i < 8; i++ {
		s.HighRatio = append(s.HighRatio, Merchant{MerchantID: "m"})
	}
	for i := 0; i < maxAnalyzedMerchants; i++ {
		s.AnalysisResults = append(s.AnalysisResults, map[string]any{})
	}

	assert.Equal(t, stepFinalize, route(nil, s))
}
