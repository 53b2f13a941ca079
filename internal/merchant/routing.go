package merchant

import (
	"github.com/quantive/stepgraph/pkg/stepgraph"
)

// Graph step IDs.
const (
	stepStart       = "start"
	stepGenerate    = "generate"
	stepDispatch    = "dispatch_tool"
	stepScreen      = "screen_merchants"
	stepIterate     = "next_merchant"
	stepFinalize    = "compile_results"
	stepErrorHandle = "error_handle"
)

// route decides the step after a model turn. Pure over state: tool
// calls win, then a pending error, then the phase table. Anything
// unmatched falls through to finalization so a run never deadlocks.
func route(_ stepgraph.Context, s State) string {
	if len(s.lastMessage().ToolCalls) > 0 {
		return stepDispatch
	}
	if s.LastError != "" {
		return stepErrorHandle
	}

	switch s.Phase {
	case PhaseGetStats:
		return stepScreen
	case PhaseScreen:
		if len(s.HighRatio) > 0 {
			return stepIterate
		}
		return stepFinalize
	case PhaseTransactions:
		return stepGenerate
	case PhasePatterns:
		analyzed := len(s.AnalysisResults)
		if analyzed < len(s.HighRatio) && analyzed < maxAnalyzedMerchants {
			return stepIterate
		}
		return stepFinalize
	case PhaseCompile:
		return stepFinalize
	case PhaseCompleted:
		return stepgraph.END
	}
	return stepFinalize
}
