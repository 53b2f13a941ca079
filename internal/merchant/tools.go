package merchant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quantive/stepgraph/internal/stats"
	"github.com/quantive/stepgraph/internal/tools"
)

// Tool names the model calls.
const (
	ToolMerchantStatistics   = "merchant_statistics"
	ToolMerchantTransactions = "merchant_transactions"
	ToolAnalyzeAnomalies     = "analyze_anomalies"
)

const (
	defaultStatsDays       = 30
	defaultTransactionDays = 7
	maxReportedAnomalies   = 10
)

// RegisterTools wires the merchant analysis tools over a transaction
// source into a registry. statsDays is the default trailing window for
// the statistics tool.
func RegisterTools(reg *tools.Registry, src TransactionSource, statsDays int) error {
	if statsDays <= 0 {
		statsDays = defaultStatsDays
	}

	defs := []tools.Definition{
		{
			Name:        ToolMerchantStatistics,
			Description: "Get per-merchant transaction statistics (q50 amount, average amount, transaction count, q50/avg ratio) over a trailing window of days.",
			Schema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"days": {"type": "integer", "minimum": 1, "description": "Trailing window in days"}
				},
				"additionalProperties": false
			}`),
			Execute: func(ctx context.Context, args map[string]any) (any, error) {
				days := intArg(args, "days", statsDays)
				report, err := src.MerchantStatistics(ctx, days)
				if err != nil {
					return nil, fmt.Errorf("failed to fetch merchant statistics: %v", err)
				}
				return report, nil
			},
		},
		{
			Name:        ToolMerchantTransactions,
			Description: "Get the detailed transactions for one merchant over a trailing window of days.",
			Schema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"merchant_id": {"type": "string"},
					"days": {"type": "integer", "minimum": 1, "description": "Trailing window in days"}
				},
				"required": ["merchant_id"],
				"additionalProperties": false
			}`),
			Execute: func(ctx context.Context, args map[string]any) (any, error) {
				merchantID, _ := args["merchant_id"].(string)
				days := intArg(args, "days", defaultTransactionDays)
				report, err := src.MerchantTransactions(ctx, merchantID, days)
				if err != nil {
					return nil, fmt.Errorf("failed to fetch transactions for merchant %s: %v", merchantID, err)
				}
				return report, nil
			},
		},
		{
			Name:        ToolAnalyzeAnomalies,
			Description: "Analyze one merchant's transactions for anomalies: IQR outliers, oversized transactions, and what drives the q50/avg ratio.",
			Schema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"merchant_id": {"type": "string"},
					"days": {"type": "integer", "minimum": 1, "description": "Trailing window in days"}
				},
				"required": ["merchant_id"],
				"additionalProperties": false
			}`),
			Execute: func(ctx context.Context, args map[string]any) (any, error) {
				merchantID, _ := args["merchant_id"].(string)
				days := intArg(args, "days", defaultTransactionDays)
				report, err := src.MerchantTransactions(ctx, merchantID, days)
				if err != nil {
					return nil, fmt.Errorf("failed to analyze merchant %s: %v", merchantID, err)
				}
				return AnalyzeAnomalies(report), nil
			},
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// AnomalousTransaction is one flagged transaction in an anomaly
// analysis.
type AnomalousTransaction struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Type          string  `json:"type,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	MultipleOfQ75 float64 `json:"multiple_of_q75,omitempty"`
}

// AnomalyAnalysis is the result of screening one merchant's
// transactions for outliers.
type AnomalyAnalysis struct {
	MerchantID  string        `json:"merchant_id"`
	Q50AvgRatio float64       `json:"q50_avg_ratio"`
	Statistics  stats.Summary `json:"statistics"`

	TotalAnomalies    int                    `json:"total_anomalies"`
	Anomalies         []AnomalousTransaction `json:"anomalous_transactions"`
	LargeTransactions []AnomalousTransaction `json:"large_transactions"`

	Note string `json:"note,omitempty"`
}

// AnalyzeAnomalies flags transactions outside the IQR bounds of the
// merchant's own amount distribution, plus transactions above twice the
// Q75.
func AnalyzeAnomalies(report TransactionReport) AnomalyAnalysis {
	analysis := AnomalyAnalysis{
		MerchantID:        report.MerchantID,
		Statistics:        report.Summary,
		Anomalies:         []AnomalousTransaction{},
		LargeTransactions: []AnomalousTransaction{},
	}
	if len(report.Transactions) == 0 {
		analysis.Note = "no transactions to analyze"
		return analysis
	}

	analysis.Q50AvgRatio = round3(report.Summary.RatioQ50Avg())
	lower, upper := report.Summary.IQRBounds()

	for _, tx := range report.Transactions {
		if tx.Amount < lower || tx.Amount > upper {
			analysis.TotalAnomalies++
			if len(analysis.Anomalies) < maxReportedAnomalies {
				analysis.Anomalies = append(analysis.Anomalies, AnomalousTransaction{
					TransactionID: tx.TransactionID,
					Amount:        tx.Amount,
					Date:          tx.Date,
					Type:          "outlier",
					Reason:        fmt.Sprintf("Amount %.2f outside IQR bounds [%.2f, %.2f]", tx.Amount, lower, upper),
				})
			}
		}
		if q75 := report.Summary.Q75; q75 > 0 && tx.Amount > 2*q75 {
			if len(analysis.LargeTransactions) < maxReportedAnomalies {
				analysis.LargeTransactions = append(analysis.LargeTransactions, AnomalousTransaction{
					TransactionID: tx.TransactionID,
					Amount:        tx.Amount,
					Date:          tx.Date,
					MultipleOfQ75: round3(tx.Amount / q75),
				})
			}
		}
	}
	return analysis
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return int(n)
		}
	}
	return fallback
}
