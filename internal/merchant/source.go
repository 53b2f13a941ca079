package merchant

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/quantive/stepgraph/internal/stats"
)

// Transaction is one row of a merchant's transaction history.
type Transaction struct {
	TransactionID string  `json:"transaction_id"`
	MerchantID    string  `json:"merchant_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Date          string  `json:"transaction_date"`
}

// StatsReport is the per-merchant statistics the screening phase works
// from.
type StatsReport struct {
	TotalMerchants  int        `json:"total_merchants"`
	Merchants       []Merchant `json:"merchants"`
	QueryPeriodDays int        `json:"query_period_days"`
}

// TransactionReport is the detailed history for one merchant.
type TransactionReport struct {
	MerchantID        string        `json:"merchant_id"`
	QueryPeriodDays   int           `json:"query_period_days"`
	TotalTransactions int           `json:"total_transactions"`
	Summary           stats.Summary `json:"transaction_summary"`
	Transactions      []Transaction `json:"transactions"`
}

// TransactionSource is the boundary to the transaction warehouse. The
// agent's tools are thin wrappers over it.
type TransactionSource interface {
	// MerchantStatistics aggregates per-merchant amount statistics over
	// the trailing window, sorted by q50/avg ratio descending.
	MerchantStatistics(ctx context.Context, days int) (StatsReport, error)

	// MerchantTransactions returns one merchant's transactions in the
	// trailing window, newest first.
	MerchantTransactions(ctx context.Context, merchantID string, days int) (TransactionReport, error)

	// Close releases underlying resources.
	Close() error
}

// maxStatsMerchants bounds the statistics report the way the warehouse
// query did, keeping prompts a sane size.
const maxStatsMerchants = 50

func buildStatsReport(byMerchant map[string][]float64, days int) StatsReport {
	merchants := make([]Merchant, 0, len(byMerchant))
	for id, amounts := range byMerchant {
		sum := stats.Summarize(amounts)
		if sum.Avg <= 0 {
			continue
		}
		merchants = append(merchants, Merchant{
			MerchantID:       id,
			Q50Amount:        sum.Q50,
			AvgAmount:        sum.Avg,
			TransactionCount: sum.Count,
			Q50AvgRatio:      round3(sum.RatioQ50Avg()),
		})
	}

	sort.Slice(merchants, func(i, j int) bool {
		if merchants[i].Q50AvgRatio != merchants[j].Q50AvgRatio {
			return merchants[i].Q50AvgRatio > merchants[j].Q50AvgRatio
		}
		return merchants[i].TransactionCount > merchants[j].TransactionCount
	})
	if len(merchants) > maxStatsMerchants {
		merchants = merchants[:maxStatsMerchants]
	}

	return StatsReport{
		TotalMerchants:  len(merchants),
		Merchants:       merchants,
		QueryPeriodDays: days,
	}
}

func buildTransactionReport(merchantID string, txs []Transaction, days int) TransactionReport {
	amounts := make([]float64, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount
	}
	return TransactionReport{
		MerchantID:        merchantID,
		QueryPeriodDays:   days,
		TotalTransactions: len(txs),
		Summary:           stats.Summarize(amounts),
		Transactions:      txs,
	}
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}

// SQLiteSource reads transactions from a SQLite table named
// transactions with columns transaction_id, merchant_id, amount,
// currency, and transaction_date.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens the transaction database at path.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open transaction database: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// MerchantStatistics implements TransactionSource.
func (s *SQLiteSource) MerchantStatistics(ctx context.Context, days int) (StatsReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant_id, amount
		FROM transactions
		WHERE transaction_date >= ? AND amount > 0
	`, windowStart(days))
	if err != nil {
		return StatsReport{}, fmt.Errorf("query merchant statistics: %w", err)
	}
	defer rows.Close()

	byMerchant := map[string][]float64{}
	for rows.Next() {
		var id string
		var amount float64
		if err := rows.Scan(&id, &amount); err != nil {
			return StatsReport{}, fmt.Errorf("scan statistics row: %w", err)
		}
		byMerchant[id] = append(byMerchant[id], amount)
	}
	if err := rows.Err(); err != nil {
		return StatsReport{}, fmt.Errorf("read statistics rows: %w", err)
	}

	return buildStatsReport(byMerchant, days), nil
}

// MerchantTransactions implements TransactionSource.
func (s *SQLiteSource) MerchantTransactions(ctx context.Context, merchantID string, days int) (TransactionReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, merchant_id, amount, currency, transaction_date
		FROM transactions
		WHERE merchant_id = ? AND transaction_date >= ? AND amount > 0
		ORDER BY transaction_date DESC
	`, merchantID, windowStart(days))
	if err != nil {
		return TransactionReport{}, fmt.Errorf("query transactions for %s: %w", merchantID, err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.TransactionID, &tx.MerchantID, &tx.Amount, &tx.Currency, &tx.Date); err != nil {
			return TransactionReport{}, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return TransactionReport{}, fmt.Errorf("read transaction rows: %w", err)
	}

	return buildTransactionReport(merchantID, txs, days), nil
}

// Close implements TransactionSource.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func windowStart(days int) string {
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

// StaticSource serves a fixed in-memory transaction set, used by the
// demo mode and tests.
type StaticSource struct {
	txs []Transaction
}

// NewStaticSource creates a source over the given transactions.
func NewStaticSource(txs []Transaction) *StaticSource {
	return &StaticSource{txs: append([]Transaction(nil), txs...)}
}

// MerchantStatistics implements TransactionSource. The trailing window
// is ignored; a static set has no clock.
func (s *StaticSource) MerchantStatistics(_ context.Context, days int) (StatsReport, error) {
	byMerchant := map[string][]float64{}
	for _, tx := range s.txs {
		if tx.Amount > 0 {
			byMerchant[tx.MerchantID] = append(byMerchant[tx.MerchantID], tx.Amount)
		}
	}
	return buildStatsReport(byMerchant, days), nil
}

// MerchantTransactions implements TransactionSource.
func (s *StaticSource) MerchantTransactions(_ context.Context, merchantID string, days int) (TransactionReport, error) {
	var txs []Transaction
	for _, tx := range s.txs {
		if tx.MerchantID == merchantID && tx.Amount > 0 {
			txs = append(txs, tx)
		}
	}
	return buildTransactionReport(merchantID, txs, days), nil
}

// Close implements TransactionSource.
func (s *StaticSource) Close() error { return nil }

// DemoTransactions is a small synthetic dataset with one merchant whose
// amount distribution skews the q50/avg ratio past the screening
// threshold.
func DemoTransactions() []Transaction {
	mk := func(id, merchant string, amount float64) Transaction {
		return Transaction{
			TransactionID: id,
			MerchantID:    merchant,
			Amount:        amount,
			Currency:      "USD",
			Date:          "2026-08-20",
		}
	}
	return []Transaction{
		// Ordinary merchant: tight distribution, ratio near 1.
		mk("t-001", "m-groceries", 24.10),
		mk("t-002", "m-groceries", 25.75),
		mk("t-003", "m-groceries", 23.40),
		mk("t-004", "m-groceries", 26.20),
		mk("t-005", "m-groceries", 24.95),
		mk("t-006", "m-groceries", 25.30),

		// Skewed merchant: a cluster of unit-priced amounts drags the
		// average well below the median, and one oversized sale sits
		// outside the IQR bounds.
		mk("t-101", "m-electronics", 0.95),
		mk("t-102", "m-electronics", 0.99),
		mk("t-103", "m-electronics", 1.00),
		mk("t-104", "m-electronics", 1.05),
		mk("t-105", "m-electronics", 1.10),
		mk("t-106", "m-electronics", 1.15),
		mk("t-107", "m-electronics", 1.20),
		mk("t-108", "m-electronics", 1.25),
		mk("t-109", "m-electronics", 580.00),
		mk("t-110", "m-electronics", 590.00),
		mk("t-111", "m-electronics", 595.00),
		mk("t-112", "m-electronics", 600.00),
		mk("t-113", "m-electronics", 605.00),
		mk("t-114", "m-electronics", 610.00),
		mk("t-115", "m-electronics", 615.00),
		mk("t-116", "m-electronics", 1600.00),
	}
}
