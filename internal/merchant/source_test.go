package merchant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStaticSource_MerchantStatistics aggregates per-merchant statistics
// sorted by ratio descending.
func TestStaticSource_MerchantStatistics(t *testing.T) {
	src := NewStaticSource(DemoTransactions())
	defer src.Close()

	report, err := src.MerchantStatistics(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalMerchants)
	assert.Equal(t, 30, report.QueryPeriodDays)
	require.Len(t, report.Merchants, 2)

	// The skewed merchant sorts first.
	skewed := report.Merchants[0]
	assert.Equal(t, "m-electronics", skewed.MerchantID)
	assert.Equal(t, 16, skewed.TransactionCount)
	assert.Greater(t, skewed.Q50AvgRatio, 1.5)

	ordinary := report.Merchants[1]
	assert.Equal(t, "m-groceries", ordinary.MerchantID)
	assert.InDelta(t, 1.0, ordinary.Q50AvgRatio, 0.1)
}

// TestStaticSource_MerchantTransactions filters by merchant and drops
// non-positive amounts.
func TestStaticSource_MerchantTransactions(t *testing.T) {
	txs := append(DemoTransactions(), Transaction{
		TransactionID: "t-refund",
		MerchantID:    "m-groceries",
		Amount:        -12.50,
		Currency:      "USD",
		Date:          "2026-08-21",
	})
	src := NewStaticSource(txs)
	defer src.Close()

	report, err := src.MerchantTransactions(context.Background(), "m-groceries", 7)
	require.NoError(t, err)

	assert.Equal(t, "m-groceries", report.MerchantID)
	assert.Equal(t, 6, report.TotalTransactions)
	assert.Equal(t, 6, report.Summary.Count)
	for _, tx := range report.Transactions {
		assert.Equal(t, "m-groceries", tx.MerchantID)
		assert.Greater(t, tx.Amount, 0.0)
	}
}

// TestStaticSource_UnknownMerchant returns an empty report.
func TestStaticSource_UnknownMerchant(t *testing.T) {
	src := NewStaticSource(DemoTransactions())
	defer src.Close()

	report, err := src.MerchantTransactions(context.Background(), "m-ghost", 7)
	require.NoError(t, err)
	assert.Zero(t, report.TotalTransactions)
	assert.Empty(t, report.Transactions)
}

// TestBuildStatsReport skips merchants with no usable amounts and caps the
// report size.
func TestBuildStatsReport(t *testing.T) {
	byMerchant := map[string][]float64{
		"m-a":    {10, 20, 30},
		"m-zero": {},
	}
	report := buildStatsReport(byMerchant, 14)

	require.Len(t, report.Merchants, 1)
	assert.Equal(t, "m-a", report.Merchants[0].MerchantID)
	assert.Equal(t, 14, report.QueryPeriodDays)
}

// TestRound3 rounds half up to three decimals.
func TestRound3(t *testing.T) {
	assert.Equal(t, 1.599, round3(1.59898))
	assert.Equal(t, 1.6, round3(1.5999))
	assert.Equal(t, 0.0, round3(0))
}
