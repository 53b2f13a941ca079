package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSummarize computes index quantiles over the sorted amounts.
func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Avg)
	assert.Equal(t, 2.0, s.Q25)
	assert.Equal(t, 3.0, s.Q50)
	assert.Equal(t, 4.0, s.Q75)
}

// TestSummarize_Empty returns the zero summary.
func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

// TestSummarize_DoesNotMutateInput sorts a copy, not the caller's slice.
func TestSummarize_DoesNotMutateInput(t *testing.T) {
	amounts := []float64{3, 1, 2}
	Summarize(amounts)
	assert.Equal(t, []float64{3, 1, 2}, amounts)
}

// TestRatioQ50Avg divides median by mean and guards the zero mean.
func TestRatioQ50Avg(t *testing.T) {
	s := Summary{Q50: 3, Avg: 2}
	assert.Equal(t, 1.5, s.RatioQ50Avg())

	assert.Zero(t, Summary{Q50: 3}.RatioQ50Avg())
}

// TestIQRBounds spans 1.5 IQRs beyond each quartile.
func TestIQRBounds(t *testing.T) {
	lower, upper := Summary{Q25: 98, Q75: 105}.IQRBounds()
	assert.InDelta(t, 87.5, lower, 1e-9)
	assert.InDelta(t, 115.5, upper, 1e-9)
}

// TestOutliers flags a tiny and a huge transaction in an otherwise tight
// distribution of ten amounts.
func TestOutliers(t *testing.T) {
	amounts := []float64{95, 98, 100, 101, 102, 103, 105, 110, 3, 500}

	// Sorted: quartiles land at 98 / 102 / 105, so the IQR bounds are
	// [87.5, 115.5] and only the 3 and the 500 fall outside.
	assert.Equal(t, []int{8, 9}, Outliers(amounts))
}

// TestOutliers_NoneAndEmpty returns nil when nothing is anomalous.
func TestOutliers_NoneAndEmpty(t *testing.T) {
	assert.Nil(t, Outliers([]float64{100, 101, 102, 103}))
	assert.Nil(t, Outliers(nil))
}

// TestSummarize_ScreeningScenario reproduces the high-ratio pattern the
// screening phase looks for: a cluster of tiny amounts dragging the mean
// below the median.
func TestSummarize_ScreeningScenario(t *testing.T) {
	amounts := []float64{
		1.05, 0.95, 1.10, 1.20, 1.00, 1.15, 1.25, 0.99,
		595, 600, 610, 580, 590, 615, 605, 1600,
	}

	s := Summarize(amounts)
	assert.Greater(t, s.RatioQ50Avg(), 1.5)

	_, upper := s.IQRBounds()
	assert.Greater(t, 1600.0, upper)
	assert.Greater(t, 1600.0, 2*s.Q75)
}
