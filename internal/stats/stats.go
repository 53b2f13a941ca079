// Package stats implements the small amount-distribution statistics the
// analysis agents screen with: index quantiles, the q50/avg ratio, and
// IQR-based outlier bounds.
package stats

import "sort"

// Summary holds the distribution statistics for a set of amounts.
type Summary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Q25   float64 `json:"q25"`
	Q50   float64 `json:"q50"`
	Q75   float64 `json:"q75"`
}

// Summarize computes a Summary over amounts. Returns the zero Summary for
// an empty input.
func Summarize(amounts []float64) Summary {
	if len(amounts) == 0 {
		return Summary{}
	}

	sorted := append([]float64(nil), amounts...)
	sort.Float64s(sorted)

	n := len(sorted)
	var sum float64
	for _, a := range sorted {
		sum += a
	}

	return Summary{
		Count: n,
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
		Q25:   sorted[n/4],
		Q50:   sorted[n/2],
		Q75:   sorted[3*n/4],
	}
}

// RatioQ50Avg returns the median-to-mean ratio, the anomaly-screening
// signal. Zero when avg is zero.
func (s Summary) RatioQ50Avg() float64 {
	if s.Avg == 0 {
		return 0
	}
	return s.Q50 / s.Avg
}

// IQRBounds returns the outlier bounds [Q25 - 1.5*IQR, Q75 + 1.5*IQR].
func (s Summary) IQRBounds() (lower, upper float64) {
	iqr := s.Q75 - s.Q25
	return s.Q25 - 1.5*iqr, s.Q75 + 1.5*iqr
}

// Outliers returns the indices of amounts outside the IQR bounds of their
// own distribution, preserving input order.
func Outliers(amounts []float64) []int {
	if len(amounts) == 0 {
		return nil
	}
	lower, upper := Summarize(amounts).IQRBounds()

	var out []int
	for i, a := range amounts {
		if a < lower || a > upper {
			out = append(out, i)
		}
	}
	return out
}
