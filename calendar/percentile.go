/*
percentile.go - Nearest-rank percentiles over utilization samples

PURPOSE:
  The decision engine gates surge pricing and availability on the P95 of
  per-day machine utilization. These helpers implement the nearest-rank
  method: the result is always a member of the sample, never interpolated.

INDEX FORMULA:
  sort ascending, pick index ceil(n * p) - 1, clamped to [0, n-1].
  This exact formula is load-bearing: it decides whether a quote gets a
  surge multiplier. Do not swap in a linear-interpolation variant.

EDGE POLICY:
  Empty sample -> 0. Single element -> that element.
*/
package calendar

import (
	"math"
	"sort"
)

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return values[0]
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// P95 returns the 95th-percentile sample value (nearest-rank).
func P95(values []float64) float64 { return percentile(values, 0.95) }

// P99 returns the 99th-percentile sample value (nearest-rank).
func P99(values []float64) float64 { return percentile(values, 0.99) }

// Median returns the middle sample value, averaging the two middle values
// for even-sized samples.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return values[0]
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
