// Package stats is the pure aggregation core behind all club and student
// statistics: rating averages, per-skill aggregation, monthly trend buckets
// and the club activity rate.
//
// Every function here is a side-effect-free transformation over collections
// that have already been fetched; the package never touches a repository, a
// client handle or a clock. Averages over empty inputs are 0 (never NaN), and
// "no data" is only ever distinguished from 0 where it matters for charting
// (the monthly matrix cells, which are null). Callers recompute on every data
// refresh; computation is linear in input size.
package stats

import "math"

// Round1 rounds x to one decimal place. All aggregates exposed by this
// package are rounded with it.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Mean returns the arithmetic mean of vals, or 0 when vals is empty.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
