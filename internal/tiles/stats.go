package tiles

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ElevStats summarizes an elevation sample set in meters.
type ElevStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// ComputeElevStats gathers elevation statistics, ignoring NaNs. An empty
// or all-NaN input yields the zero value.
func ComputeElevStats(values []float32) ElevStats {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) {
			continue
		}
		xs = append(xs, f)
	}
	if len(xs) == 0 {
		return ElevStats{}
	}

	s := ElevStats{Min: xs[0], Max: xs[0]}
	for _, v := range xs {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}

// median returns the middle of the values; zero for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
