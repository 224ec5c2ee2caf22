package tsd

import (
	"sort"
	"time"
)

// dayOrdinal converts a timestamp to a fractional day count since the Unix
// epoch, the numeric axis used for all date interpolation.
func dayOrdinal(t time.Time) float64 {
	return float64(t.Unix()) / 86400.0
}

// interpLinear evaluates a piecewise-linear function defined by the knots
// (xs, ys) at x. Outside the knot range the value is clamped to the nearest
// boundary knot; there is no extrapolation. xs must be strictly increasing
// and non-empty.
func interpLinear(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}

	// First knot strictly greater than x; x lies in (xs[i-1], xs[i]).
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	frac := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + frac*(ys[i]-ys[i-1])
}

// interpSeries evaluates the knots at every date of the timeline.
func interpSeries(dates []time.Time, xs, ys []float64) []float64 {
	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = interpLinear(dayOrdinal(d), xs, ys)
	}
	return out
}
