package tsd

import (
	"time"

	"go.uber.org/zap"

	"github.com/hydrosense/wellspring/internal/well"
)

// LocalFluctuations computes the target well's residual against its own
// trend: observed minus trend at every date carrying an observation. Dates
// without an observation carry the missing marker so they never leak into
// later sums.
func LocalFluctuations(s *well.Series, trend []float64) []float64 {
	out := make([]float64, s.Len())
	for i, v := range s.Levels {
		if well.IsMissing(v) {
			out[i] = well.Missing()
			continue
		}
		out[i] = v - trend[i]
	}
	return out
}

// RegionalFluctuations computes the reference well's residual against its
// own trend and retimes it onto the target timeline. Pre-aligned timelines
// (equal length) map index for index; otherwise the residual is linearly
// interpolated as a function of the reference dates evaluated at each
// target date. A reference without a usable trend yields a zero series with
// a warning rather than an error. Days where the reference itself has no
// observation contribute zero.
func RegionalFluctuations(ref *well.Series, refTrend []float64, targetDates []time.Time, logger *zap.SugaredLogger) ([]float64, Quality) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	out := make([]float64, len(targetDates))
	if ref == nil || ref.Len() == 0 || len(refTrend) != ref.Len() {
		logger.Warnf("reference well has no usable trend, regional fluctuations are zero")
		return out, QualityNoRegional
	}

	raw := make([]float64, ref.Len())
	for i, v := range ref.Levels {
		if well.IsMissing(v) {
			raw[i] = 0
			continue
		}
		raw[i] = v - refTrend[i]
	}

	if ref.Len() == len(targetDates) {
		copy(out, raw)
		return out, 0
	}

	// Mismatched timelines: interpolate the residual over the reference
	// calendar at each target date.
	xs := make([]float64, ref.Len())
	for i, d := range ref.Dates {
		xs[i] = dayOrdinal(d)
	}
	for i, d := range targetDates {
		out[i] = interpLinear(dayOrdinal(d), xs, raw)
	}
	return out, 0
}
