package tsd

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/hydrosense/wellspring/internal/well"
)

const (
	// anchorStepDays is the spacing of generated trend anchors when no
	// explicit anchor dates are supplied.
	anchorStepDays = 14

	// anchorToleranceDays is how far from an anchor date an actual
	// observation may sit and still be used as the anchor's value.
	anchorToleranceDays = 7
)

// BiweeklyDates generates anchor dates by stepping 14 days from first to
// last, inclusive of first.
func BiweeklyDates(first, last time.Time) []time.Time {
	var out []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, anchorStepDays) {
		out = append(out, d)
	}
	return out
}

// EstimateTrend derives the smooth long-term trend of a well series,
// aligned to the series' own timeline. Anchor dates pin the trend curve:
// the explicit list is used when given, otherwise biweekly dates spanning
// the series. The trend never hard-fails on sparse data; it degrades to a
// least-squares line and finally to all zeros, reporting the fallback
// through the returned quality flags.
func EstimateTrend(s *well.Series, anchorDates []time.Time, logger *zap.SugaredLogger) ([]float64, Quality) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if s == nil || s.Len() == 0 {
		return nil, QualityInsufficientData
	}

	if len(anchorDates) == 0 {
		anchorDates = BiweeklyDates(s.First(), s.Last())
	}

	anchors := anchorSamples(s, anchorDates)
	if len(anchors) >= 2 {
		xs := make([]float64, len(anchors))
		ys := make([]float64, len(anchors))
		for i, a := range anchors {
			xs[i] = dayOrdinal(a.Date)
			ys[i] = a.Value
		}
		return interpSeries(s.Dates, xs, ys), 0
	}

	logger.Debugf("well %s: %d anchor samples recovered, falling back to linear regression",
		s.WellID, len(anchors))
	return regressionTrend(s, logger)
}

// anchorSamples extracts the observations matching the anchor dates. Exact
// timestamp matches are preferred; failing that, the nearest observation
// within the tolerance window is taken and its timestamp overwritten with
// the anchor date, so the trend is pinned to the intended sampling date
// rather than the incidental observation date. Synthetic calendars carry no
// real dates, so they are sampled proportionally by position instead.
func anchorSamples(s *well.Series, anchorDates []time.Time) []well.Anchor {
	if s.Calendar == well.CalendarSynthetic {
		return positionalSamples(s, anchorDates)
	}

	out := make([]well.Anchor, 0, len(anchorDates))
	for _, ad := range anchorDates {
		idx, ok := nearestObservation(s, ad)
		if !ok {
			continue
		}
		delta := s.Dates[idx].Sub(ad)
		if delta < 0 {
			delta = -delta
		}
		if delta > anchorToleranceDays*24*time.Hour {
			continue
		}
		out = append(out, well.Anchor{Date: ad, Value: s.Levels[idx]})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	// Collapse duplicate anchor dates, keeping the first.
	dedup := out[:0]
	for _, a := range out {
		if len(dedup) > 0 && dedup[len(dedup)-1].Date.Equal(a.Date) {
			continue
		}
		dedup = append(dedup, a)
	}
	return dedup
}

// positionalSamples samples the series proportionally by index, one sample
// per anchor date.
func positionalSamples(s *well.Series, anchorDates []time.Time) []well.Anchor {
	n := s.Len()
	out := make([]well.Anchor, 0, len(anchorDates))
	for i, ad := range anchorDates {
		idx := int(math.Round(float64(i) * float64(n) / float64(len(anchorDates))))
		if idx >= n {
			idx = n - 1
		}
		if well.IsMissing(s.Levels[idx]) {
			continue
		}
		out = append(out, well.Anchor{Date: ad, Value: s.Levels[idx]})
	}
	return out
}

// nearestObservation returns the index of the valid observation closest in
// time to t. On an exact tie the earlier observation wins.
func nearestObservation(s *well.Series, t time.Time) (int, bool) {
	n := s.Len()
	pos := sort.Search(n, func(i int) bool { return !s.Dates[i].Before(t) })

	// Walk outward from the insertion point past any gap markers.
	lo := pos - 1
	for lo >= 0 && well.IsMissing(s.Levels[lo]) {
		lo--
	}
	hi := pos
	for hi < n && well.IsMissing(s.Levels[hi]) {
		hi++
	}

	switch {
	case lo < 0 && hi >= n:
		return 0, false
	case lo < 0:
		return hi, true
	case hi >= n:
		return lo, true
	}

	dLo := t.Sub(s.Dates[lo])
	dHi := s.Dates[hi].Sub(t)
	if dLo <= dHi {
		return lo, true
	}
	return hi, true
}

// regressionTrend fits an ordinary-least-squares line of level against
// sequential index position, ignoring gaps. With fewer than two valid
// observations the trend is all-zero.
func regressionTrend(s *well.Series, logger *zap.SugaredLogger) ([]float64, Quality) {
	var xs, ys []float64
	for i, v := range s.Levels {
		if well.IsMissing(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}

	trend := make([]float64, s.Len())
	if len(xs) < 2 {
		logger.Warnf("well %s: fewer than 2 valid observations, trend is zero", s.WellID)
		return trend, QualityInsufficientData
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	for i := range trend {
		trend[i] = alpha + beta*float64(i)
	}
	return trend, QualityTrendRegression
}
