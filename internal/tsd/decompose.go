// Package tsd implements the local-regional trend-seasonal decomposition
// used to estimate missing daily groundwater-table elevations. A sparsely
// monitored target well borrows high-frequency fluctuations from a densely
// monitored reference well, anchored to a long-term trend derived from
// periodic manual measurements.
//
// One decomposition call moves strictly forward: resolve mode, compute both
// trends, compute local and regional fluctuations, compose. Inputs are
// treated as immutable for the duration of a call and every call produces a
// fresh Result, so independent well pairs can be decomposed concurrently by
// the caller without locking.
package tsd

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hydrosense/wellspring/internal/well"
)

// Options tunes a single decomposition call.
type Options struct {
	// Mode forces Calibration or Estimation. ModeAuto resolves from the
	// target's observation density.
	Mode Mode

	// Anchors supplies explicit trend anchor dates, typically manual field
	// measurement dates. Supplying anchors never changes the resolved mode;
	// they only pin the trend.
	Anchors []time.Time
}

// Result is the immutable bundle produced by one decomposition call. All
// series share the target well's post-alignment timeline: same dates, same
// order, same length.
type Result struct {
	Mode    Mode
	Quality Quality

	Dates          []time.Time
	Trend          []float64
	Local          []float64
	Regional       []float64
	Estimated      []float64
	ReferenceTrend []float64
}

// Len returns the timeline length shared by all component series.
func (r *Result) Len() int {
	return len(r.Dates)
}

// Decompose runs the full local-regional decomposition for an
// already-materialized (target, reference) series pair.
//
// Mode is resolved exactly once here. When density-based resolution fails
// because the target is too small to have a meaningful span, the call
// degrades to Estimation with the insufficient-data quality flag instead of
// aborting, since the reference can still carry the estimate. In Estimation
// mode a target whose timeline differs from the reference's is first
// realigned onto the reference calendar.
func Decompose(target, reference *well.Series, opts Options, logger *zap.SugaredLogger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if target == nil || target.Len() == 0 {
		return nil, &InsufficientDataError{Reason: "target series is empty"}
	}
	if reference == nil {
		reference = &well.Series{}
	}

	var quality Quality

	mode, err := ResolveMode(target, reference, opts.Mode)
	if err != nil {
		var insufficient *InsufficientDataError
		if !errors.As(err, &insufficient) || reference.Len() == 0 {
			return nil, err
		}
		// Too little target data to judge density, but the reference can
		// still drive an estimate. Degrade instead of aborting.
		logger.Warnf("well %s: %v, degrading to estimation mode", target.WellID, err)
		mode = ModeEstimation
		quality |= QualityInsufficientData
	}

	if mode == ModeEstimation && !sameTimeline(target.Dates, reference.Dates) && reference.Len() > 0 {
		target = Align(target, reference)
	}

	anchors := opts.Anchors
	if len(anchors) == 0 && mode == ModeEstimation {
		// In estimation mode every surviving observation is a trend anchor.
		anchors = target.ObservedDates()
	}

	refTrend, refQuality := EstimateTrend(reference, anchors, logger)
	trend, trendQuality := EstimateTrend(target, anchors, logger)
	quality |= trendQuality

	local := LocalFluctuations(target, trend)
	regional, regQuality := RegionalFluctuations(reference, refTrend, target.Dates, logger)
	quality |= regQuality

	estimated, combineQuality, err := Combine(trend, local, regional, mode)
	if err != nil {
		return nil, err
	}
	quality |= combineQuality

	if target.Calendar == well.CalendarSynthetic || reference.Calendar == well.CalendarSynthetic {
		quality |= QualitySyntheticCalendar
	}
	// Reference trend degradation matters to consumers inspecting the
	// regional component, but only the no-regional case changes the output.
	if refQuality.Has(QualityInsufficientData) && !quality.Has(QualityNoRegional) {
		logger.Debugf("reference well %s trend is degraded: %s", reference.WellID, refQuality)
	}

	return &Result{
		Mode:           mode,
		Quality:        quality,
		Dates:          append([]time.Time(nil), target.Dates...),
		Trend:          trend,
		Local:          local,
		Regional:       regional,
		Estimated:      estimated,
		ReferenceTrend: refTrend,
	}, nil
}

func sameTimeline(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
