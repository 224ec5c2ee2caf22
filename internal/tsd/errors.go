package tsd

import "fmt"

// InsufficientDataError reports that a well carries too few valid
// observations (or too short a calendar span) for the requested operation.
// It is not always fatal: the orchestrator degrades to a zero or regression
// trend and records the condition as a quality flag instead of aborting.
type InsufficientDataError struct {
	WellID string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.WellID == "" {
		return fmt.Sprintf("insufficient data: %s", e.Reason)
	}
	return fmt.Sprintf("insufficient data for well %q: %s", e.WellID, e.Reason)
}

// Quality is a bit set of machine-readable degradation flags attached to a
// decomposition result. A zero Quality means the result used no fallback
// path. Hard failures never produce a Result, so flags only ever describe
// soft degradations.
type Quality uint8

const (
	// QualityInsufficientData marks a result whose target trend degenerated
	// because fewer than two valid observations were available.
	QualityInsufficientData Quality = 1 << iota

	// QualityTrendRegression marks a trend built from the least-squares
	// fallback because fewer than two anchor samples were recovered.
	QualityTrendRegression

	// QualityNoRegional marks a result whose regional fluctuation is zero
	// everywhere because the reference well had no usable trend.
	QualityNoRegional

	// QualitySyntheticCalendar marks a result computed on a synthetic
	// sequential timeline rather than genuine calendar dates.
	QualitySyntheticCalendar
)

// Has reports whether all bits of flag are set.
func (q Quality) Has(flag Quality) bool {
	return q&flag == flag
}

// Degraded reports whether any fallback path was taken.
func (q Quality) Degraded() bool {
	return q != 0
}

func (q Quality) String() string {
	if q == 0 {
		return "ok"
	}
	names := []struct {
		flag Quality
		name string
	}{
		{QualityInsufficientData, "insufficient-data"},
		{QualityTrendRegression, "trend-regression"},
		{QualityNoRegional, "no-regional"},
		{QualitySyntheticCalendar, "synthetic-calendar"},
	}
	out := ""
	for _, n := range names {
		if q.Has(n.flag) {
			if out != "" {
				out += ","
			}
			out += n.name
		}
	}
	return out
}
