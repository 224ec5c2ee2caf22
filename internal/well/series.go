// Package well defines the time-series value types shared by the data
// sources and the decomposition engine.
package well

import (
	"math"
	"sort"
	"time"
)

// Calendar describes how a series' timeline was obtained.
type Calendar int

const (
	// CalendarDate means the timeline came from genuine calendar dates.
	CalendarDate Calendar = iota

	// CalendarSynthetic means the source dates could not be interpreted and
	// the timeline is a sequential day counter. Downstream consumers must
	// treat date arithmetic on such a series as positional only.
	CalendarSynthetic
)

// Missing returns the marker for a day without an observation.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the no-observation marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Series is an ordered sequence of daily water-level observations for one
// well within one treatment unit. Dates are strictly increasing and unique
// after loading. Days without an observation carry the Missing marker.
type Series struct {
	WellID   string
	Unit     int
	X        float64
	Y        float64
	Calendar Calendar

	Dates  []time.Time
	Levels []float64
}

// Anchor is a (date, value) pair used to pin a trend curve. Anchors come
// either from periodic sampling of a dense series or from explicit manual
// field measurements.
type Anchor struct {
	Date  time.Time
	Value float64
}

// Location holds the coordinate metadata for a well.
type Location struct {
	Unit   int
	WellID string
	Zone   int
	Line   string
	X      float64
	Y      float64
}

// Window is an inclusive date range. A zero Start or End leaves that side
// unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Len returns the number of days on the series' timeline.
func (s *Series) Len() int {
	return len(s.Dates)
}

// ObservedCount returns the number of days carrying an actual observation.
func (s *Series) ObservedCount() int {
	n := 0
	for _, v := range s.Levels {
		if !IsMissing(v) {
			n++
		}
	}
	return n
}

// First returns the first date of the timeline. The series must be non-empty.
func (s *Series) First() time.Time {
	return s.Dates[0]
}

// Last returns the last date of the timeline. The series must be non-empty.
func (s *Series) Last() time.Time {
	return s.Dates[len(s.Dates)-1]
}

// Clone returns a deep copy of the series. Decomposition treats its inputs
// as immutable, so callers that want to mutate a fetched series copy it
// first.
func (s *Series) Clone() *Series {
	out := *s
	out.Dates = append([]time.Time(nil), s.Dates...)
	out.Levels = append([]float64(nil), s.Levels...)
	return &out
}

// Normalize sorts the series by date and collapses duplicate dates, keeping
// the last observed value for each date. Loaders call this once so the
// strictly-increasing timeline invariant holds everywhere downstream.
func (s *Series) Normalize() {
	if len(s.Dates) < 2 {
		return
	}

	type pair struct {
		d time.Time
		v float64
	}
	pairs := make([]pair, len(s.Dates))
	for i := range s.Dates {
		pairs[i] = pair{s.Dates[i], s.Levels[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].d.Before(pairs[j].d) })

	outDates := make([]time.Time, 0, len(pairs))
	outLevels := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		n := len(outDates)
		if n > 0 && outDates[n-1].Equal(p.d) {
			// Duplicate date: a real observation wins over a gap marker,
			// later observations win over earlier ones.
			if !IsMissing(p.v) || IsMissing(outLevels[n-1]) {
				outLevels[n-1] = p.v
			}
			continue
		}
		outDates = append(outDates, p.d)
		outLevels = append(outLevels, p.v)
	}

	s.Dates = outDates
	s.Levels = outLevels
}

// ObservedDates returns the dates that carry an actual observation.
func (s *Series) ObservedDates() []time.Time {
	out := make([]time.Time, 0, len(s.Dates))
	for i, v := range s.Levels {
		if !IsMissing(v) {
			out = append(out, s.Dates[i])
		}
	}
	return out
}
