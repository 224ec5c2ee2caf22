package tsd

import (
	"sort"
	"time"

	"github.com/hydrosense/wellspring/internal/well"
)

// Align reindexes a sparsely-observed target series onto the reference
// well's full calendar. The output timeline is exactly the reference
// timeline; every day starts as a gap, then each actual target observation
// is placed at the reference date with the smallest absolute time delta
// (the earlier date wins an exact tie). Identity metadata is carried over
// from the target series; the reference contributes only its calendar.
//
// Lookup is a binary search per observation over the sorted reference
// calendar, so aligning m observations against n reference days costs
// O(m log n).
func Align(target, reference *well.Series) *well.Series {
	out := &well.Series{
		WellID:   target.WellID,
		Unit:     target.Unit,
		X:        target.X,
		Y:        target.Y,
		Calendar: reference.Calendar,
		Dates:    append([]time.Time(nil), reference.Dates...),
		Levels:   make([]float64, reference.Len()),
	}
	for i := range out.Levels {
		out.Levels[i] = well.Missing()
	}
	if reference.Len() == 0 {
		return out
	}

	for i, v := range target.Levels {
		if well.IsMissing(v) {
			continue
		}
		idx := nearestDate(reference.Dates, target.Dates[i])
		out.Levels[idx] = v
	}
	return out
}

// nearestDate returns the index of the date in the sorted slice closest to
// t, preferring the earlier date on an exact tie.
func nearestDate(dates []time.Time, t time.Time) int {
	n := len(dates)
	pos := sort.Search(n, func(i int) bool { return !dates[i].Before(t) })
	if pos == 0 {
		return 0
	}
	if pos == n {
		return n - 1
	}
	dLo := t.Sub(dates[pos-1])
	dHi := dates[pos].Sub(t)
	if dLo <= dHi {
		return pos - 1
	}
	return pos
}
