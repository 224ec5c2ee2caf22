// Package neighbors selects reference wells by Euclidean distance over
// coordinate metadata. A target well with a gap borrows fluctuations from
// its nearest densely-monitored neighbor, so the selector is the usual
// front door to choosing a reference.
package neighbors

import (
	"fmt"
	"math"
	"sort"

	"github.com/hydrosense/wellspring/internal/well"
)

// Neighbor pairs a candidate well with its distance to the target.
type Neighbor struct {
	Location well.Location
	Distance float64
}

// Distance returns the Euclidean distance between two wells.
func Distance(a, b well.Location) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Selector answers nearest-well queries over a fixed set of candidate
// locations.
type Selector struct {
	wells []well.Location
}

// NewSelector builds a selector over the candidate locations, typically the
// coordinate table of a data source.
func NewSelector(wells []well.Location) *Selector {
	return &Selector{wells: append([]well.Location(nil), wells...)}
}

// locate finds the coordinates of a well in the candidate set.
func (s *Selector) locate(unit int, wellID string) (well.Location, error) {
	for _, w := range s.wells {
		if w.Unit == unit && w.WellID == wellID {
			return w, nil
		}
	}
	return well.Location{}, fmt.Errorf("no coordinates found for well %q in treatment unit %d", wellID, unit)
}

// ranked returns all candidates other than the target, sorted by distance,
// optionally capped at maxDistance (0 disables the cap).
func (s *Selector) ranked(unit int, wellID string, maxDistance float64) ([]Neighbor, error) {
	target, err := s.locate(unit, wellID)
	if err != nil {
		return nil, err
	}

	var out []Neighbor
	for _, w := range s.wells {
		if w.Unit == unit && w.WellID == wellID {
			continue
		}
		d := Distance(target, w)
		if maxDistance > 0 && d > maxDistance {
			continue
		}
		out = append(out, Neighbor{Location: w, Distance: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// Nearest returns the closest candidate well. maxDistance of 0 means
// unbounded.
func (s *Selector) Nearest(unit int, wellID string, maxDistance float64) (Neighbor, error) {
	ranked, err := s.ranked(unit, wellID, maxDistance)
	if err != nil {
		return Neighbor{}, err
	}
	if len(ranked) == 0 {
		return Neighbor{}, fmt.Errorf("no suitable neighbor found for well %q", wellID)
	}
	return ranked[0], nil
}

// NearestN returns up to n closest candidate wells, sorted by distance.
func (s *Selector) NearestN(unit int, wellID string, n int, maxDistance float64) ([]Neighbor, error) {
	ranked, err := s.ranked(unit, wellID, maxDistance)
	if err != nil {
		return nil, err
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// WithinRadius returns all candidate wells within the given radius, sorted
// by distance.
func (s *Selector) WithinRadius(unit int, wellID string, radius float64) ([]Neighbor, error) {
	return s.ranked(unit, wellID, radius)
}

// DistanceMatrix returns the pairwise distance matrix over all candidates,
// in candidate order.
func (s *Selector) DistanceMatrix() [][]float64 {
	n := len(s.wells)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			if i == j {
				continue
			}
			out[i][j] = Distance(s.wells[i], s.wells[j])
		}
	}
	return out
}

// Wells returns the candidate locations in selector order, matching the
// rows of DistanceMatrix.
func (s *Selector) Wells() []well.Location {
	return append([]well.Location(nil), s.wells...)
}
