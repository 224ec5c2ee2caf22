package neighbors

import (
	"math"
	"testing"

	"github.com/hydrosense/wellspring/internal/well"
)

func testWells() []well.Location {
	return []well.Location{
		{Unit: 1, WellID: "A1", X: 0, Y: 0},
		{Unit: 1, WellID: "B1", X: 3, Y: 4},
		{Unit: 1, WellID: "C1", X: 10, Y: 0},
		{Unit: 2, WellID: "A2", X: 1, Y: 0},
	}
}

func TestDistance(t *testing.T) {
	a := well.Location{X: 0, Y: 0}
	b := well.Location{X: 3, Y: 4}
	if d := Distance(a, b); math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if d := Distance(a, a); d != 0 {
		t.Errorf("self distance = %v, want 0", d)
	}
}

func TestNearest(t *testing.T) {
	s := NewSelector(testWells())

	n, err := s.Nearest(1, "A1", 0)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	// A2 sits closest in space even though it belongs to another unit;
	// candidates are filtered by identity, not by unit.
	if n.Location.WellID != "A2" {
		t.Errorf("nearest = %s, want A2", n.Location.WellID)
	}
	if math.Abs(n.Distance-1) > 1e-9 {
		t.Errorf("distance = %v, want 1", n.Distance)
	}
}

func TestNearestWithCap(t *testing.T) {
	s := NewSelector(testWells())

	n, err := s.Nearest(1, "C1", 9)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if n.Location.WellID != "B1" {
		t.Errorf("nearest within cap = %s, want B1", n.Location.WellID)
	}

	if _, err := s.Nearest(1, "C1", 2); err == nil {
		t.Error("Nearest found a neighbor inside an impossible cap")
	}
}

func TestNearestN(t *testing.T) {
	s := NewSelector(testWells())

	got, err := s.NearestN(1, "A1", 2, 0)
	if err != nil {
		t.Fatalf("NearestN: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d neighbors, want 2", len(got))
	}
	if got[0].Distance > got[1].Distance {
		t.Error("neighbors are not sorted by distance")
	}
}

func TestWithinRadius(t *testing.T) {
	s := NewSelector(testWells())

	got, err := s.WithinRadius(1, "A1", 6)
	if err != nil {
		t.Fatalf("WithinRadius: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d neighbors within radius, want 2", len(got))
	}
	for _, n := range got {
		if n.Distance > 6 {
			t.Errorf("neighbor %s at distance %v exceeds radius", n.Location.WellID, n.Distance)
		}
	}
}

func TestUnknownWell(t *testing.T) {
	s := NewSelector(testWells())
	if _, err := s.Nearest(1, "Z9", 0); err == nil {
		t.Error("Nearest accepted an unknown well")
	}
	if _, err := s.Nearest(3, "A1", 0); err == nil {
		t.Error("Nearest accepted a well in an unknown unit")
	}
}

func TestDistanceMatrix(t *testing.T) {
	s := NewSelector(testWells())
	m := s.DistanceMatrix()

	wells := s.Wells()
	if len(m) != len(wells) {
		t.Fatalf("matrix has %d rows, want %d", len(m), len(wells))
	}
	for i := range m {
		if m[i][i] != 0 {
			t.Errorf("diagonal[%d] = %v, want 0", i, m[i][i])
		}
		for j := range m[i] {
			if math.Abs(m[i][j]-m[j][i]) > 1e-9 {
				t.Errorf("matrix is not symmetric at (%d,%d)", i, j)
			}
		}
	}
	if math.Abs(m[0][1]-5) > 1e-9 {
		t.Errorf("m[0][1] = %v, want 5", m[0][1])
	}
}
