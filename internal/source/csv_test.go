package source

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hydrosense/wellspring/internal/schema"
	"github.com/hydrosense/wellspring/internal/well"
)

const sampleCSV = `Date,Well_ID,Basin,Water_Level,X,Y
2022-01-01,A1,1,-15.2,100,200
2022-01-02,A1,1,-15.4,100,200
2022-01-03,A1,1,,100,200
2022-01-04,A1,1,-15.1,100,200
2022-01-01,B1,1,-18.0,150,250
2022-01-15,B1,1,-18.3,150,250
2022-01-05,C2,2,-22.0,300,400
`

func openSample(t *testing.T) Source {
	t.Helper()
	src, err := readCSV("sample.csv", strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatalf("readCSV: %v", err)
	}
	return src
}

func TestCSVWellData(t *testing.T) {
	src := openSample(t)

	s, err := src.WellData("A1", 1, well.Window{})
	if err != nil {
		t.Fatalf("WellData: %v", err)
	}
	if s.WellID != "A1" || s.Unit != 1 {
		t.Errorf("series identity = %s/%d, want A1/1", s.WellID, s.Unit)
	}
	if s.Len() != 4 {
		t.Fatalf("series length = %d, want 4", s.Len())
	}
	if s.Levels[0] != -15.2 {
		t.Errorf("level[0] = %v, want -15.2", s.Levels[0])
	}
	if !well.IsMissing(s.Levels[2]) {
		t.Errorf("blank cell = %v, want the missing marker", s.Levels[2])
	}
	if s.X != 100 || s.Y != 200 {
		t.Errorf("coordinates = (%v, %v), want (100, 200)", s.X, s.Y)
	}
}

func TestCSVWellDataWindow(t *testing.T) {
	src := openSample(t)

	s, err := src.WellData("A1", 1, well.Window{
		Start: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("WellData: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("windowed length = %d, want 2", s.Len())
	}
}

func TestCSVWellDataUnknownWell(t *testing.T) {
	src := openSample(t)

	tests := []struct {
		name   string
		wellID string
		unit   int
	}{
		{"unknown well id", "Z9", 1},
		{"known well in wrong unit", "A1", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := src.WellData(tt.wellID, tt.unit, well.Window{})
			var notFound *WellNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("error = %v, want WellNotFoundError", err)
			}
			if notFound.WellID != tt.wellID {
				t.Errorf("error well = %q, want %q", notFound.WellID, tt.wellID)
			}
		})
	}
}

func TestCSVAvailableWellsAndUnits(t *testing.T) {
	src := openSample(t)

	wells, err := src.AvailableWells()
	if err != nil {
		t.Fatalf("AvailableWells: %v", err)
	}
	wantWells := []string{"A1", "B1", "C2"}
	if len(wells) != len(wantWells) {
		t.Fatalf("wells = %v, want %v", wells, wantWells)
	}
	for i, w := range wantWells {
		if wells[i] != w {
			t.Errorf("wells[%d] = %q, want %q", i, wells[i], w)
		}
	}

	units, err := src.AvailableUnits()
	if err != nil {
		t.Fatalf("AvailableUnits: %v", err)
	}
	if len(units) != 2 || units[0] != 1 || units[1] != 2 {
		t.Errorf("units = %v, want [1 2]", units)
	}
}

func TestCSVDateRange(t *testing.T) {
	src := openSample(t)

	first, last, err := src.DateRange()
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	if !first.Equal(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first = %v", first)
	}
	if !last.Equal(time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last = %v", last)
	}
}

func TestCSVWithoutUnitColumn(t *testing.T) {
	const csv = `Date,Well,Level
2022-01-01,A1,-15.2
2022-01-02,A1,-15.4
`
	src, err := readCSV("nounit.csv", strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("readCSV: %v", err)
	}

	// A unit filter cannot be honored without a unit column.
	var missing *schema.MissingColumnError
	if _, err := src.WellData("A1", 1, well.Window{}); !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingColumnError", err)
	}

	s, err := src.WellData("A1", AnyUnit, well.Window{})
	if err != nil {
		t.Fatalf("WellData with AnyUnit: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("length = %d, want 2", s.Len())
	}
}

func TestCSVDuplicateDatesCollapse(t *testing.T) {
	const csv = `Date,Well_ID,Water_Level
2022-01-02,A1,-10.0
2022-01-01,A1,-11.0
2022-01-02,A1,-10.5
`
	src, err := readCSV("dup.csv", strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("readCSV: %v", err)
	}
	s, err := src.WellData("A1", AnyUnit, well.Window{})
	if err != nil {
		t.Fatalf("WellData: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("length = %d, want 2 after dedup", s.Len())
	}
	if !s.Dates[0].Before(s.Dates[1]) {
		t.Error("series is not sorted by date")
	}
	if s.Levels[1] != -10.5 {
		t.Errorf("duplicate date kept %v, want the later value -10.5", s.Levels[1])
	}
}

func TestCSVSyntheticCalendarPropagates(t *testing.T) {
	const csv = `Jour,Puit,Nappe
1e9,A1,-10.0
2e9,A1,-10.5
`
	src, err := readCSV("synth.csv", strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("readCSV: %v", err)
	}
	if src.DateStrategy() != DateSynthetic {
		t.Fatalf("strategy = %s, want synthetic", src.DateStrategy())
	}
	s, err := src.WellData("A1", AnyUnit, well.Window{})
	if err != nil {
		t.Fatalf("WellData: %v", err)
	}
	if s.Calendar != well.CalendarSynthetic {
		t.Error("series calendar is not marked synthetic")
	}
}

func TestCSVCoordinates(t *testing.T) {
	src := openSample(t)

	cs, ok := src.(CoordinateSource)
	if !ok {
		t.Fatal("CSV source does not expose coordinates")
	}
	locs, err := cs.WellCoordinates()
	if err != nil {
		t.Fatalf("WellCoordinates: %v", err)
	}
	if len(locs) != 3 {
		t.Fatalf("got %d locations, want 3", len(locs))
	}
	for _, loc := range locs {
		if loc.WellID == "C2" && (loc.X != 300 || loc.Y != 400) {
			t.Errorf("C2 at (%v, %v), want (300, 400)", loc.X, loc.Y)
		}
	}
}
