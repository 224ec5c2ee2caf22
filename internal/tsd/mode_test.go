package tsd

import (
	"errors"
	"testing"
	"time"

	"github.com/hydrosense/wellspring/internal/well"
)

// day returns midnight UTC n days after 2022-01-01.
func day(n int) time.Time {
	return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// dailySeries builds a daily series of n days starting at day(0), with
// levels from f.
func dailySeries(wellID string, n int, f func(i int) float64) *well.Series {
	s := &well.Series{WellID: wellID, Unit: 1}
	for i := 0; i < n; i++ {
		s.Dates = append(s.Dates, day(i))
		s.Levels = append(s.Levels, f(i))
	}
	return s
}

// sparseSeries builds a series observing every step days across n days.
func sparseSeries(wellID string, n, step int, f func(i int) float64) *well.Series {
	s := &well.Series{WellID: wellID, Unit: 1}
	for i := 0; i < n; i += step {
		s.Dates = append(s.Dates, day(i))
		s.Levels = append(s.Levels, f(i))
	}
	return s
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"auto", ModeAuto, false},
		{"", ModeAuto, false},
		{"calibration", ModeCalibration, false},
		{"estimation", ModeEstimation, false},
		{"Calibration", ModeAuto, true},
		{"bogus", ModeAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveModeDensity(t *testing.T) {
	// 30-day timeline: spanDays = 29, denominator = 30. The threshold is
	// strict, so 21/30 = 0.7 stays estimation and 22/30 flips calibration.
	tests := []struct {
		name     string
		observed int
		want     Mode
	}{
		{"fully observed", 30, ModeCalibration},
		{"just above threshold", 22, ModeCalibration},
		{"exactly at threshold", 21, ModeEstimation},
		{"sparse", 5, ModeEstimation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The timeline keeps all 30 dates, so the span is fixed no
			// matter where the gaps sit.
			target := dailySeries("P1", 30, func(i int) float64 {
				if i >= tt.observed {
					return well.Missing()
				}
				return 10.0
			})
			got, err := ResolveMode(target, nil, ModeAuto)
			if err != nil {
				t.Fatalf("ResolveMode: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveMode with %d observed days = %v, want %v",
					target.ObservedCount(), got, tt.want)
			}
		})
	}
}

func TestResolveModeExplicitWins(t *testing.T) {
	// A fully-dense target would resolve calibration, but an explicit
	// request is honored unchanged.
	target := dailySeries("P1", 30, func(i int) float64 { return 1 })
	got, err := ResolveMode(target, nil, ModeEstimation)
	if err != nil {
		t.Fatalf("ResolveMode: %v", err)
	}
	if got != ModeEstimation {
		t.Errorf("explicit mode = %v, want estimation", got)
	}
}

func TestResolveModeSingleDaySpan(t *testing.T) {
	target := &well.Series{
		WellID: "P1",
		Dates:  []time.Time{day(5)},
		Levels: []float64{12.5},
	}
	_, err := ResolveMode(target, nil, ModeAuto)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("ResolveMode on single-day span: error = %v, want InsufficientDataError", err)
	}
	if insufficient.WellID != "P1" {
		t.Errorf("error well = %q, want P1", insufficient.WellID)
	}
}

func TestResolveModeEmptyTarget(t *testing.T) {
	var insufficient *InsufficientDataError
	if _, err := ResolveMode(&well.Series{}, nil, ModeAuto); !errors.As(err, &insufficient) {
		t.Fatalf("ResolveMode on empty target: error = %v, want InsufficientDataError", err)
	}
}

func TestResolveModeSyntheticCalendar(t *testing.T) {
	ref := dailySeries("REF", 100, func(i int) float64 { return 1 })

	tests := []struct {
		name    string
		obs     int
		want    Mode
		wantErr bool
	}{
		{"denser than reference", 80, ModeCalibration, false},
		{"sparser than reference", 20, ModeEstimation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := dailySeries("P1", tt.obs, func(i int) float64 { return 1 })
			target.Calendar = well.CalendarSynthetic
			got, err := ResolveMode(target, ref, ModeAuto)
			if err != nil {
				t.Fatalf("ResolveMode: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveMode = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("no reference", func(t *testing.T) {
		target := dailySeries("P1", 20, func(i int) float64 { return 1 })
		target.Calendar = well.CalendarSynthetic
		var insufficient *InsufficientDataError
		if _, err := ResolveMode(target, nil, ModeAuto); !errors.As(err, &insufficient) {
			t.Fatalf("error = %v, want InsufficientDataError", err)
		}
	})
}

func TestQualityFlags(t *testing.T) {
	var q Quality
	if q.Degraded() {
		t.Error("zero quality reports degraded")
	}
	if q.String() != "ok" {
		t.Errorf("zero quality string = %q, want ok", q.String())
	}

	q |= QualityTrendRegression
	q |= QualityNoRegional
	if !q.Has(QualityTrendRegression) || !q.Has(QualityNoRegional) {
		t.Error("set flags not reported by Has")
	}
	if q.Has(QualityInsufficientData) {
		t.Error("unset flag reported by Has")
	}
	if !q.Degraded() {
		t.Error("flagged quality not reported degraded")
	}
	if q.String() != "trend-regression,no-regional" {
		t.Errorf("quality string = %q", q.String())
	}
}
