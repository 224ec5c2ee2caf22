package tsd

import (
	"math"
	"testing"
	"time"

	"github.com/hydrosense/wellspring/internal/well"
)

func TestBiweeklyDates(t *testing.T) {
	tests := []struct {
		name  string
		first int
		last  int
		want  []int
	}{
		{"single day", 0, 0, []int{0}},
		{"exact multiple", 0, 28, []int{0, 14, 28}},
		{"partial last step", 0, 30, []int{0, 14, 28}},
		{"under one step", 0, 13, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BiweeklyDates(day(tt.first), day(tt.last))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d dates, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if !got[i].Equal(day(w)) {
					t.Errorf("date[%d] = %v, want %v", i, got[i], day(w))
				}
			}
		})
	}
}

func TestEstimateTrendLinearSeries(t *testing.T) {
	// A linear series with biweekly anchors at exact observation dates must
	// reproduce itself: interpolation between collinear anchors is exact.
	s := dailySeries("P1", 29, func(i int) float64 { return 100 - 0.5*float64(i) })

	trend, quality := EstimateTrend(s, nil, nil)
	if quality != 0 {
		t.Fatalf("quality = %s, want ok", quality)
	}
	for i := range trend {
		want := 100 - 0.5*float64(i)
		if math.Abs(trend[i]-want) > 1e-9 {
			t.Errorf("trend[%d] = %v, want %v", i, trend[i], want)
		}
	}
}

func TestAnchorSamplesTolerance(t *testing.T) {
	s := &well.Series{
		WellID: "P1",
		Dates:  []time.Time{day(0), day(8), day(20)},
		Levels: []float64{1.0, 2.0, 3.0},
	}

	t.Run("nearby observation adopts anchor date", func(t *testing.T) {
		anchors := anchorSamples(s, []time.Time{day(10)})
		if len(anchors) != 1 {
			t.Fatalf("got %d anchors, want 1", len(anchors))
		}
		if !anchors[0].Date.Equal(day(10)) {
			t.Errorf("anchor date = %v, want the requested date %v", anchors[0].Date, day(10))
		}
		if anchors[0].Value != 2.0 {
			t.Errorf("anchor value = %v, want the day-8 observation 2.0", anchors[0].Value)
		}
	})

	t.Run("observation beyond tolerance is skipped", func(t *testing.T) {
		if anchors := anchorSamples(s, []time.Time{day(40)}); len(anchors) != 0 {
			t.Errorf("got %d anchors, want 0", len(anchors))
		}
	})

	t.Run("duplicate anchor dates collapse", func(t *testing.T) {
		anchors := anchorSamples(s, []time.Time{day(8), day(8), day(20)})
		if len(anchors) != 2 {
			t.Errorf("got %d anchors, want 2", len(anchors))
		}
	})
}

func TestAnchorSamplesSyntheticCalendar(t *testing.T) {
	// Synthetic calendars are sampled proportionally by position, not by
	// date arithmetic.
	s := dailySeries("P1", 10, func(i int) float64 { return 2 * float64(i) })
	s.Calendar = well.CalendarSynthetic

	anchors := anchorSamples(s, []time.Time{day(0), day(2), day(4), day(6), day(8)})
	want := []float64{0, 4, 8, 12, 16}
	if len(anchors) != len(want) {
		t.Fatalf("got %d anchors, want %d", len(anchors), len(want))
	}
	for i, w := range want {
		if anchors[i].Value != w {
			t.Errorf("anchor[%d] value = %v, want %v", i, anchors[i].Value, w)
		}
	}
}

func TestNearestObservationSkipsGaps(t *testing.T) {
	s := &well.Series{
		WellID: "P1",
		Dates:  []time.Time{day(0), day(1), day(2), day(3)},
		Levels: []float64{1.0, well.Missing(), well.Missing(), 4.0},
	}

	tests := []struct {
		name    string
		at      int
		wantIdx int
	}{
		{"exact valid match", 0, 0},
		{"gap walks to nearer earlier value", 1, 0},
		{"gap walks to nearer later value", 2, 3},
		{"end of series", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := nearestObservation(s, day(tt.at))
			if !ok {
				t.Fatal("no observation found")
			}
			if idx != tt.wantIdx {
				t.Errorf("index = %d, want %d", idx, tt.wantIdx)
			}
		})
	}

	t.Run("all gaps", func(t *testing.T) {
		gaps := &well.Series{
			Dates:  []time.Time{day(0), day(1)},
			Levels: []float64{well.Missing(), well.Missing()},
		}
		if _, ok := nearestObservation(gaps, day(0)); ok {
			t.Error("found an observation in an all-gap series")
		}
	})
}

func TestEstimateTrendRegressionFallback(t *testing.T) {
	// Anchor dates far outside the series leave no anchor samples, so the
	// trend falls back to the least-squares line. On exactly linear data the
	// fit recovers the slope and intercept.
	s := dailySeries("P1", 10, func(i int) float64 { return 3 + 2*float64(i) })

	trend, quality := EstimateTrend(s, []time.Time{day(100)}, nil)
	if !quality.Has(QualityTrendRegression) {
		t.Fatalf("quality = %s, want trend-regression", quality)
	}
	for i := range trend {
		want := 3 + 2*float64(i)
		if math.Abs(trend[i]-want) > 1e-9 {
			t.Errorf("trend[%d] = %v, want %v", i, trend[i], want)
		}
	}
}

func TestEstimateTrendInsufficientData(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		trend, quality := EstimateTrend(&well.Series{}, nil, nil)
		if trend != nil {
			t.Errorf("trend = %v, want nil", trend)
		}
		if !quality.Has(QualityInsufficientData) {
			t.Errorf("quality = %s, want insufficient-data", quality)
		}
	})

	t.Run("single valid observation", func(t *testing.T) {
		s := &well.Series{
			WellID: "P1",
			Dates:  []time.Time{day(0), day(1), day(2)},
			Levels: []float64{well.Missing(), 5.0, well.Missing()},
		}
		trend, quality := EstimateTrend(s, nil, nil)
		if !quality.Has(QualityInsufficientData) {
			t.Fatalf("quality = %s, want insufficient-data", quality)
		}
		for i, v := range trend {
			if v != 0 {
				t.Errorf("trend[%d] = %v, want 0", i, v)
			}
		}
	})
}
