package source

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hydrosense/wellspring/internal/schema"
	"github.com/hydrosense/wellspring/internal/well"
)

// record is one resolved row of a tabular source.
type record struct {
	wellID string
	unit   int
	date   time.Time
	level  float64 // missing marker when the cell is blank
	x, y   float64
}

// memorySource serves queries from rows materialized at open time. CSV and
// Excel sources share it; only row extraction differs.
type memorySource struct {
	path     string
	resolved schema.Schema
	strategy DateStrategy
	records  []record
	logger   *zap.SugaredLogger
}

// newMemorySource resolves the header against the role alias tables,
// interprets the date column through the fallback ladder, and materializes
// all rows.
func newMemorySource(path string, header []string, rows [][]string, logger *zap.SugaredLogger) (*memorySource, error) {
	resolved, err := schema.Resolve(header)
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	cell := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rawDates := make([]string, len(rows))
	for i, row := range rows {
		rawDates[i] = cell(row, resolved.Date)
	}
	dates, strategy, err := ParseDateColumn(rawDates, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	records := make([]record, 0, len(rows))
	for i, row := range rows {
		r := record{
			wellID: cell(row, resolved.WellID),
			date:   dates[i],
			level:  parseLevel(cell(row, resolved.Level)),
		}
		if resolved.Unit != "" {
			if u, err := strconv.Atoi(cell(row, resolved.Unit)); err == nil {
				r.unit = u
			}
		}
		if v, err := strconv.ParseFloat(cell(row, "X"), 64); err == nil {
			r.x = v
		}
		if v, err := strconv.ParseFloat(cell(row, "Y"), 64); err == nil {
			r.y = v
		}
		records = append(records, r)
	}

	return &memorySource{
		path:     path,
		resolved: resolved,
		strategy: strategy,
		records:  records,
		logger:   logger,
	}, nil
}

func parseLevel(s string) float64 {
	switch s {
	case "", "NA", "NaN", "null":
		return well.Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return well.Missing()
	}
	return v
}

func (m *memorySource) Schema() schema.Schema      { return m.resolved }
func (m *memorySource) DateStrategy() DateStrategy { return m.strategy }
func (m *memorySource) Close() error               { return nil }

func (m *memorySource) WellData(wellID string, unit int, window well.Window) (*well.Series, error) {
	if unit != AnyUnit && m.resolved.Unit == "" {
		return nil, &schema.MissingColumnError{Role: schema.RoleUnit}
	}

	s := &well.Series{WellID: wellID, Unit: unit}
	if m.strategy == DateSynthetic {
		s.Calendar = well.CalendarSynthetic
	}
	for _, r := range m.records {
		if r.wellID != wellID {
			continue
		}
		if unit != AnyUnit && r.unit != unit {
			continue
		}
		if !window.Contains(r.date) {
			continue
		}
		if s.Len() == 0 {
			s.Unit = r.unit
			s.X = r.x
			s.Y = r.y
		}
		s.Dates = append(s.Dates, r.date)
		s.Levels = append(s.Levels, r.level)
	}

	if s.Len() == 0 {
		u := unit
		if unit == AnyUnit {
			u = -1
		}
		return nil, &WellNotFoundError{WellID: wellID, Unit: u}
	}

	s.Normalize()
	return s, nil
}

func (m *memorySource) AvailableWells() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, r := range m.records {
		if !seen[r.wellID] {
			seen[r.wellID] = true
			out = append(out, r.wellID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memorySource) AvailableUnits() ([]int, error) {
	if m.resolved.Unit == "" {
		return nil, &schema.MissingColumnError{Role: schema.RoleUnit}
	}
	seen := map[int]bool{}
	var out []int
	for _, r := range m.records {
		if !seen[r.unit] {
			seen[r.unit] = true
			out = append(out, r.unit)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (m *memorySource) DateRange() (time.Time, time.Time, error) {
	if len(m.records) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%s: no rows", m.path)
	}
	first, last := m.records[0].date, m.records[0].date
	for _, r := range m.records[1:] {
		if r.date.Before(first) {
			first = r.date
		}
		if r.date.After(last) {
			last = r.date
		}
	}
	return first, last, nil
}

// WellCoordinates derives coordinate metadata from the X/Y columns when the
// source carries them, one location per (unit, well).
func (m *memorySource) WellCoordinates() ([]well.Location, error) {
	type key struct {
		unit int
		id   string
	}
	seen := map[key]bool{}
	var out []well.Location
	for _, r := range m.records {
		k := key{r.unit, r.wellID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, well.Location{Unit: r.unit, WellID: r.wellID, X: r.x, Y: r.y})
	}
	return out, nil
}
