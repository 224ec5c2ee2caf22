package source

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hydrosense/wellspring/internal/log"
	"github.com/hydrosense/wellspring/internal/schema"
	"github.com/hydrosense/wellspring/internal/well"
)

// PostgresConfig configures a production Postgres source. Unlike file
// sources, the Postgres schema is canonical: columns are well_id, unit,
// date, level, x, y.
type PostgresConfig struct {
	ConnectionString string
	// Table is the water-level table name. Defaults to "water_levels".
	Table string
	// CoordinatesTable defaults to "well_coordinates".
	CoordinatesTable string
	// ManualTable defaults to "manual_measurements".
	ManualTable string
}

func (c *PostgresConfig) withDefaults() PostgresConfig {
	out := *c
	if out.Table == "" {
		out.Table = "water_levels"
	}
	if out.CoordinatesTable == "" {
		out.CoordinatesTable = "well_coordinates"
	}
	if out.ManualTable == "" {
		out.ManualTable = "manual_measurements"
	}
	return out
}

// PostgresSource reads water levels from a Postgres database via GORM.
type PostgresSource struct {
	db     *gorm.DB
	cfg    PostgresConfig
	logger *zap.SugaredLogger
}

type waterLevelRow struct {
	WellID string          `gorm:"column:well_id"`
	Unit   int             `gorm:"column:unit"`
	Date   time.Time       `gorm:"column:date"`
	Level  sql.NullFloat64 `gorm:"column:level"`
	X      sql.NullFloat64 `gorm:"column:x"`
	Y      sql.NullFloat64 `gorm:"column:y"`
}

// OpenPostgres connects to the database with the standard GORM
// configuration, logging through zap.
func OpenPostgres(cfg PostgresConfig, logger *zap.SugaredLogger) (*PostgresSource, error) {
	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.ConnectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a Postgres connection: %w", err)
	}

	return &PostgresSource{db: db, cfg: cfg.withDefaults(), logger: logger}, nil
}

// Schema returns the canonical column mapping of the Postgres tables.
func (p *PostgresSource) Schema() schema.Schema {
	return schema.Schema{WellID: "well_id", Unit: "unit", Date: "date", Level: "level"}
}

// DateStrategy is always DateLayout: Postgres stores genuine timestamps.
func (p *PostgresSource) DateStrategy() DateStrategy {
	return DateLayout
}

func (p *PostgresSource) WellData(wellID string, unit int, window well.Window) (*well.Series, error) {
	q := p.db.Table(p.cfg.Table).Where("well_id = ?", wellID)
	if unit != AnyUnit {
		q = q.Where("unit = ?", unit)
	}
	if !window.Start.IsZero() {
		q = q.Where("date >= ?", window.Start)
	}
	if !window.End.IsZero() {
		q = q.Where("date <= ?", window.End)
	}

	var rows []waterLevelRow
	if err := q.Order("date").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying water levels: %w", err)
	}
	if len(rows) == 0 {
		return nil, &WellNotFoundError{WellID: wellID, Unit: unit}
	}

	s := &well.Series{WellID: wellID, Unit: rows[0].Unit}
	if rows[0].X.Valid {
		s.X = rows[0].X.Float64
	}
	if rows[0].Y.Valid {
		s.Y = rows[0].Y.Float64
	}
	for _, r := range rows {
		level := well.Missing()
		if r.Level.Valid {
			level = r.Level.Float64
		}
		s.Dates = append(s.Dates, r.Date.UTC().Truncate(24*time.Hour))
		s.Levels = append(s.Levels, level)
	}
	s.Normalize()
	return s, nil
}

func (p *PostgresSource) AvailableWells() ([]string, error) {
	var out []string
	err := p.db.Table(p.cfg.Table).Distinct("well_id").Order("well_id").Pluck("well_id", &out).Error
	if err != nil {
		return nil, fmt.Errorf("error listing wells: %w", err)
	}
	return out, nil
}

func (p *PostgresSource) AvailableUnits() ([]int, error) {
	var out []int
	err := p.db.Table(p.cfg.Table).Distinct("unit").Order("unit").Pluck("unit", &out).Error
	if err != nil {
		return nil, fmt.Errorf("error listing units: %w", err)
	}
	return out, nil
}

func (p *PostgresSource) DateRange() (time.Time, time.Time, error) {
	type bounds struct {
		First time.Time
		Last  time.Time
	}
	var b bounds
	err := p.db.Table(p.cfg.Table).
		Select("MIN(date) AS first, MAX(date) AS last").
		Scan(&b).Error
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("error querying date range: %w", err)
	}
	return b.First, b.Last, nil
}

// ManualDates returns the manual measurement dates for a well.
func (p *PostgresSource) ManualDates(unit int, wellID string) ([]time.Time, error) {
	var out []time.Time
	err := p.db.Table(p.cfg.ManualTable).
		Where("unit = ? AND well_id = ?", unit, wellID).
		Order("date").
		Pluck("date", &out).Error
	if err != nil {
		return nil, fmt.Errorf("error querying manual measurements: %w", err)
	}
	return out, nil
}

// WellCoordinates returns the coordinate metadata table.
func (p *PostgresSource) WellCoordinates() ([]well.Location, error) {
	type coordRow struct {
		Unit   int     `gorm:"column:unit"`
		WellID string  `gorm:"column:well_id"`
		Zone   int     `gorm:"column:zone"`
		Line   string  `gorm:"column:line"`
		X      float64 `gorm:"column:x"`
		Y      float64 `gorm:"column:y"`
	}
	var rows []coordRow
	if err := p.db.Table(p.cfg.CoordinatesTable).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying coordinates: %w", err)
	}
	out := make([]well.Location, len(rows))
	for i, r := range rows {
		out[i] = well.Location{Unit: r.Unit, WellID: r.WellID, Zone: r.Zone, Line: r.Line, X: r.X, Y: r.Y}
	}
	return out, nil
}

func (p *PostgresSource) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
