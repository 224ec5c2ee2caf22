package source

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hydrosense/wellspring/internal/well"
)

// TableConfig names the three tables of a monitoring database.
type TableConfig struct {
	Main        string
	Manual      string
	Coordinates string
}

// DefaultTableConfig returns the legacy table names used by the field
// databases.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Main:        "WaterLevels",
		Manual:      "ManualMeasurements",
		Coordinates: "WellCoordinates",
	}
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// SQLiteSource reads a monitoring SQLite database. The main water-level
// table is materialized once at open time and served from memory; the
// manual-measurement and coordinate tables are queried on demand.
type SQLiteSource struct {
	*memorySource
	db     *sql.DB
	cfg    TableConfig
	logger *zap.SugaredLogger
}

// OpenSQLite opens the database, resolves the main table's columns against
// the role alias tables and loads its rows.
func OpenSQLite(path string, cfg TableConfig, logger *zap.SugaredLogger) (*SQLiteSource, error) {
	for _, name := range []string{cfg.Main, cfg.Manual, cfg.Coordinates} {
		if !tableNameRe.MatchString(name) {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	tables, err := tableNames(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if !contains(tables, cfg.Main) {
		db.Close()
		return nil, fmt.Errorf("main table %q not found, available tables: %v", cfg.Main, tables)
	}

	header, rows, err := readTable(db, cfg.Main)
	if err != nil {
		db.Close()
		return nil, err
	}

	mem, err := newMemorySource(path, header, rows, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSource{
		memorySource: mem,
		db:           db,
		cfg:          cfg,
		logger:       logger,
	}, nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// ManualDates returns the manual field-measurement dates recorded for a
// well, for use as explicit trend anchors. The legacy manual table carries
// only dates, keyed by unit column A and well column Point.
func (s *SQLiteSource) ManualDates(unit int, wellID string) ([]time.Time, error) {
	query := fmt.Sprintf(`SELECT Jour FROM %s WHERE A = ? AND Point = ? ORDER BY Jour`, s.cfg.Manual)
	rows, err := s.db.Query(query, unit, wellID)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual measurements: %w", err)
	}
	defer rows.Close()

	var raw []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan manual measurement row: %w", err)
		}
		raw = append(raw, v.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manual measurement rows: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	dates, strategy, err := ParseDateColumn(raw, s.logger)
	if err != nil {
		return nil, err
	}
	if strategy == DateSynthetic {
		return nil, fmt.Errorf("manual measurement dates are not interpretable")
	}
	return dates, nil
}

// WellCoordinates returns the coordinate metadata table.
func (s *SQLiteSource) WellCoordinates() ([]well.Location, error) {
	query := fmt.Sprintf(`SELECT Bassin, Puit, Zone, Ligne, X, Y FROM %s`, s.cfg.Coordinates)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query coordinates: %w", err)
	}
	defer rows.Close()

	var out []well.Location
	for rows.Next() {
		var loc well.Location
		var zone sql.NullInt64
		var line sql.NullString
		if err := rows.Scan(&loc.Unit, &loc.WellID, &zone, &line, &loc.X, &loc.Y); err != nil {
			return nil, fmt.Errorf("failed to scan coordinate row: %w", err)
		}
		loc.Zone = int(zone.Int64)
		loc.Line = line.String
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coordinate rows: %w", err)
	}
	return out, nil
}

func tableNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// readTable materializes a whole table as strings so the column-role
// resolver and the date ladder can run over it exactly like a file source.
func readTable(db *sql.DB, table string) ([]string, [][]string, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM %s`, table))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows of %s: %w", table, err)
	}
	return cols, out, nil
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
