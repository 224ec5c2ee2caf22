// Package source resolves heterogeneous tabular water-level inputs (CSV,
// Excel workbooks, SQLite databases, Postgres) into well-indexed time
// series. Column roles are resolved once per data set through the alias
// tables in internal/schema; the decomposition core only ever sees resolved
// series, never raw columns.
package source

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hydrosense/wellspring/internal/schema"
	"github.com/hydrosense/wellspring/internal/well"
)

// WellNotFoundError reports that no rows matched the requested
// well/treatment-unit/date-window combination. Always a hard failure.
type WellNotFoundError struct {
	WellID string
	Unit   int
}

func (e *WellNotFoundError) Error() string {
	if e.Unit >= 0 {
		return fmt.Sprintf("well %q not found in treatment unit %d", e.WellID, e.Unit)
	}
	return fmt.Sprintf("well %q not found", e.WellID)
}

// AnyUnit disables treatment-unit filtering in WellData calls.
const AnyUnit = -1

// Source is a resolved tabular data set of daily water levels.
type Source interface {
	// Schema returns the resolved column mapping for this data set.
	Schema() schema.Schema

	// DateStrategy returns which date interpretation loaded this data set.
	DateStrategy() DateStrategy

	// WellData returns the series for one well, optionally filtered by
	// treatment unit (AnyUnit disables) and date window. The returned
	// series has a strictly increasing, unique timeline.
	WellData(wellID string, unit int, window well.Window) (*well.Series, error)

	// AvailableWells lists the well identifiers present in the data set.
	AvailableWells() ([]string, error)

	// AvailableUnits lists the treatment units present in the data set.
	AvailableUnits() ([]int, error)

	// DateRange returns the first and last date of the data set.
	DateRange() (time.Time, time.Time, error)

	Close() error
}

// ManualMeasurementSource is implemented by sources that carry a separate
// table of manual field-measurement dates, used as explicit trend anchors.
type ManualMeasurementSource interface {
	ManualDates(unit int, wellID string) ([]time.Time, error)
}

// CoordinateSource is implemented by sources that carry well coordinate
// metadata for neighbor selection.
type CoordinateSource interface {
	WellCoordinates() ([]well.Location, error)
}

// Open dispatches on the file extension and returns the matching source.
// SQLite table names use the defaults; use OpenSQLite directly to override
// them. Postgres sources are constructed with OpenPostgres, not Open.
func Open(path string, logger *zap.SugaredLogger) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return OpenCSV(path, logger)
	case ".xlsx", ".xls":
		return OpenExcel(path, logger)
	case ".sqlite", ".db":
		return OpenSQLite(path, DefaultTableConfig(), logger)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}
