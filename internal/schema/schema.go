// Package schema resolves the semantic column roles of a tabular water-level
// source into a fixed mapping. Sources carry wildly different column names
// for the same concepts (legacy French field names, abbreviated exports,
// vendor spreadsheets), so each role accepts an ordered list of aliases.
// Resolution happens exactly once at ingestion; everything downstream
// consumes the resolved Schema and never looks at raw column names again.
package schema

import (
	"fmt"
	"strings"
)

// Role identifies the semantic meaning of a source column.
type Role int

const (
	RoleWellID Role = iota
	RoleUnit
	RoleDate
	RoleLevel
)

// String returns the role name used in error messages.
func (r Role) String() string {
	switch r {
	case RoleWellID:
		return "well identifier"
	case RoleUnit:
		return "treatment unit"
	case RoleDate:
		return "date"
	case RoleLevel:
		return "water level"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// aliases maps each role to its accepted column names, in priority order.
// The first alias present in the source wins.
var aliases = map[Role][]string{
	RoleWellID: {"Puit", "Well_ID", "WellID", "Well", "Point"},
	RoleUnit:   {"Bassin", "TreatmentUnit", "Basin", "Treatment", "Unit"},
	RoleLevel:  {"Nappe", "WaterLevel", "Water_Level", "Level", "Depth"},
	RoleDate:   {"Date", "Jour", "Day", "Time"},
}

// Aliases returns the accepted column names for a role, in priority order.
func Aliases(r Role) []string {
	return append([]string(nil), aliases[r]...)
}

// MissingColumnError reports that no source column matched any alias for a
// required role.
type MissingColumnError struct {
	Role    Role
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("no %s column found, expected one of: %s",
		e.Role, strings.Join(aliases[e.Role], ", "))
}

// Schema is the resolved mapping of semantic role to source column name for
// one data set. Unit may be empty when the source has no treatment-unit
// column; all other fields are always populated.
type Schema struct {
	WellID string
	Unit   string
	Date   string
	Level  string
}

// Resolve matches the given source columns against the alias tables.
// WellID, Date and Level are required; Unit is optional because single-unit
// exports commonly omit it.
func Resolve(columns []string) (Schema, error) {
	find := func(r Role) string {
		for _, alias := range aliases[r] {
			for _, col := range columns {
				if col == alias {
					return col
				}
			}
		}
		return ""
	}

	s := Schema{
		WellID: find(RoleWellID),
		Unit:   find(RoleUnit),
		Date:   find(RoleDate),
		Level:  find(RoleLevel),
	}

	for _, req := range []struct {
		role Role
		col  string
	}{
		{RoleWellID, s.WellID},
		{RoleDate, s.Date},
		{RoleLevel, s.Level},
	} {
		if req.col == "" {
			return Schema{}, &MissingColumnError{Role: req.role, Columns: columns}
		}
	}

	return s, nil
}
