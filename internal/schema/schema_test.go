package schema

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    Schema
	}{
		{
			name:    "legacy french names",
			columns: []string{"A", "Jour", "Bassin", "Puit", "Zone", "Ligne", "Nappe"},
			want:    Schema{WellID: "Puit", Unit: "Bassin", Date: "Jour", Level: "Nappe"},
		},
		{
			name:    "english export",
			columns: []string{"Date", "Well_ID", "Basin", "Water_Level", "X", "Y"},
			want:    Schema{WellID: "Well_ID", Unit: "Basin", Date: "Date", Level: "Water_Level"},
		},
		{
			name:    "unit column is optional",
			columns: []string{"Date", "Well", "Level"},
			want:    Schema{WellID: "Well", Unit: "", Date: "Date", Level: "Level"},
		},
		{
			name:    "first alias wins",
			columns: []string{"Date", "Puit", "WellID", "Nappe", "Level"},
			want:    Schema{WellID: "Puit", Unit: "", Date: "Date", Level: "Nappe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.columns)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveMissingRequiredColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		role    Role
	}{
		{"no well column", []string{"Date", "Nappe"}, RoleWellID},
		{"no date column", []string{"Puit", "Nappe"}, RoleDate},
		{"no level column", []string{"Puit", "Date"}, RoleLevel},
		{"empty header", nil, RoleWellID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.columns)
			var missing *MissingColumnError
			if !errors.As(err, &missing) {
				t.Fatalf("error = %v, want MissingColumnError", err)
			}
			if missing.Role != tt.role {
				t.Errorf("missing role = %v, want %v", missing.Role, tt.role)
			}
		})
	}
}

func TestAliasesReturnsCopy(t *testing.T) {
	a := Aliases(RoleWellID)
	if len(a) == 0 {
		t.Fatal("no aliases for well identifier")
	}
	a[0] = "mutated"
	if Aliases(RoleWellID)[0] == "mutated" {
		t.Error("Aliases exposes internal state")
	}
}
