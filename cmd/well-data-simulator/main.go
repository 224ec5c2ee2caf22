// Command well-data-simulator generates synthetic groundwater monitoring
// data shaped like the legacy field databases: a dense daily reference well
// and several sparse observation wells per basin, with trend, seasonal and
// noise components. Output goes to a SQLite database, a CSV file, or both,
// which makes it the quickest way to exercise the estimation pipeline end
// to end.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type sample struct {
	basin  int
	wellID string
	date   time.Time
	level  float64
	x, y   float64
}

func main() {
	var (
		sqlitePath = flag.String("sqlite", "", "SQLite output path")
		csvPath    = flag.String("csv", "", "CSV output path")
		basins     = flag.Int("basins", 2, "Number of basins")
		wellsPer   = flag.Int("wells", 4, "Wells per basin (first well of each basin is dense)")
		days       = flag.Int("days", 365, "Number of days")
		sparseStep = flag.Int("sparse-step", 14, "Observation interval in days for sparse wells")
		noise      = flag.Float64("noise", 0.30, "Noise intensity multiplier")
		seed       = flag.Int64("seed", 42, "Random seed")
		startStr   = flag.String("start", "2022-01-01", "First date (YYYY-MM-DD)")
	)
	flag.Parse()

	if *sqlitePath == "" && *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	start, err := time.Parse(dateLayout, *startStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid start date %q\n", *startStr)
		os.Exit(2)
	}

	rng := rand.New(rand.NewSource(*seed))
	samples, manuals, coords := generate(rng, *basins, *wellsPer, *days, *sparseStep, *noise, start)
	fmt.Printf("Generated %d samples for %d wells\n", len(samples), len(coords))

	if *sqlitePath != "" {
		if err := writeSQLite(*sqlitePath, samples, manuals, coords); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing SQLite: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("SQLite database written to: %s\n", *sqlitePath)
	}
	if *csvPath != "" {
		if err := writeCSV(*csvPath, samples); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("CSV written to: %s\n", *csvPath)
	}
}

type coordinate struct {
	basin  int
	wellID string
	x, y   float64
}

// generate builds water levels as base + trend + seasonal + noise. The
// first well of each basin observes daily; the rest observe every
// sparse-step days, leaving the gaps the estimator is meant to fill. Sparse
// observations double as manual field-measurement dates.
func generate(rng *rand.Rand, basins, wellsPer, days, sparseStep int, noise float64, start time.Time) ([]sample, []sample, []coordinate) {
	var samples []sample
	var manuals []sample
	var coords []coordinate

	for basin := 1; basin <= basins; basin++ {
		for w := 0; w < wellsPer; w++ {
			wellID := fmt.Sprintf("%c%d", 'A'+w, basin)
			x := float64(basin*1000) + float64(w)*120 + rng.Float64()*40
			y := float64(basin*800) + float64(w)*90 + rng.Float64()*40
			coords = append(coords, coordinate{basin: basin, wellID: wellID, x: x, y: y})

			baseLevel := -20 + float64(basin)*5 + float64(wellHash(wellID)%10) - 5
			trendSlope := (-5 + rng.NormFloat64()*2) / float64(days)
			phase := float64(wellHash(wellID)%30) / 365

			step := 1
			if w > 0 {
				step = sparseStep
			}

			for d := 0; d < days; d += step {
				date := start.AddDate(0, 0, d)
				seasonal := 3 * math.Sin(2*math.Pi*(float64(d)/365+phase))
				weekly := noise * 1.5 * math.Sin(2*math.Pi*float64(d)/7)
				level := baseLevel + trendSlope*float64(d) + seasonal + weekly +
					noise*rng.NormFloat64()*2

				s := sample{
					basin:  basin,
					wellID: wellID,
					date:   date,
					level:  level,
					x:      x,
					y:      y,
				}
				samples = append(samples, s)
				if w > 0 {
					manuals = append(manuals, s)
				}
			}
		}
	}
	return samples, manuals, coords
}

func wellHash(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32())
}

// julianDay converts a midnight-UTC date to the nearest integer Julian day
// number.
func julianDay(t time.Time) int64 {
	return int64(math.Round(float64(t.Unix())/86400 + 2440587.5))
}

// writeSQLite writes the legacy three-table layout. Dates go into the Jour
// column as astronomical Julian day numbers, matching the serial format of
// the field databases.
func writeSQLite(path string, samples, manuals []sample, coords []coordinate) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS WaterLevels (
			A INTEGER, Jour INTEGER, Bassin INTEGER, Puit TEXT,
			Zone INTEGER, Ligne TEXT, Nappe REAL
		)`,
		`CREATE TABLE IF NOT EXISTS ManualMeasurements (
			A INTEGER, Point TEXT, Jour INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS WellCoordinates (
			Bassin INTEGER, Puit TEXT, Zone INTEGER, Ligne TEXT, X REAL, Y REAL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert, err := tx.Prepare(`INSERT INTO WaterLevels (A, Jour, Bassin, Puit, Zone, Ligne, Nappe) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	for _, s := range samples {
		jour := julianDay(s.date)
		if _, err := insert.Exec(s.basin, jour, s.basin, s.wellID, 1, "L1", s.level); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	manualInsert, err := tx.Prepare(`INSERT INTO ManualMeasurements (A, Point, Jour) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare manual insert: %w", err)
	}
	defer manualInsert.Close()

	for _, m := range manuals {
		if _, err := manualInsert.Exec(m.basin, m.wellID, julianDay(m.date)); err != nil {
			return fmt.Errorf("failed to insert manual measurement: %w", err)
		}
	}

	coordInsert, err := tx.Prepare(`INSERT INTO WellCoordinates (Bassin, Puit, Zone, Ligne, X, Y) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare coordinate insert: %w", err)
	}
	defer coordInsert.Close()

	for _, c := range coords {
		if _, err := coordInsert.Exec(c.basin, c.wellID, 1, "L1", c.x, c.y); err != nil {
			return fmt.Errorf("failed to insert coordinate: %w", err)
		}
	}

	return tx.Commit()
}

func writeCSV(path string, samples []sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Well_ID", "Basin", "Water_Level", "X", "Y"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			s.date.Format(dateLayout),
			s.wellID,
			fmt.Sprintf("%d", s.basin),
			fmt.Sprintf("%.2f", s.level),
			fmt.Sprintf("%.1f", s.x),
			fmt.Sprintf("%.1f", s.y),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
