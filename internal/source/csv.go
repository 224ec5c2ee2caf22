package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// OpenCSV loads a CSV file into an in-memory source. The first row must be
// a header; column roles are resolved from it once.
func OpenCSV(path string, logger *zap.SugaredLogger) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	return readCSV(path, f, logger)
}

func readCSV(path string, r io.Reader, logger *zap.SugaredLogger) (Source, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, row)
	}

	return newMemorySource(path, header, rows, logger)
}
