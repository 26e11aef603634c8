package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumns is returned when a CSV file lacks the required
// title/abstract columns.
var ErrMissingColumns = errors.New("CSV must contain 'title' and 'abstract' columns")

// ParseCSV parses CSV data with a header row. The title and abstract
// columns are matched case-insensitively and are required; all other
// columns are carried through unchanged.
func ParseCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Normalize header names to lowercase, as the export column names.
	columns := make([]string, len(header))
	titleIdx, abstractIdx := -1, -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		columns[i] = name
		switch name {
		case "title":
			titleIdx = i
		case "abstract":
			abstractIdx = i
		}
	}
	if titleIdx < 0 || abstractIdx < 0 {
		return nil, ErrMissingColumns
	}

	ds := &Dataset{Columns: columns}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		fields := make(map[string]string, len(columns))
		for i, name := range columns {
			if i < len(row) {
				fields[name] = row[i]
			} else {
				fields[name] = ""
			}
		}
		ds.Records = append(ds.Records, Record{
			Title:    fields["title"],
			Abstract: fields["abstract"],
			Fields:   fields,
		})
	}
	return ds, nil
}
