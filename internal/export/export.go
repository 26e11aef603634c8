// Package export writes run outputs: the result table (CSV or XLSX, one
// column per entity appended to the original record columns) and the
// visualization documents (directory of HTML files or a zip bundle).
package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/evidencelabs/spark/internal/ingest"
	"github.com/evidencelabs/spark/internal/viz"
)

// Header returns the export column order: the dataset's original columns
// followed by one column per entity name.
func Header(ds *ingest.Dataset, entityNames []string) []string {
	header := make([]string, 0, len(ds.Columns)+len(entityNames))
	header = append(header, ds.Columns...)
	header = append(header, entityNames...)
	return header
}

// rowValues flattens one record plus its entity cells into header order.
func rowValues(ds *ingest.Dataset, rec ingest.Record, entityNames []string, cells map[string]string) []string {
	values := make([]string, 0, len(ds.Columns)+len(entityNames))
	for _, col := range ds.Columns {
		values = append(values, rec.Field(col))
	}
	for _, name := range entityNames {
		values = append(values, cells[name])
	}
	return values
}

// WriteCSV writes the result table as CSV. rows must hold one entity-cell
// map per dataset record, in input order.
func WriteCSV(w io.Writer, ds *ingest.Dataset, entityNames []string, rows []map[string]string) error {
	if len(rows) != len(ds.Records) {
		return fmt.Errorf("row count %d does not match record count %d", len(rows), len(ds.Records))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header(ds, entityNames)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, rec := range ds.Records {
		if err := cw.Write(rowValues(ds, rec, entityNames, rows[i])); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the result table as a spreadsheet.
func WriteXLSX(path string, ds *ingest.Dataset, entityNames []string, rows []map[string]string) error {
	if len(rows) != len(ds.Records) {
		return fmt.Errorf("row count %d does not match record count %d", len(rows), len(ds.Records))
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for i, h := range Header(ds, entityNames) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}
	for r, rec := range ds.Records {
		for c, v := range rowValues(ds, rec, entityNames, rows[r]) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return nil
}

// WriteVizDir writes each visualization document into dir, creating it
// if needed.
func WriteVizDir(dir string, docs []viz.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create visualization directory: %w", err)
	}
	for _, doc := range docs {
		path := filepath.Join(dir, doc.Filename)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", doc.Filename, err)
		}
	}
	return nil
}

// WriteVizArchive bundles all visualization documents into one zip.
func WriteVizArchive(w io.Writer, docs []viz.Document) error {
	zw := zip.NewWriter(w)
	for _, doc := range docs {
		fw, err := zw.Create(doc.Filename)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", doc.Filename, err)
		}
		if _, err := fw.Write([]byte(doc.Content)); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", doc.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}
