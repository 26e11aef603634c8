// Package ingest parses bibliographic files (RIS, CSV) into a uniform
// record shape and prepares per-record extraction text.
package ingest

import "fmt"

// Record is one bibliographic entry. Title and Abstract drive extraction;
// everything else rides along in Fields for export.
type Record struct {
	Title    string
	Abstract string

	// Fields holds passthrough metadata columns keyed by column name.
	// Title and abstract are mirrored here so exports see every column.
	Fields map[string]string
}

// Dataset is an ordered batch of records with a stable column order.
type Dataset struct {
	// Columns is the export column order, as found in the source file.
	Columns []string
	Records []Record
}

// Field returns the named metadata column, or "" if absent.
func (r Record) Field(name string) string {
	return r.Fields[name]
}

// ExtractionText builds the text blob handed to the extraction engine.
// The "Title:"/"Abstract:" prefixes preserve field provenance so spans
// can be informally attributed to one or the other. An empty result
// means the record has nothing to extract from and should be skipped.
func (r Record) ExtractionText() string {
	switch {
	case r.Title != "" && r.Abstract != "":
		return fmt.Sprintf("Title: %s\n\nAbstract: %s", r.Title, r.Abstract)
	case r.Title != "":
		return fmt.Sprintf("Title: %s", r.Title)
	case r.Abstract != "":
		return fmt.Sprintf("Abstract: %s", r.Abstract)
	default:
		return ""
	}
}
