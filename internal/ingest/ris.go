package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// risColumns is the fixed column set produced by RIS ingestion.
var risColumns = []string{"title", "abstract", "authors", "year", "journal", "doi", "keywords", "type"}

// risEntry accumulates tag values for one reference.
type risEntry struct {
	values   map[string][]string
	lastTag  string
	hasLines bool
}

func newRISEntry() *risEntry {
	return &risEntry{values: make(map[string][]string)}
}

func (e *risEntry) add(tag, value string) {
	e.values[tag] = append(e.values[tag], value)
	e.lastTag = tag
	e.hasLines = true
}

// appendContinuation extends the most recent tag value with a wrapped line.
func (e *risEntry) appendContinuation(line string) {
	if e.lastTag == "" {
		return
	}
	vals := e.values[e.lastTag]
	if len(vals) == 0 {
		return
	}
	vals[len(vals)-1] = vals[len(vals)-1] + " " + strings.TrimSpace(line)
}

// first returns the first value among the given tags, in tag preference order.
func (e *risEntry) first(tags ...string) string {
	for _, tag := range tags {
		if vals := e.values[tag]; len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// all returns every value recorded for the given tags, in tag order.
func (e *risEntry) all(tags ...string) []string {
	var out []string
	for _, tag := range tags {
		out = append(out, e.values[tag]...)
	}
	return out
}

func (e *risEntry) toRecord() Record {
	title := e.first("TI", "T1")
	abstract := e.first("AB", "N2")
	rec := Record{
		Title:    title,
		Abstract: abstract,
		Fields: map[string]string{
			"title":    title,
			"abstract": abstract,
			"authors":  strings.Join(e.all("AU", "A1"), "; "),
			"year":     e.first("PY", "Y1"),
			"journal":  e.first("JO", "JF", "T2"),
			"doi":      e.first("DO"),
			"keywords": strings.Join(e.all("KW"), "; "),
			"type":     e.first("TY"),
		},
	}
	return rec
}

// ParseRIS parses RIS-formatted reference data. Each reference starts at a
// "TY  -" tag and ends at "ER  -"; untagged lines continue the previous
// tag's value.
func ParseRIS(r io.Reader) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	ds := &Dataset{Columns: risColumns}
	entry := newRISEntry()

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		tag, value, ok := splitRISLine(line)
		if !ok {
			entry.appendContinuation(line)
			continue
		}

		if tag == "ER" {
			if entry.hasLines {
				ds.Records = append(ds.Records, entry.toRecord())
			}
			entry = newRISEntry()
			continue
		}
		entry.add(tag, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read RIS data: %w", err)
	}

	// Tolerate a final reference without a closing ER tag.
	if entry.hasLines {
		ds.Records = append(ds.Records, entry.toRecord())
	}

	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("no references found in RIS data")
	}
	return ds, nil
}

// splitRISLine splits "TAG  - value" lines. Tags are two characters:
// an uppercase letter followed by a letter or digit.
func splitRISLine(line string) (tag, value string, ok bool) {
	if len(line) < 2 || !isRISTag(line[:2]) {
		return "", "", false
	}
	rest := strings.TrimLeft(line[2:], " ")
	if !strings.HasPrefix(rest, "-") {
		return "", "", false
	}
	return line[:2], strings.TrimSpace(rest[1:]), true
}

func isRISTag(s string) bool {
	if len(s) != 2 {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	c := s[1]
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
