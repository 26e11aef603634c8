// Package aggregate turns per-record extraction spans into the table cell
// values and per-entity statistics the exporter and summary rely on.
package aggregate

import (
	"sort"
	"strings"

	"github.com/evidencelabs/spark/internal/extract"
)

// Separator joins deduplicated extraction texts inside one cell. The
// exact separator and the ascending byte-order sort are a format contract
// relied on by exports and statistics.
const Separator = "; "

// Group buckets spans by entity type, preserving span order within each
// bucket. Every requested entity name gets a bucket, empty or not; spans
// whose type matches no requested name are dropped.
func Group(spans []extract.Span, entityNames []string) map[string][]extract.Span {
	buckets := make(map[string][]extract.Span, len(entityNames))
	for _, name := range entityNames {
		buckets[name] = nil
	}
	for _, sp := range spans {
		if _, ok := buckets[sp.EntityType]; !ok {
			continue
		}
		buckets[sp.EntityType] = append(buckets[sp.EntityType], sp)
	}
	return buckets
}

// Aggregate produces one cell value per entity name: the deduplicated,
// byte-order sorted, "; "-joined extraction texts, or "" for an empty
// bucket. Output is independent of span discovery order.
func Aggregate(spans []extract.Span, entityNames []string) map[string]string {
	buckets := Group(spans, entityNames)

	out := make(map[string]string, len(entityNames))
	for _, name := range entityNames {
		bucket := buckets[name]
		if len(bucket) == 0 {
			out[name] = ""
			continue
		}
		seen := make(map[string]struct{}, len(bucket))
		unique := make([]string, 0, len(bucket))
		for _, sp := range bucket {
			if _, ok := seen[sp.Text]; ok {
				continue
			}
			seen[sp.Text] = struct{}{}
			unique = append(unique, sp.Text)
		}
		sort.Strings(unique)
		out[name] = strings.Join(unique, Separator)
	}
	return out
}

// Stats counts, per entity name, how many rows have a non-empty cell.
// rows holds one Aggregate result per processed record.
type Stats struct {
	Total   int
	ByName  map[string]int
	Ordered []string
}

// ComputeStats tallies non-empty cells per entity across all rows.
func ComputeStats(rows []map[string]string, entityNames []string) Stats {
	st := Stats{
		Total:   len(rows),
		ByName:  make(map[string]int, len(entityNames)),
		Ordered: entityNames,
	}
	for _, name := range entityNames {
		st.ByName[name] = 0
	}
	for _, row := range rows {
		for _, name := range entityNames {
			if row[name] != "" {
				st.ByName[name]++
			}
		}
	}
	return st
}
