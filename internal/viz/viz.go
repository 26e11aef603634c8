// Package viz renders one self-contained interactive HTML document per
// record: the record text with per-entity highlight views that can be
// toggled one at a time.
package viz

import (
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"sort"
	"strings"

	"github.com/evidencelabs/spark/internal/aggregate"
	"github.com/evidencelabs/spark/internal/extract"
)

//go:embed viz.html
var pageTemplate string

// palette is the fixed 10-color highlight cycle. Entities are colored by
// their position in the run's global entity ordering, mod 10.
var palette = [10]string{
	"#d2e3fc", // blue
	"#c8e6c9", // green
	"#fef0c3", // yellow
	"#f9dedc", // red
	"#ffddbb", // orange
	"#eaddff", // purple
	"#c4e9e4", // teal
	"#fce4ec", // pink
	"#e0e0e0", // gray
	"#d7ccc8", // brown
}

// Color returns the highlight color for the entity at the given position
// in the global entity ordering.
func Color(index int) string {
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}

// Document is a rendered visualization artifact.
type Document struct {
	Filename string
	Content  string
}

type entityView struct {
	Name  string
	Color string
	Count int
	HTML  template.HTML
}

type pageData struct {
	RecordNumber  int
	TotalSpans    int
	DistinctTypes int
	PlainHTML     template.HTML
	Entities      []entityView
}

var tmpl = template.Must(template.New("viz").Parse(pageTemplate))

// Render produces the visualization document for one record. Entities
// with zero spans get no toggle; an empty span list renders the plain
// text with no controls. Spans with out-of-bounds or inverted offsets are
// excluded from highlighting but still counted in the summary.
func Render(recordNumber int, text string, spans []extract.Span, entityNames []string) (Document, error) {
	buckets := aggregate.Group(spans, entityNames)

	data := pageData{
		RecordNumber: recordNumber,
		PlainHTML:    template.HTML(escapeText(text)),
	}

	for i, name := range entityNames {
		bucket := buckets[name]
		if len(bucket) == 0 {
			continue
		}
		data.TotalSpans += len(bucket)
		data.DistinctTypes++
		data.Entities = append(data.Entities, entityView{
			Name:  name,
			Color: Color(i),
			Count: len(bucket),
			HTML:  highlightHTML(text, bucket, Color(i)),
		})
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return Document{}, fmt.Errorf("failed to render visualization: %w", err)
	}

	return Document{
		Filename: fmt.Sprintf("%d.html", recordNumber),
		Content:  b.String(),
	}, nil
}

// escapeText escapes the record text for literal display.
func escapeText(text string) string {
	return html.EscapeString(text)
}

// highlightHTML builds the highlighted view for one entity's spans. Tag
// positions are resolved against the original text before anything is
// inserted, which is equivalent to applying spans in descending start
// order: no insertion shifts the offsets of a span not yet applied. Text
// between tags is escaped so extracted content renders literally.
func highlightHTML(text string, spans []extract.Span, color string) template.HTML {
	type event struct {
		pos  int
		open bool
	}

	var events []event
	for _, sp := range spans {
		if !sp.Valid(len(text)) || sp.Start == sp.End {
			continue
		}
		events = append(events, event{sp.Start, true}, event{sp.End, false})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		// Close tags before open tags at the same position, so adjacent
		// spans don't nest.
		return !events[i].open && events[j].open
	})

	var b strings.Builder
	prev := 0
	for _, ev := range events {
		b.WriteString(html.EscapeString(text[prev:ev.pos]))
		if ev.open {
			b.WriteString(`<mark style="background-color: ` + color + `">`)
		} else {
			b.WriteString(`</mark>`)
		}
		prev = ev.pos
	}
	b.WriteString(html.EscapeString(text[prev:]))
	return template.HTML(b.String())
}
