package extract

import "strings"

// Align locates each span's text inside the document and fills in byte
// offsets. Spans are matched left to right with a moving cursor so that
// repeated mentions map to successive occurrences; a span that cannot be
// found ahead of the cursor falls back to a whole-document search.
// Unlocatable spans get Start = End = -1 so the visualizer skips them
// while the aggregate still counts their text.
func Align(text string, spans []Span) []Span {
	out := make([]Span, len(spans))
	cursor := 0

	for i, sp := range spans {
		sp.Start, sp.End = -1, -1
		if sp.Text != "" {
			if idx := strings.Index(text[cursor:], sp.Text); idx >= 0 {
				sp.Start = cursor + idx
				sp.End = sp.Start + len(sp.Text)
				cursor = sp.End
			} else if idx := strings.Index(text, sp.Text); idx >= 0 {
				sp.Start = idx
				sp.End = idx + len(sp.Text)
			}
		}
		out[i] = sp
	}
	return out
}
