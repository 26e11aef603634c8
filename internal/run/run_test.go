package run

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/evidencelabs/spark/internal/extract"
	"github.com/evidencelabs/spark/internal/ingest"
	"github.com/evidencelabs/spark/internal/schema"
)

// scriptedExtractor returns canned spans or errors per call.
type scriptedExtractor struct {
	calls   int
	spans   map[int][]extract.Span // keyed by call number (1-based)
	failOn  map[int]bool
	failErr error
}

func (s *scriptedExtractor) ExtractOne(ctx context.Context, text string, sc *schema.Schema) ([]extract.Span, error) {
	s.calls++
	if s.failOn[s.calls] {
		if s.failErr != nil {
			return nil, s.failErr
		}
		return nil, fmt.Errorf("scripted failure on call %d", s.calls)
	}
	return s.spans[s.calls], nil
}

func testSchema() *schema.Schema {
	return schema.New("context text with diabetes", []schema.Entity{
		{Name: "Disease", Examples: []string{"diabetes"}},
		{Name: "Intervention", Examples: []string{}},
	})
}

func dataset(records ...ingest.Record) *ingest.Dataset {
	return &ingest.Dataset{Columns: []string{"title", "abstract"}, Records: records}
}

func rec(title, abstract string) ingest.Record {
	return ingest.Record{Title: title, Abstract: abstract}
}

func TestRun(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		ex := &scriptedExtractor{
			spans: map[int][]extract.Span{
				1: {{EntityType: "Disease", Text: "diabetes", Start: 7, End: 15}},
				2: {{EntityType: "Disease", Text: "asthma", Start: 7, End: 13}},
			},
		}
		r := New(ex, Options{})
		res, err := r.Run(context.Background(), dataset(
			rec("about diabetes", ""),
			rec("about asthma", ""),
		), testSchema())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if res.Status != StatusCompleted {
			t.Errorf("status = %q, want completed", res.Status)
		}
		if len(res.Rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(res.Rows))
		}
		if res.Rows[0]["Disease"] != "diabetes" {
			t.Errorf("row 0 Disease = %q", res.Rows[0]["Disease"])
		}
		if len(res.Docs) != 2 {
			t.Errorf("docs = %d, want 2", len(res.Docs))
		}
		if res.Docs[0].Filename != "1.html" || res.Docs[1].Filename != "2.html" {
			t.Errorf("doc filenames = %q, %q", res.Docs[0].Filename, res.Docs[1].Filename)
		}
	})

	t.Run("failures isolated per record", func(t *testing.T) {
		ex := &scriptedExtractor{
			spans: map[int][]extract.Span{
				1: {{EntityType: "Disease", Text: "flu", Start: 7, End: 10}},
				3: {{EntityType: "Disease", Text: "copd", Start: 7, End: 11}},
			},
			failOn: map[int]bool{2: true},
		}
		r := New(ex, Options{})
		res, err := r.Run(context.Background(), dataset(
			rec("about flu", ""),
			rec("about failure", ""),
			rec("about copd", ""),
		), testSchema())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if res.Status != StatusCompletedWithErrors {
			t.Errorf("status = %q, want completed_with_errors", res.Status)
		}
		if len(res.Rows) != 3 {
			t.Fatalf("rows = %d, want 3", len(res.Rows))
		}
		if res.Rows[1]["Disease"] != "" {
			t.Errorf("failed record should have blank cells, got %q", res.Rows[1]["Disease"])
		}
		if len(res.Docs) != 2 {
			t.Errorf("docs = %d, want 2 (no doc for failed record)", len(res.Docs))
		}
		// Numbering is not compacted: the failed record 2 leaves a gap.
		if res.Docs[0].Filename != "1.html" || res.Docs[1].Filename != "3.html" {
			t.Errorf("doc filenames = %q, %q, want 1.html and 3.html", res.Docs[0].Filename, res.Docs[1].Filename)
		}
		if got := res.FailedNumbers(); len(got) != 1 || got[0] != 2 {
			t.Errorf("failed numbers = %v, want [2]", got)
		}
		if res.ErrorSummary() != "1 of 3 records failed extraction (records 2)" {
			t.Errorf("summary = %q", res.ErrorSummary())
		}
	})

	t.Run("empty records skipped without extraction call", func(t *testing.T) {
		ex := &scriptedExtractor{
			spans: map[int][]extract.Span{
				1: {{EntityType: "Disease", Text: "flu", Start: 7, End: 10}},
			},
		}
		r := New(ex, Options{})
		res, err := r.Run(context.Background(), dataset(
			rec("", ""),
			rec("about flu", ""),
		), testSchema())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if ex.calls != 1 {
			t.Errorf("extractor calls = %d, want 1 (skip makes no call)", ex.calls)
		}
		if res.Records[0].Outcome != OutcomeSkipped {
			t.Errorf("record 1 outcome = %q, want skipped", res.Records[0].Outcome)
		}
		if res.Status != StatusCompleted {
			t.Errorf("skips should not degrade status, got %q", res.Status)
		}
		if len(res.Docs) != 1 || res.Docs[0].Filename != "2.html" {
			t.Errorf("docs = %+v, want single 2.html", res.Docs)
		}
	})

	t.Run("progress reaches total", func(t *testing.T) {
		ex := &scriptedExtractor{failOn: map[int]bool{1: true, 2: true, 3: true}}
		var seen []int
		var total int
		r := New(ex, Options{Progress: func(p, t int) {
			seen = append(seen, p)
			total = t
		}})
		_, err := r.Run(context.Background(), dataset(
			rec("a", ""), rec("b", ""), rec("c", ""),
		), testSchema())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if len(seen) != 3 || seen[2] != 3 {
			t.Errorf("progress = %v, want monotonic to 3", seen)
		}
		for i := 1; i < len(seen); i++ {
			if seen[i] <= seen[i-1] {
				t.Errorf("progress not monotonic: %v", seen)
			}
		}
	})

	t.Run("invalid schema blocks run", func(t *testing.T) {
		r := New(&scriptedExtractor{}, Options{})
		bad := &schema.Schema{}
		_, err := r.Run(context.Background(), dataset(rec("a", "")), bad)
		if !errors.Is(err, schema.ErrMissingContext) {
			t.Errorf("Run() error = %v, want ErrMissingContext", err)
		}
	})

	t.Run("cancellation stops at record boundary", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		ex := &scriptedExtractor{}
		r := New(ex, Options{Progress: func(p, t int) {
			if p == 1 {
				cancel()
			}
		}})
		res, err := r.Run(ctx, dataset(
			rec("a", ""), rec("b", ""), rec("c", ""),
		), testSchema())
		if err == nil {
			t.Fatal("expected cancellation error")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if res == nil || len(res.Records) != 1 {
			t.Errorf("expected partial result with 1 record")
		}
		if ex.calls != 1 {
			t.Errorf("extractor calls = %d, want 1", ex.calls)
		}
	})

	t.Run("stats computed over rows", func(t *testing.T) {
		ex := &scriptedExtractor{
			spans: map[int][]extract.Span{
				1: {{EntityType: "Disease", Text: "flu", Start: 7, End: 10}},
				2: nil,
			},
		}
		r := New(ex, Options{SkipViz: true})
		res, err := r.Run(context.Background(), dataset(
			rec("about flu", ""), rec("nothing here", ""),
		), testSchema())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.Stats.Total != 2 {
			t.Errorf("stats total = %d", res.Stats.Total)
		}
		if res.Stats.ByName["Disease"] != 1 {
			t.Errorf("Disease stat = %d, want 1", res.Stats.ByName["Disease"])
		}
		if len(res.Docs) != 0 {
			t.Errorf("SkipViz should produce no docs, got %d", len(res.Docs))
		}
	})

	t.Run("prompt description refreshed before run", func(t *testing.T) {
		s := testSchema()
		s.PromptDescription = "stale"
		r := New(&scriptedExtractor{}, Options{SkipViz: true})
		if _, err := r.Run(context.Background(), dataset(rec("a", "")), s); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if s.PromptDescription == "stale" {
			t.Error("prompt description was not refreshed")
		}
	})
}
