package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractionText(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		abstract string
		want     string
	}{
		{
			name:     "both present",
			title:    "Test Title",
			abstract: "Test Abstract",
			want:     "Title: Test Title\n\nAbstract: Test Abstract",
		},
		{
			name:  "title only",
			title: "Test Title",
			want:  "Title: Test Title",
		},
		{
			name:     "abstract only",
			abstract: "Test Abstract",
			want:     "Abstract: Test Abstract",
		},
		{
			name: "both empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{Title: tt.title, Abstract: tt.abstract}
			if got := rec.ExtractionText(); got != tt.want {
				t.Errorf("ExtractionText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		data := "title,abstract\n\"Test Title\",\"Test Abstract\"\n\"Another Title\",\"Another Abstract\"\n"
		ds, err := ParseCSV(strings.NewReader(data))
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if len(ds.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(ds.Records))
		}
		if ds.Records[0].Title != "Test Title" {
			t.Errorf("title = %q, want %q", ds.Records[0].Title, "Test Title")
		}
		if ds.Records[1].Abstract != "Another Abstract" {
			t.Errorf("abstract = %q, want %q", ds.Records[1].Abstract, "Another Abstract")
		}
	})

	t.Run("case insensitive headers", func(t *testing.T) {
		data := "Title,Abstract\nT1,A1\n"
		ds, err := ParseCSV(strings.NewReader(data))
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if ds.Columns[0] != "title" || ds.Columns[1] != "abstract" {
			t.Errorf("columns = %v, want normalized lowercase", ds.Columns)
		}
		if ds.Records[0].Title != "T1" {
			t.Errorf("title = %q, want T1", ds.Records[0].Title)
		}
	})

	t.Run("missing required columns", func(t *testing.T) {
		data := "title,other\nT1,O1\n"
		_, err := ParseCSV(strings.NewReader(data))
		if !errors.Is(err, ErrMissingColumns) {
			t.Errorf("ParseCSV() error = %v, want ErrMissingColumns", err)
		}
	})

	t.Run("extra columns carried through", func(t *testing.T) {
		data := "title,abstract,year,doi\nT1,A1,2021,10.1000/xyz\n"
		ds, err := ParseCSV(strings.NewReader(data))
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if got := ds.Records[0].Field("doi"); got != "10.1000/xyz" {
			t.Errorf("doi = %q, want 10.1000/xyz", got)
		}
	})

	t.Run("short row padded", func(t *testing.T) {
		data := "title,abstract,year\nT1,A1\n"
		ds, err := ParseCSV(strings.NewReader(data))
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if got := ds.Records[0].Field("year"); got != "" {
			t.Errorf("year = %q, want empty", got)
		}
	})
}

const sampleRIS = `TY  - JOUR
TI  - Metformin and glycemic control in type 2 diabetes
AU  - Smith, Jane
AU  - Doe, John
PY  - 2021
JO  - Journal of Endocrinology
DO  - 10.1000/jend.2021.001
KW  - diabetes
KW  - metformin
AB  - This randomized controlled trial evaluated metformin
  versus placebo for glycemic control.
ER  -
TY  - JOUR
TI  - A second study
N2  - Abstract held in N2.
ER  -
`

func TestParseRIS(t *testing.T) {
	ds, err := ParseRIS(strings.NewReader(sampleRIS))
	if err != nil {
		t.Fatalf("ParseRIS() error = %v", err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ds.Records))
	}

	first := ds.Records[0]
	if first.Title != "Metformin and glycemic control in type 2 diabetes" {
		t.Errorf("title = %q", first.Title)
	}
	if want := "This randomized controlled trial evaluated metformin versus placebo for glycemic control."; first.Abstract != want {
		t.Errorf("abstract = %q, want %q", first.Abstract, want)
	}
	if got := first.Field("authors"); got != "Smith, Jane; Doe, John" {
		t.Errorf("authors = %q", got)
	}
	if got := first.Field("keywords"); got != "diabetes; metformin" {
		t.Errorf("keywords = %q", got)
	}
	if got := first.Field("year"); got != "2021" {
		t.Errorf("year = %q", got)
	}
	if got := first.Field("journal"); got != "Journal of Endocrinology" {
		t.Errorf("journal = %q", got)
	}
	if got := first.Field("type"); got != "JOUR" {
		t.Errorf("type = %q", got)
	}

	second := ds.Records[1]
	if second.Abstract != "Abstract held in N2." {
		t.Errorf("N2 abstract = %q", second.Abstract)
	}
}

func TestParseRISEmpty(t *testing.T) {
	_, err := ParseRIS(strings.NewReader("\n\n"))
	if err == nil {
		t.Error("expected error for empty RIS input")
	}
}
