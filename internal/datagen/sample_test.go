package datagen

import (
	"bytes"
	"encoding/csv"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pgEdge/pgedge-notes-etl/internal/extract"
	"github.com/pgEdge/pgedge-notes-etl/internal/transform"
)

func TestSampleHeader(t *testing.T) {
	header := SampleHeader()
	if len(header) != 5+MaxKeywords+7 {
		t.Fatalf("Expected %d columns, got %d", 5+MaxKeywords+7, len(header))
	}
	if header[0] != "_id" || header[5] != "keywords[0]" || header[len(header)-1] != "__v" {
		t.Errorf("Unexpected header layout: %v", header)
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("Succès total et triomphant! Succès, victoire éclatante avec brio.")
	want := []string{"succès", "total", "triomphant", "victoire", "éclatante"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestKeywordsLimit(t *testing.T) {
	got := Keywords("alpha bravo charlie delta echoes foxtrot golfer hotel india juliet")
	if len(got) != MaxKeywords {
		t.Errorf("Expected %d keywords, got %d: %v", MaxKeywords, len(got), got)
	}
}

func TestSummarize(t *testing.T) {
	if got := summarize("Première phrase. Deuxième phrase."); got != "Première phrase." {
		t.Errorf("Expected first sentence, got %q", got)
	}
	long := string(bytes.Repeat([]byte("a"), 200))
	if got := summarize(long); len(got) != 120 {
		t.Errorf("Expected 120 characters, got %d", len(got))
	}
}

func TestWriteSampleValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SampleOptions)
	}{
		{"negative rows", func(o *SampleOptions) { o.Rows = -1 }},
		{"percent too high", func(o *SampleOptions) { o.NegativePercent = 101 }},
		{"empty range", func(o *SampleOptions) { o.End = o.Start }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultSampleOptions()
			tt.mutate(&opts)
			var buf bytes.Buffer
			if err := WriteSample(&buf, NewFakerWithSeed(1), opts); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestWriteSampleDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	opts := DefaultSampleOptions()
	if err := WriteSample(&a, NewFakerWithSeed(7), opts); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := WriteSample(&b, NewFakerWithSeed(7), opts); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if a.String() != b.String() {
		t.Error("Same seed produced different exports")
	}
}

func TestWriteSampleNegativeShare(t *testing.T) {
	tests := []struct {
		percent   int
		wantLabel string
	}{
		{0, "positive"},
		{100, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.wantLabel, func(t *testing.T) {
			opts := DefaultSampleOptions()
			opts.NegativePercent = tt.percent

			var buf bytes.Buffer
			if err := WriteSample(&buf, NewFakerWithSeed(5), opts); err != nil {
				t.Fatalf("WriteSample failed: %v", err)
			}

			records, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("Failed to read sample: %v", err)
			}
			labelCol := 5 + MaxKeywords
			for i, rec := range records[1:] {
				if rec[labelCol] != tt.wantLabel {
					t.Errorf("Row %d: expected label %s, got %s", i, tt.wantLabel, rec[labelCol])
				}
			}
		})
	}
}

// TestSampleRoundTrip feeds a generated export through extract and
// transform.
func TestSampleRoundTrip(t *testing.T) {
	opts := DefaultSampleOptions()
	opts.Rows = 60
	opts.NegativePercent = 30

	path := filepath.Join(t.TempDir(), "notes.csv")
	var buf bytes.Buffer
	if err := WriteSample(&buf, NewFakerWithSeed(99), opts); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("Failed to write sample: %v", err)
	}

	ex, err := extract.New(extract.DefaultOptions())
	if err != nil {
		t.Fatalf("extract.New failed: %v", err)
	}
	raw, err := ex.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw.Len() != opts.Rows {
		t.Fatalf("Expected %d rows, got %d", opts.Rows, raw.Len())
	}
	if raw.Encoding != "utf-8" {
		t.Errorf("Expected utf-8, got %s", raw.Encoding)
	}

	schema, err := transform.New(time.UTC).Transform(context.Background(), raw)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if len(schema.Facts) != opts.Rows {
		t.Errorf("Expected %d facts, got %d", opts.Rows, len(schema.Facts))
	}
	if len(schema.Users) == 0 || len(schema.Users) > len(Users) {
		t.Errorf("Unexpected user count %d", len(schema.Users))
	}
	if len(schema.Keywords) == 0 {
		t.Error("Expected keywords to be extracted")
	}
	for _, s := range schema.Sentiments {
		if s.Label != "positive" && s.Label != "negative" {
			t.Errorf("Unexpected label %q", s.Label)
		}
	}
	for i, f := range schema.Facts {
		if f.TimeID == nil || f.UserID == nil || f.SentimentID == nil {
			t.Errorf("Fact %d has an unresolved key", i)
		}
		if f.UpdatedAt == nil || f.UpdatedAt.Before(f.CreatedAt) {
			t.Errorf("Fact %d has updated_at before created_at", i)
		}
		if len(f.NoteID) != 24 {
			t.Errorf("Fact %d has id %q", i, f.NoteID)
		}
	}

	var total int64
	for _, u := range schema.Users {
		total += u.TotalNotes
	}
	if total != int64(opts.Rows) {
		t.Errorf("Expected user totals to sum to %d, got %s", opts.Rows, strconv.FormatInt(total, 10))
	}
}
