package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	return path
}

func newExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestExtractUTF8(t *testing.T) {
	path := writeFile(t, []byte("_id,user,content\n1,alice,café crème\n2,bob,\"a, b\"\n"))

	table, err := newExtractor(t, DefaultOptions()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if table.Encoding != "utf-8" {
		t.Errorf("Expected utf-8, got %s", table.Encoding)
	}
	want := [][]string{
		{"1", "alice", "café crème"},
		{"2", "bob", "a, b"},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"_id", "user", "content"}, table.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractStripsBOM(t *testing.T) {
	path := writeFile(t, append([]byte{0xEF, 0xBB, 0xBF}, []byte("_id,user\n1,alice\n")...))

	table, err := newExtractor(t, DefaultOptions()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if table.Columns[0] != "_id" {
		t.Errorf("BOM should be stripped from the first header, got %q", table.Columns[0])
	}
}

func TestExtractFallsBackToLatin1(t *testing.T) {
	// 0xE9 is é in latin-1 and an invalid utf-8 sequence on its own
	path := writeFile(t, []byte("_id,user,content\n1,alice,caf\xe9\n"))

	table, err := newExtractor(t, DefaultOptions()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if table.Encoding != "latin-1" {
		t.Errorf("Expected latin-1 fallback, got %s", table.Encoding)
	}
	if got, _ := table.Value(0, 2); got != "café" {
		t.Errorf("Expected 'café', got %q", got)
	}
}

func TestExtractUndecodable(t *testing.T) {
	path := writeFile(t, []byte("_id,user\n1,\xff\xfe\n"))

	e := newExtractor(t, Options{Delimiter: ',', Encodings: []string{"utf-8"}})
	_, err := e.Extract(context.Background(), path)
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("Expected ErrUndecodable, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := newExtractor(t, DefaultOptions()).Extract(context.Background(),
		filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestExtractEmptyFile(t *testing.T) {
	path := writeFile(t, nil)
	if _, err := newExtractor(t, DefaultOptions()).Extract(context.Background(), path); err == nil {
		t.Fatal("Expected error for empty file")
	}
}

func TestExtractHeaderOnly(t *testing.T) {
	path := writeFile(t, []byte("_id,user\n"))
	table, err := newExtractor(t, DefaultOptions()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if table.Len() != 0 || len(table.Columns) != 2 {
		t.Errorf("Expected 0 rows and 2 columns, got %d rows and %d columns",
			table.Len(), len(table.Columns))
	}
}

func TestExtractShortAndLongRecords(t *testing.T) {
	path := writeFile(t, []byte("a,b,c\n1,2\n"))
	table, err := newExtractor(t, DefaultOptions()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, ok := table.Value(0, 2); ok {
		t.Error("Padded cell should be null")
	}

	path = writeFile(t, []byte("a,b\n1,2,3\n"))
	if _, err := newExtractor(t, DefaultOptions()).Extract(context.Background(), path); err == nil {
		t.Error("Expected error for record wider than header")
	}
}

func TestExtractDelimiter(t *testing.T) {
	path := writeFile(t, []byte("a;b\n1;2\n"))
	table, err := newExtractor(t, Options{Delimiter: ';', Encodings: []string{"utf-8"}}).
		Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got, _ := table.Value(0, 1); got != "2" {
		t.Errorf("Expected '2', got %q", got)
	}
}

func TestNewUnknownEncoding(t *testing.T) {
	tests := []struct {
		name      string
		encodings []string
		wantError bool
	}{
		{"defaults", []string{"utf-8", "latin-1", "iso-8859-1"}, false},
		{"windows-1252", []string{"windows-1252"}, false},
		{"none", nil, true},
		{"bogus", []string{"klingon-8"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{Encodings: tt.encodings})
			if tt.wantError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestIsNull(t *testing.T) {
	for _, s := range []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"} {
		if !IsNull(s) {
			t.Errorf("Expected %q to be null", s)
		}
	}
	for _, s := range []string{"0", "none at all", "alice", " "} {
		if IsNull(s) {
			t.Errorf("Expected %q to be non-null", s)
		}
	}
}
