//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package extract reads a delimited notes export into memory.
package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
)

// ErrUndecodable is returned when no configured encoding can decode the input.
var ErrUndecodable = errors.New("input could not be decoded with any configured encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures the extractor.
type Options struct {
	// Delimiter is the field separator.
	Delimiter rune

	// Encodings are tried in order until one decodes the whole file.
	Encodings []string
}

// DefaultOptions returns the comma-separated, utf-8 first configuration.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		Encodings: []string{"utf-8", "latin-1", "iso-8859-1"},
	}
}

type textEncoding struct {
	name string
	// enc is nil for utf-8, which is validated strictly instead of decoded.
	enc encoding.Encoding
}

// Extractor reads delimited files with encoding fallback.
type Extractor struct {
	delimiter rune
	encodings []textEncoding
}

// New creates an extractor, resolving every encoding name up front.
func New(opts Options) (*Extractor, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if len(opts.Encodings) == 0 {
		return nil, fmt.Errorf("at least one encoding is required")
	}

	encs := make([]textEncoding, 0, len(opts.Encodings))
	for _, name := range opts.Encodings {
		enc, err := lookupEncoding(name)
		if err != nil {
			return nil, err
		}
		encs = append(encs, textEncoding{name: name, enc: enc})
	}

	return &Extractor{delimiter: opts.Delimiter, encodings: encs}, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// Extract reads the file at path. The first record is the header; any
// column layout is accepted.
func (e *Extractor) Extract(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.Info().Str("path", path).Msg("Extracting notes export")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, used, err := e.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	table, err := e.parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	table.Encoding = used

	logging.Info().
		Str("path", path).
		Str("encoding", used).
		Int("rows", table.Len()).
		Int("columns", len(table.Columns)).
		Msg("Data extracted")

	return table, nil
}

// decode tries each encoding in order and returns the first success.
func (e *Extractor) decode(raw []byte) (string, string, error) {
	var errs []error
	for _, te := range e.encodings {
		if te.enc == nil {
			data := bytes.TrimPrefix(raw, utf8BOM)
			if !utf8.Valid(data) {
				logging.Debug().Str("encoding", te.name).Msg("Input is not valid utf-8, trying next encoding")
				errs = append(errs, fmt.Errorf("%s: invalid byte sequence", te.name))
				continue
			}
			return string(data), te.name, nil
		}

		data, err := te.enc.NewDecoder().Bytes(raw)
		if err != nil {
			logging.Debug().Err(err).Str("encoding", te.name).Msg("Decoding failed, trying next encoding")
			errs = append(errs, fmt.Errorf("%s: %w", te.name, err))
			continue
		}
		return string(data), te.name, nil
	}
	return "", "", fmt.Errorf("%w: %w", ErrUndecodable, errors.Join(errs...))
}

func (e *Extractor) parse(text string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = e.delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("no header row")
	}
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: header}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d",
				line, len(rec), len(header))
		}
		// Short records are padded with missing values
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		table.Rows = append(table.Rows, rec)
	}

	return table, nil
}
