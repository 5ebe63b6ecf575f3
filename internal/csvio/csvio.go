// Package csvio frames tables as CSV byte streams for the reshaping
// pipeline. It owns quoting/escaping (via encoding/csv), header-row
// sanity checks, and output charset re-encoding.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/reshape-labs/reshape/pkg/rules"
	"github.com/reshape-labs/reshape/pkg/table"
)

// Options configures CSV framing.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Read parses a CSV stream into a table. The first record is the header
// row; blank or duplicate header names are rejected before the data
// reaches the engine. Records may vary in width.
func Read(r io.Reader, opts Options) (table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return table.Table{}, fmt.Errorf("input contains no header row")
	}

	headers := records[0]
	if err := checkHeaders(headers); err != nil {
		return table.Table{}, err
	}
	return table.New(headers, records[1:]), nil
}

// ReadFile parses a CSV file into a table.
func ReadFile(path string, opts Options) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := Read(f, opts)
	if err != nil {
		return table.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Write frames a table as CSV. Rows shorter than the header row are
// padded with empty cells so every record has the header width.
func Write(w io.Writer, t table.Table, opts Options) error {
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}

	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	width := len(t.Headers)
	record := make([]string, width)
	for _, row := range t.Rows {
		for i := 0; i < width; i++ {
			record[i] = table.Cell(row, i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile frames a table as CSV into a file, re-encoded to the named
// charset. An empty name writes UTF-8 as-is.
func WriteFile(path string, t table.Table, opts Options, encodingName string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output %s: %w", path, err)
	}

	ew, err := Encoder(f, encodingName)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := Write(ew, t, opts); err != nil {
		_ = ew.Close()
		_ = f.Close()
		return err
	}
	if err := ew.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return f.Close()
}

// Encoder wraps w so that UTF-8 bytes written to it come out in the
// named charset. The name must be one of rules.SupportedEncodings;
// UTF-8 passes bytes through unchanged.
func Encoder(w io.Writer, name string) (io.WriteCloser, error) {
	if name == "" {
		return nopCloser{w}, nil
	}
	canon, ok := rules.NormalizeEncoding(name)
	if !ok {
		return nil, fmt.Errorf("output encoding %q is not supported (supported: %s)",
			name, strings.Join(rules.SupportedEncodings, ", "))
	}

	var enc encoding.Encoding
	switch canon {
	case "utf-8":
		return nopCloser{w}, nil
	case "shift_jis":
		enc = japanese.ShiftJIS
	case "euc-jp":
		enc = japanese.EUCJP
	case "iso-8859-1":
		enc = charmap.ISO8859_1
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

func checkHeaders(headers []string) error {
	var blank []string
	var dups []string
	seen := make(map[string]struct{}, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			blank = append(blank, fmt.Sprintf("column %d", i+1))
			continue
		}
		if _, ok := seen[h]; ok {
			dups = append(dups, h)
			continue
		}
		seen[h] = struct{}{}
	}
	if len(blank) > 0 {
		return fmt.Errorf("header row has blank name(s) at %s", strings.Join(blank, ", "))
	}
	if len(dups) > 0 {
		return fmt.Errorf("header row has duplicate name(s): %s", strings.Join(dups, ", "))
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
