// Package csv parses delimited text into an in-memory records.Table.
//
// The parser is strict: the whole input is materialized, every row must have
// the same width as the header, and any malformed row aborts the parse with an
// etlerr.ParseError. A partially parsed table is never returned.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"studentdw/internal/etlerr"
	"studentdw/pkg/records"
)

// DefaultNAValues are the cell values treated as missing when Options.NAValues
// is nil. They follow the tokens common spreadsheet and dataframe exports
// write for empty cells.
var DefaultNAValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "#N/A", "<NA>"}

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ';' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical keys.
	HeaderMap map[string]string

	// NAValues lists cell values converted to nil. When nil, DefaultNAValues is used.
	NAValues []string
}

// Parser parses delimited input according to Options. It is safe to reuse
// across inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt Options
	na  map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	vals := opt.NAValues
	if vals == nil {
		vals = DefaultNAValues
	}
	na := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		na[v] = struct{}{}
	}
	return &Parser{opt: opt, na: na}
}

// Parse reads the header and every data row from r. The returned table keeps
// the header order in Columns. Cell values stay raw strings; NA tokens
// become nil.
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is checked below so the error can name the expected count.
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &etlerr.ParseError{Msg: "empty input: no header row"}
	}
	if err != nil {
		return nil, wrapCSVErr(err)
	}
	headers, err := normalizeHeaders(h, p.opt)
	if err != nil {
		return nil, err
	}

	t := &records.Table{Columns: headers}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVErr(err)
		}
		if len(row) != len(headers) {
			// encoding/csv tracks physical lines; prefer its position when known.
			ln, _ := cr.FieldPos(0)
			if ln == 0 {
				ln = line
			}
			return nil, &etlerr.ParseError{
				Line: ln,
				Msg:  fmt.Sprintf("incorrect number of fields (expected %d, got %d)", len(headers), len(row)),
			}
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = p.cell(val)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func (p *Parser) cell(s string) any {
	if _, ok := p.na[s]; ok {
		return nil
	}
	if _, ok := p.na[strings.TrimSpace(s)]; ok {
		return nil
	}
	return s
}

// wrapCSVErr converts an encoding/csv error into an etlerr.ParseError,
// keeping its line number.
func wrapCSVErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &etlerr.ParseError{Line: pe.Line, Msg: pe.Err.Error()}
	}
	return &etlerr.ParseError{Msg: err.Error()}
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and simple normalization (NFC, lowercase, spaces to underscores).
// Empty and duplicate names are parse errors.
func normalizeHeaders(h []string, opt Options) ([]string, error) {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := norm.NFC.String(strings.TrimSpace(col))
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		} else {
			c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		if c == "" {
			return nil, &etlerr.ParseError{Line: 1, Msg: fmt.Sprintf("empty header name at column %d", i+1)}
		}
		if prev, dup := seen[c]; dup {
			return nil, &etlerr.ParseError{Line: 1, Msg: fmt.Sprintf("duplicate header %q at columns %d and %d", c, prev+1, i+1)}
		}
		seen[c] = i
		res[i] = c
	}
	return res, nil
}
