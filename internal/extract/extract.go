// Package extract reads the raw student dataset into the staging table.
package extract

import (
	"context"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"

	"studentdw/internal/datasource"
	"studentdw/internal/parser"
	"studentdw/pkg/records"
)

// Extractor opens a source and parses it in one pass.
type Extractor struct {
	Source datasource.Source
	Parser parser.Parser
}

// New returns an Extractor reading src with p.
func New(src datasource.Source, p parser.Parser) *Extractor {
	return &Extractor{Source: src, Parser: p}
}

// Extract returns the full staging table. Errors from the source and the
// parser keep their etlerr classification.
func (e *Extractor) Extract(ctx context.Context) (*records.Table, error) {
	rc, err := e.Source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer rc.Close()

	t, err := e.Parser.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", e.Source.Describe(), err)
	}
	t.Name = "staging"
	log.Printf("extract: rows=%s columns=%v", humanize.Comma(int64(t.Len())), t.Columns)
	return t, nil
}
