// Package jsonl reads corpus documents from JSON Lines streams, the
// format the scraper emits: one JSON-encoded corpus.Document per line.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pauldavidfisher/church-fathers-search/corpus"
)

// maxLineBytes bounds a single record. Chapters are scraped web pages,
// well under a megabyte each.
const maxLineBytes = 1 << 20

// Source streams documents from a JSON Lines reader. A Source is
// single-use: it consumes the reader.
type Source struct {
	r io.Reader
}

var _ corpus.Source = (*Source)(nil)

// NewSource returns a source reading one JSON document per line from r.
func NewSource(r io.Reader) *Source {
	return &Source{r: r}
}

// ForEach decodes the stream line by line. Blank lines are skipped. A line
// that fails to decode is delivered to fn as an error naming the line
// number; the stream continues unless fn returns an error.
func (s *Source) ForEach(ctx context.Context, fn func(doc *corpus.Document, err error) error) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		doc := &corpus.Document{}
		if err := json.Unmarshal(raw, doc); err != nil {
			if err := fn(nil, fmt.Errorf("line %d: %w", line, err)); err != nil {
				return err
			}
			continue
		}
		if err := fn(doc, nil); err != nil {
			return err
		}
	}
	return scanner.Err()
}
