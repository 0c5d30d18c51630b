// Package corpus defines the intake format for patristic texts: one
// Document per chapter, carrying the text plus enough metadata to file it
// under its author and work. Sources stream documents; subpackages provide
// concrete sources (jsonl for scraped corpora, static for the built-in
// sample corpus).
package corpus

import "context"

// Document is one chapter of a work as delivered by a source. The chapter
// identity is derived from Content downstream; everything else is
// provenance used to file the chapter under its author and work.
type Document struct {
	Author         string `json:"author"`
	AuthorIsSaint  bool   `json:"author_is_saint,omitempty"`
	AuthorIsDoctor bool   `json:"author_is_doctor,omitempty"`
	WorkTitle      string `json:"work_title"`
	WorkURL        string `json:"work_url,omitempty"`
	ChapterNumber  uint32 `json:"chapter_number"`
	ChapterTitle   string `json:"chapter_title,omitempty"`
	Content        string `json:"content"`
}

// Source streams documents to a callback, in the manner of fs.WalkDir:
// a record that cannot be read or decoded is delivered as a non-nil err
// with a nil doc, and the callback decides whether the stream continues.
// ForEach returns the first error returned by fn, or the source's own
// failure to advance. Implementations need not be safe for concurrent use.
type Source interface {
	ForEach(ctx context.Context, fn func(doc *Document, err error) error) error
}
