package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs, so re-seeding the
// same corpus assigns the same chapter IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Author represents a writer in the corpus.
type Author struct {
	Id         ID
	Name       string
	IsSaint    bool
	IsDoctor   bool // Doctor of the Church
	InsertedAt time.Time
}

// Work represents a single text (treatise, epistle, homily collection)
// belonging to an author. Chapters hang off works.
type Work struct {
	Id         ID
	AuthorId   ID
	Title      string
	URL        string // source location; unique when present
	InsertedAt time.Time
}

// Chapter is the unit of indexing and retrieval. Content holds the raw
// scraped text; normalization is applied on index and on query, never
// destructively to the stored content.
type Chapter struct {
	Id         ID
	WorkId     ID
	Number     uint32
	Title      string
	Content    string
	InsertedAt time.Time
}

// TokenEntry is one normalized token of a chapter plus the byte offset of
// its source span in the raw content. The per-chapter token index maps
// token positions back to text for context extraction.
type TokenEntry struct {
	Token  string
	Offset uint32
}

// IndexState is the per-chapter indexed marker. Its presence means the
// chapter's postings are complete and visible to readers. The counts feed
// idempotence checks and corpus statistics.
type IndexState struct {
	ChapterId ID
	Tokens    uint32 // tokens in the chapter
	Phrases   uint32 // phrase postings written
	Trigrams  uint32 // trigram postings written
	Words     uint32 // distinct words
	IndexedAt time.Time
}

// PhrasePosting holds every position at which a phrase occurs in one
// chapter. Positions are token positions, ascending.
type PhrasePosting struct {
	ChapterId ID
	Positions []uint32
}

// SearchMethod tags a result with the strategy that produced it.
type SearchMethod string

const (
	MethodExact     SearchMethod = "exact"
	MethodProximity SearchMethod = "proximity"
	MethodFuzzy     SearchMethod = "fuzzy"
	MethodBoolean   SearchMethod = "boolean"

	// MethodCombined dispatches every applicable method; individual
	// results carry the concrete method that produced them.
	MethodCombined SearchMethod = "combined"
)

// SearchResult is one assembled hit: where the match sits, the matched
// phrase, a raw-text excerpt around it, and provenance resolved from the
// chapter's work and author. Method-specific fields are zero when not
// applicable.
type SearchResult struct {
	ChapterId ID
	Position  uint32 // token position of the match start
	Length    uint32 // match extent in tokens
	Phrase    string // matched phrase, normalized form
	Context   string // raw-text excerpt around the match
	Method    SearchMethod

	Similarity float64 // fuzzy: pinned sequence-similarity score
	Span       uint32  // proximity: tightest co-occurrence window

	Author       string
	WorkTitle    string
	WorkURL      string
	ChapterTitle string
}

// Stats summarizes the corpus and its index.
type Stats struct {
	Authors         uint64
	Works           uint64
	Chapters        uint64
	IndexedChapters uint64
	Tokens          uint64
	UniquePhrases   uint64
	PhrasePostings  uint64
	TrigramPostings uint64
}
