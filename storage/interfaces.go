package storage

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/pauldavidfisher/church-fathers-search/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChapterRepository provides operations for the corpus hierarchy:
// authors own works, works own chapters.
type ChapterRepository interface {
	Repository

	// AddAuthor adds an author. For an author with ID=0, generates a new ID
	// from sequence. Sets InsertedAt if not already set.
	// Returns ErrDuplicateKey if the name is already taken.
	AddAuthor(ctx context.Context, author *core.Author) (*core.Author, error)

	// GetAuthor retrieves an author by ID.
	// Returns ErrNotFound if the author doesn't exist.
	GetAuthor(ctx context.Context, id core.ID) (*core.Author, error)

	// GetAuthorByName retrieves an author by exact name.
	// Returns ErrNotFound if no author has that name.
	GetAuthorByName(ctx context.Context, name string) (*core.Author, error)

	// GetOrCreateAuthor finds or creates an author by name.
	// Thread-safe: handles concurrent creation attempts.
	GetOrCreateAuthor(ctx context.Context, author *core.Author) (*core.Author, error)

	// ListAuthors returns every author, ordered by ID.
	ListAuthors(ctx context.Context) ([]*core.Author, error)

	// AddWork adds a work. For a work with ID=0, generates a new ID from
	// sequence. Sets InsertedAt if not already set.
	// Returns ErrDuplicateKey if the URL is already taken.
	AddWork(ctx context.Context, work *core.Work) (*core.Work, error)

	// GetWork retrieves a work by ID.
	// Returns ErrNotFound if the work doesn't exist.
	GetWork(ctx context.Context, id core.ID) (*core.Work, error)

	// GetWorkByURL retrieves a work by its source URL.
	// Returns ErrNotFound if no work has that URL.
	GetWorkByURL(ctx context.Context, url string) (*core.Work, error)

	// GetOrCreateWork finds a work by URL (title within the author when the
	// URL is empty) or creates it. Thread-safe.
	GetOrCreateWork(ctx context.Context, work *core.Work) (*core.Work, error)

	// ListWorksByAuthor returns an author's works, ordered by ID.
	ListWorksByAuthor(ctx context.Context, authorID core.ID) ([]*core.Work, error)

	// AddChapters adds one or more chapters. For chapters with ID=0,
	// derives a content-based ID. Sets InsertedAt if not already set.
	// Returns the chapters with IDs and timestamps populated.
	AddChapters(ctx context.Context, chapters ...*core.Chapter) ([]*core.Chapter, error)

	// GetChapter retrieves a single chapter by ID.
	// Returns ErrNotFound if the chapter doesn't exist.
	GetChapter(ctx context.Context, id core.ID) (*core.Chapter, error)

	// GetChapters retrieves multiple chapters by their IDs.
	// Returns only the chapters that exist (no error for missing chapters).
	GetChapters(ctx context.Context, ids ...core.ID) ([]*core.Chapter, error)

	// GetChaptersByWork retrieves a work's chapters, ordered by ID.
	GetChaptersByWork(ctx context.Context, workID core.ID) ([]*core.Chapter, error)

	// ListChapterIDs returns every chapter ID, ascending.
	ListChapterIDs(ctx context.Context) ([]core.ID, error)

	// RemoveChapters removes chapters by ID, along with their by-work index
	// entries. The document index is cleaned up separately; see
	// IndexRepository.DeleteDocumentIndex.
	// Returns ErrNotFound if any chapter doesn't exist.
	RemoveChapters(ctx context.Context, ids ...core.ID) error

	// Provenance resolves a chapter's work and author in one call.
	// Returns ErrNotFound if any link in the chain is missing.
	Provenance(ctx context.Context, chapterID core.ID) (*core.Author, *core.Work, *core.Chapter, error)

	// CountAuthors, CountWorks and CountChapters report corpus sizes.
	CountAuthors(ctx context.Context) (uint64, error)
	CountWorks(ctx context.Context) (uint64, error)
	CountChapters(ctx context.Context) (uint64, error)
}

// IndexRepository provides operations for the phrase index: postings,
// trigram postings, containment sets, token indexes and per-document
// visibility markers.
type IndexRepository interface {
	Repository

	// IndexDocument tokenizes a chapter's content, generates word grams and
	// character trigrams, and writes all postings for the document.
	// Idempotent: a chapter whose marker is already present is silently
	// skipped and its existing state returned. A partially indexed chapter
	// (interrupted earlier, no marker yet) is completed; re-written
	// postings overwrite byte-identical values, so no posting is ever
	// duplicated. The marker is committed last; readers treat only
	// marker-carrying documents as visible.
	IndexDocument(ctx context.Context, chapter *core.Chapter) (*core.IndexState, error)

	// DeleteDocumentIndex removes every posting of a document along with
	// its token index. The marker is deleted first, so the document
	// disappears from search atomically. Deleting an unindexed document is
	// a no-op.
	DeleteDocumentIndex(ctx context.Context, id core.ID) error

	// State returns a document's index marker, or (nil, nil) if the
	// document has not been (fully) indexed.
	State(ctx context.Context, id core.ID) (*core.IndexState, error)

	// IndexedDocuments returns the set of visible document IDs.
	IndexedDocuments(ctx context.Context) (*roaring64.Bitmap, error)

	// PhrasePostings returns every (document, positions) posting of a
	// normalized phrase, ordered by document ID ascending. Positions are
	// ascending. Unknown phrases yield an empty slice.
	PhrasePostings(ctx context.Context, phrase string) ([]*core.PhrasePosting, error)

	// ContainingDocs returns the set of documents containing the word.
	ContainingDocs(ctx context.Context, word string) (*roaring64.Bitmap, error)

	// TrigramDocs returns the set of documents whose normalized content
	// contains the 3-character gram.
	TrigramDocs(ctx context.Context, gram string) (*roaring64.Bitmap, error)

	// TokenIndex returns a document's token index: every normalized token
	// with the byte offset of its source span, in position order.
	// Returns ErrNotFound if the document has no token index.
	TokenIndex(ctx context.Context, id core.ID) ([]core.TokenEntry, error)

	// Stats aggregates index-wide statistics. Unlike queries, its cost is
	// proportional to index size; it is an administrative operation.
	Stats(ctx context.Context) (*core.Stats, error)
}
