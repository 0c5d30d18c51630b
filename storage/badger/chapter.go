package badger

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

// ChapterRepository provides Badger-backed storage for the corpus
// hierarchy: authors, their works, and the chapters within each work.
type ChapterRepository struct {
	backend   *Backend
	authorSeq *badger.Sequence
	workSeq   *badger.Sequence
}

// NewChapterRepository creates a chapter repository backed by the
// provided Backend. Author and work IDs are allocated from persistent
// sequences so they remain unique across restarts.
func NewChapterRepository(backend *Backend) (*ChapterRepository, error) {
	authorSeq, err := backend.GetSequence(authorIDSeq)
	if err != nil {
		return nil, fmt.Errorf("%w: author sequence: %w", storage.ErrTransactionFailed, err)
	}

	workSeq, err := backend.GetSequence(workIDSeq)
	if err != nil {
		authorSeq.Release()
		return nil, fmt.Errorf("%w: work sequence: %w", storage.ErrTransactionFailed, err)
	}

	return &ChapterRepository{
		backend:   backend,
		authorSeq: authorSeq,
		workSeq:   workSeq,
	}, nil
}

// Compile-time interface check.
var _ storage.ChapterRepository = (*ChapterRepository)(nil)

// nextSequenceID returns the next ID from seq, skipping 0 so that the
// zero value stays available as the "unset" sentinel.
func nextSequenceID(seq *badger.Sequence) (core.ID, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		n, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(n), nil
}

// AddAuthor stores a new author. The author name acts as a unique key:
// adding a second author with the same name fails with ErrDuplicateKey.
func (r *ChapterRepository) AddAuthor(ctx context.Context, author *core.Author) (*core.Author, error) {
	if err := core.ValidateAuthor(author); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nameKey := makeAuthorNameKey(author.Name)
		if _, err := tx.Get(nameKey); err == nil {
			return fmt.Errorf("%w: author %q", storage.ErrDuplicateKey, author.Name)
		} else if err != badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		if author.Id == 0 {
			id, err := nextSequenceID(r.authorSeq)
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
			author.Id = id
		}
		if author.InsertedAt.IsZero() {
			author.InsertedAt = time.Now().UTC()
		}

		if err := tx.Set(makeAuthorKey(author.Id), storage.MarshalAuthor(author)); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		if err := tx.Set(nameKey, storage.MarshalID(author.Id)); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return author, nil
}

// GetAuthor retrieves an author by ID. Returns ErrNotFound if no author
// with that ID exists.
func (r *ChapterRepository) GetAuthor(ctx context.Context, id core.ID) (*core.Author, error) {
	var author *core.Author

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		author, err = readAuthor(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: author %d", storage.ErrNotFound, id)
	}

	return author, nil
}

// GetAuthorByName retrieves an author by exact name. Returns
// ErrNotFound if no author with that name exists.
func (r *ChapterRepository) GetAuthorByName(ctx context.Context, name string) (*core.Author, error) {
	var author *core.Author

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeAuthorNameKey(name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			unmarshaled, err := storage.UnmarshalID(val)
			if err != nil {
				return err
			}
			id = unmarshaled
			return nil
		}); err != nil {
			return err
		}

		author, err = readAuthor(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: author %q", storage.ErrNotFound, name)
	}

	return author, nil
}

// GetOrCreateAuthor returns the existing author with the given name, or
// creates one. Safe under concurrent callers: a losing racer re-reads
// the winner's record.
func (r *ChapterRepository) GetOrCreateAuthor(ctx context.Context, author *core.Author) (*core.Author, error) {
	if err := core.ValidateAuthor(author); err != nil {
		return nil, err
	}

	existing, err := r.GetAuthorByName(ctx, author.Name)
	if err == nil {
		return existing, nil
	}

	created, err := r.AddAuthor(ctx, author)
	if err == nil {
		return created, nil
	}

	// Lost a race with a concurrent create. The record exists now.
	existing, retryErr := r.GetAuthorByName(ctx, author.Name)
	if retryErr == nil {
		return existing, nil
	}

	return nil, err
}

// ListAuthors returns all authors ordered by ID.
func (r *ChapterRepository) ListAuthors(ctx context.Context) ([]*core.Author, error) {
	var authors []*core.Author

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(authorPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var author core.Author
			if err := it.Item().Value(func(val []byte) error {
				unmarshaled, err := storage.UnmarshalAuthor(val)
				if err != nil {
					return err
				}
				author = *unmarshaled
				return nil
			}); err != nil {
				return err
			}
			authors = append(authors, &author)
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Record keys are decimal strings, so iteration order is
	// lexicographic. Re-sort numerically.
	slices.SortFunc(authors, func(a, b *core.Author) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		default:
			return 0
		}
	})

	return authors, nil
}

// AddWork stores a new work under an author. Works with a source URL
// are unique by URL; works without one are unique by (author, title).
func (r *ChapterRepository) AddWork(ctx context.Context, work *core.Work) (*core.Work, error) {
	if err := core.ValidateWork(work); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var indexKey []byte
		if work.URL != "" {
			indexKey = makeWorkURLKey(work.URL)
		} else {
			indexKey = makeWorkTitleKey(work.AuthorId, work.Title)
		}

		if _, err := tx.Get(indexKey); err == nil {
			return fmt.Errorf("%w: work %q", storage.ErrDuplicateKey, work.Title)
		} else if err != badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		if work.Id == 0 {
			id, err := nextSequenceID(r.workSeq)
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
			work.Id = id
		}
		if work.InsertedAt.IsZero() {
			work.InsertedAt = time.Now().UTC()
		}

		if err := tx.Set(makeWorkKey(work.Id), storage.MarshalWork(work)); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		if err := tx.Set(indexKey, storage.MarshalID(work.Id)); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return work, nil
}

// GetWork retrieves a work by ID. Returns ErrNotFound if no work with
// that ID exists.
func (r *ChapterRepository) GetWork(ctx context.Context, id core.ID) (*core.Work, error) {
	var work *core.Work

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		work, err = readWork(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if work == nil {
		return nil, fmt.Errorf("%w: work %d", storage.ErrNotFound, id)
	}

	return work, nil
}

// GetWorkByURL retrieves a work by its source URL. Returns ErrNotFound
// if no work with that URL exists.
func (r *ChapterRepository) GetWorkByURL(ctx context.Context, url string) (*core.Work, error) {
	var work *core.Work

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeWorkURLKey(url))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			unmarshaled, err := storage.UnmarshalID(val)
			if err != nil {
				return err
			}
			id = unmarshaled
			return nil
		}); err != nil {
			return err
		}

		work, err = readWork(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if work == nil {
		return nil, fmt.Errorf("%w: work %q", storage.ErrNotFound, url)
	}

	return work, nil
}

// GetOrCreateWork returns the existing work matching the given work's
// identity (URL when set, otherwise author and title), or creates one.
func (r *ChapterRepository) GetOrCreateWork(ctx context.Context, work *core.Work) (*core.Work, error) {
	if err := core.ValidateWork(work); err != nil {
		return nil, err
	}

	existing, err := r.findWork(ctx, work)
	if err == nil {
		return existing, nil
	}

	created, err := r.AddWork(ctx, work)
	if err == nil {
		return created, nil
	}

	existing, retryErr := r.findWork(ctx, work)
	if retryErr == nil {
		return existing, nil
	}

	return nil, err
}

// findWork looks a work up by its identity key.
func (r *ChapterRepository) findWork(ctx context.Context, work *core.Work) (*core.Work, error) {
	if work.URL != "" {
		return r.GetWorkByURL(ctx, work.URL)
	}

	var found *core.Work

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeWorkTitleKey(work.AuthorId, work.Title))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			unmarshaled, err := storage.UnmarshalID(val)
			if err != nil {
				return err
			}
			id = unmarshaled
			return nil
		}); err != nil {
			return err
		}

		found, err = readWork(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: work %q", storage.ErrNotFound, work.Title)
	}

	return found, nil
}

// ListWorksByAuthor returns all works belonging to an author, ordered
// by ID.
func (r *ChapterRepository) ListWorksByAuthor(ctx context.Context, authorID core.ID) ([]*core.Work, error) {
	var works []*core.Work

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(workPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var work core.Work
			if err := it.Item().Value(func(val []byte) error {
				unmarshaled, err := storage.UnmarshalWork(val)
				if err != nil {
					return err
				}
				work = *unmarshaled
				return nil
			}); err != nil {
				return err
			}
			if work.AuthorId == authorID {
				works = append(works, &work)
			}
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(works, func(a, b *core.Work) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		default:
			return 0
		}
	})

	return works, nil
}

// AddChapters stores one or more chapters. A chapter without an ID gets
// a content-derived one, so re-adding the same chapter overwrites its
// own record instead of duplicating it.
func (r *ChapterRepository) AddChapters(ctx context.Context, chapters ...*core.Chapter) ([]*core.Chapter, error) {
	for _, chapter := range chapters {
		if err := core.ValidateChapter(chapter); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chapter := range chapters {
			if chapter.Id == 0 {
				chapter.Id = deriveChapterID(chapter)
			}
			if chapter.InsertedAt.IsZero() {
				chapter.InsertedAt = time.Now().UTC()
			}

			if err := tx.Set(makeChapterKey(chapter.Id), storage.MarshalChapter(chapter)); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
			if err := tx.Set(makeChapterWorkKey(chapter.WorkId, chapter.Id), nil); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return chapters, nil
}

// deriveChapterID hashes the chapter's identity and content into a
// stable ID.
func deriveChapterID(chapter *core.Chapter) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d:%d:%s", chapter.WorkId, chapter.Number, chapter.Content))
}

// GetChapter retrieves a chapter by ID. Returns ErrNotFound if no
// chapter with that ID exists.
func (r *ChapterRepository) GetChapter(ctx context.Context, id core.ID) (*core.Chapter, error) {
	var chapter *core.Chapter

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		chapter, err = readChapter(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, fmt.Errorf("%w: chapter %d", storage.ErrNotFound, id)
	}

	return chapter, nil
}

// GetChapters retrieves chapters by ID. Missing chapters are skipped
// rather than treated as errors, so the result may be shorter than the
// input.
func (r *ChapterRepository) GetChapters(ctx context.Context, ids ...core.ID) ([]*core.Chapter, error) {
	chapters := make([]*core.Chapter, 0, len(ids))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chapter, err := readChapter(tx, id)
			if err != nil {
				return err
			}
			if chapter != nil {
				chapters = append(chapters, chapter)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return chapters, nil
}

// GetChaptersByWork returns all chapters of a work.
func (r *ChapterRepository) GetChaptersByWork(ctx context.Context, workID core.ID) ([]*core.Chapter, error) {
	var ids []core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialChapterWorkKey(workID)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, chapterIDFromKey(it.Item().Key()))
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return r.GetChapters(ctx, ids...)
}

// ListChapterIDs returns the IDs of every stored chapter, sorted
// ascending. Used by reindexing to walk the corpus without loading
// chapter contents.
func (r *ChapterRepository) ListChapterIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chapterPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			raw := string(key[len(chapterPrefix)+1:])
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: chapter key %q: %w", storage.ErrTruncatedData, key, err)
			}
			ids = append(ids, core.ID(id))
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)

	return ids, nil
}

// RemoveChapters deletes chapters and their by-work index entries.
// Returns ErrNotFound if any of the chapters does not exist. Search
// postings are owned by the index repository and must be deleted
// separately.
func (r *ChapterRepository) RemoveChapters(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chapter, err := readChapter(tx, id)
			if err != nil {
				return err
			}
			if chapter == nil {
				return fmt.Errorf("%w: chapter %d", storage.ErrNotFound, id)
			}

			if err := tx.Delete(makeChapterWorkKey(chapter.WorkId, chapter.Id)); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
			if err := tx.Delete(makeChapterKey(id)); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
		}

		return tx.Commit()
	}, true)
}

// Provenance resolves the full attribution chain for a chapter. Returns
// ErrNotFound if the chapter, its work, or the work's author is
// missing.
func (r *ChapterRepository) Provenance(ctx context.Context, chapterID core.ID) (*core.Author, *core.Work, *core.Chapter, error) {
	var (
		author  *core.Author
		work    *core.Work
		chapter *core.Chapter
	)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error

		chapter, err = readChapter(tx, chapterID)
		if err != nil {
			return err
		}
		if chapter == nil {
			return fmt.Errorf("%w: chapter %d", storage.ErrNotFound, chapterID)
		}

		work, err = readWork(tx, chapter.WorkId)
		if err != nil {
			return err
		}
		if work == nil {
			return fmt.Errorf("%w: work %d for chapter %d", storage.ErrNotFound, chapter.WorkId, chapterID)
		}

		author, err = readAuthor(tx, work.AuthorId)
		if err != nil {
			return err
		}
		if author == nil {
			return fmt.Errorf("%w: author %d for work %d", storage.ErrNotFound, work.AuthorId, work.Id)
		}

		return nil
	}, false)
	if err != nil {
		return nil, nil, nil, err
	}

	return author, work, chapter, nil
}

// CountAuthors returns the number of stored authors.
func (r *ChapterRepository) CountAuthors(ctx context.Context) (uint64, error) {
	return r.countPrefix([]byte(authorPrefix + ":"))
}

// CountWorks returns the number of stored works.
func (r *ChapterRepository) CountWorks(ctx context.Context) (uint64, error) {
	return r.countPrefix([]byte(workPrefix + ":"))
}

// CountChapters returns the number of stored chapters.
func (r *ChapterRepository) CountChapters(ctx context.Context) (uint64, error) {
	return r.countPrefix([]byte(chapterPrefix + ":"))
}

func (r *ChapterRepository) countPrefix(prefix []byte) (uint64, error) {
	var count uint64

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}

		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// WithTransaction delegates to the backend.
func (r *ChapterRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close releases the ID sequences. The underlying Backend is shared and
// must be closed separately.
func (r *ChapterRepository) Close() error {
	if err := r.authorSeq.Release(); err != nil {
		return fmt.Errorf("%w: author sequence: %w", storage.ErrTransactionFailed, err)
	}
	if err := r.workSeq.Release(); err != nil {
		return fmt.Errorf("%w: work sequence: %w", storage.ErrTransactionFailed, err)
	}
	return nil
}

// readAuthor reads an author record inside a transaction. Returns
// (nil, nil) when the record does not exist.
func readAuthor(tx *badger.Txn, id core.ID) (*core.Author, error) {
	item, err := tx.Get(makeAuthorKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}

	var author *core.Author
	if err := item.Value(func(val []byte) error {
		unmarshaled, err := storage.UnmarshalAuthor(val)
		if err != nil {
			return err
		}
		author = unmarshaled
		return nil
	}); err != nil {
		return nil, err
	}

	return author, nil
}

// readWork reads a work record inside a transaction. Returns (nil, nil)
// when the record does not exist.
func readWork(tx *badger.Txn, id core.ID) (*core.Work, error) {
	item, err := tx.Get(makeWorkKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}

	var work *core.Work
	if err := item.Value(func(val []byte) error {
		unmarshaled, err := storage.UnmarshalWork(val)
		if err != nil {
			return err
		}
		work = unmarshaled
		return nil
	}); err != nil {
		return nil, err
	}

	return work, nil
}

// readChapter reads a chapter record inside a transaction. Returns
// (nil, nil) when the record does not exist.
func readChapter(tx *badger.Txn, id core.ID) (*core.Chapter, error) {
	item, err := tx.Get(makeChapterKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}

	var chapter *core.Chapter
	if err := item.Value(func(val []byte) error {
		unmarshaled, err := storage.UnmarshalChapter(val)
		if err != nil {
			return err
		}
		chapter = unmarshaled
		return nil
	}); err != nil {
		return nil, err
	}

	return chapter, nil
}
