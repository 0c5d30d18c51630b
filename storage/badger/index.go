package badger

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/pauldavidfisher/church-fathers-search/analysis"
	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

// indexWriteBatchSize bounds the number of entries written per
// transaction so that large chapters never overflow a single Badger
// transaction.
const indexWriteBatchSize = 1024

// IndexRepository provides Badger-backed storage for the phrase index:
// phrase postings, word containment sets, character trigram sets, token
// indexes and per-document visibility markers.
type IndexRepository struct {
	backend *Backend
}

// NewIndexRepository creates an index repository backed by the provided
// Backend.
func NewIndexRepository(backend *Backend) (*IndexRepository, error) {
	return &IndexRepository{backend: backend}, nil
}

// Compile-time interface check.
var _ storage.IndexRepository = (*IndexRepository)(nil)

// documentPostings holds everything derived from a document's tokens:
// phrase occurrences keyed by phrase, the distinct trigrams of the
// joined normalized text, and the distinct words.
type documentPostings struct {
	tokens   []core.TokenEntry
	phrases  map[string][]uint32
	trigrams map[string]struct{}
	words    map[string]struct{}
}

// derivePostings recomputes a document's postings from its token
// entries. The derivation is deterministic, so indexing and deletion
// arrive at the same key set.
func derivePostings(tokens []core.TokenEntry) *documentPostings {
	words := make([]string, len(tokens))
	for i, entry := range tokens {
		words[i] = entry.Token
	}

	phrases := make(map[string][]uint32)
	for _, gram := range analysis.WordGrams(words, analysis.MinPhraseTokens, analysis.MaxPhraseTokens) {
		phrases[gram.Phrase] = append(phrases[gram.Phrase], gram.Start)
	}

	wordSet := make(map[string]struct{}, len(words))
	for _, word := range words {
		wordSet[word] = struct{}{}
	}

	return &documentPostings{
		tokens:   tokens,
		phrases:  phrases,
		trigrams: analysis.TrigramSet(analysis.JoinTokens(words)),
		words:    wordSet,
	}
}

// indexEntry is a single key/value pair scheduled for a batched write.
type indexEntry struct {
	key []byte
	val []byte
}

// IndexDocument tokenizes a chapter, generates its word grams and
// character trigrams, and writes all postings. The visibility marker is
// committed last in its own transaction: a crash mid-write leaves
// postings without a marker, which readers ignore and a later
// IndexDocument call overwrites with identical values.
//
// Idempotent: a chapter whose marker already exists is skipped and its
// stored state returned.
func (r *IndexRepository) IndexDocument(ctx context.Context, chapter *core.Chapter) (*core.IndexState, error) {
	if err := core.ValidateChapter(chapter); err != nil {
		return nil, err
	}
	if chapter.Id == 0 {
		chapter.Id = deriveChapterID(chapter)
	}

	existing, err := r.State(ctx, chapter.Id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	postings := derivePostings(analysis.Tokenize(chapter.Content))

	entries := make([]indexEntry, 0, 1+len(postings.phrases)+len(postings.trigrams)+len(postings.words))
	entries = append(entries, indexEntry{
		key: makeTokenIndexKey(chapter.Id),
		val: storage.MarshalTokenIndex(postings.tokens),
	})

	for phrase, positions := range postings.phrases {
		entries = append(entries, indexEntry{
			key: makePhraseKey(phrase, chapter.Id),
			val: storage.MarshalPositions(positions),
		})
	}
	for gram := range postings.trigrams {
		entries = append(entries, indexEntry{key: makeTrigramKey(gram, chapter.Id)})
	}
	for word := range postings.words {
		entries = append(entries, indexEntry{key: makeWordKey(word, chapter.Id)})
	}

	if err := r.writeEntries(entries); err != nil {
		return nil, err
	}

	state := &core.IndexState{
		ChapterId: chapter.Id,
		Tokens:    uint32(len(postings.tokens)),
		Phrases:   uint32(len(postings.phrases)),
		Trigrams:  uint32(len(postings.trigrams)),
		Words:     uint32(len(postings.words)),
		IndexedAt: time.Now().UTC(),
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexStateKey(chapter.Id), storage.MarshalIndexState(state)); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return state, nil
}

// writeEntries commits entries in fixed-size batches.
func (r *IndexRepository) writeEntries(entries []indexEntry) error {
	for start := 0; start < len(entries); start += indexWriteBatchSize {
		end := min(start+indexWriteBatchSize, len(entries))
		batch := entries[start:end]

		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, entry := range batch {
				if err := tx.Set(entry.key, entry.val); err != nil {
					return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}

	return nil
}

// deleteKeys removes keys in fixed-size batches.
func (r *IndexRepository) deleteKeys(keys [][]byte) error {
	for start := 0; start < len(keys); start += indexWriteBatchSize {
		end := min(start+indexWriteBatchSize, len(keys))
		batch := keys[start:end]

		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range batch {
				if err := tx.Delete(key); err != nil {
					return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeleteDocumentIndex removes a document's postings and token index.
// The marker goes first, in its own transaction, so the document
// disappears from search before any posting is touched. The key set is
// regenerated from the stored token index. Deleting a document that was
// never indexed is a no-op.
func (r *IndexRepository) DeleteDocumentIndex(ctx context.Context, id core.ID) error {
	var tokens []core.TokenEntry
	haveTokens := false

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTokenIndexKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		haveTokens = true
		return item.Value(func(val []byte) error {
			unmarshaled, err := storage.UnmarshalTokenIndex(val)
			if err != nil {
				return err
			}
			tokens = unmarshaled
			return nil
		})
	}, false)
	if err != nil {
		return err
	}

	state, err := r.State(ctx, id)
	if err != nil {
		return err
	}
	if state == nil && !haveTokens {
		return nil
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeIndexStateKey(id)); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	if !haveTokens {
		return nil
	}

	postings := derivePostings(tokens)

	keys := make([][]byte, 0, 1+len(postings.phrases)+len(postings.trigrams)+len(postings.words))
	for phrase := range postings.phrases {
		keys = append(keys, makePhraseKey(phrase, id))
	}
	for gram := range postings.trigrams {
		keys = append(keys, makeTrigramKey(gram, id))
	}
	for word := range postings.words {
		keys = append(keys, makeWordKey(word, id))
	}
	keys = append(keys, makeTokenIndexKey(id))

	return r.deleteKeys(keys)
}

// State returns a document's index marker, or (nil, nil) when the
// document has not been fully indexed.
func (r *IndexRepository) State(ctx context.Context, id core.ID) (*core.IndexState, error) {
	var state *core.IndexState

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexStateKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		return item.Value(func(val []byte) error {
			unmarshaled, err := storage.UnmarshalIndexState(val)
			if err != nil {
				return err
			}
			state = unmarshaled
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return state, nil
}

// IndexedDocuments returns the set of documents carrying a visibility
// marker.
func (r *IndexRepository) IndexedDocuments(ctx context.Context) (*roaring64.Bitmap, error) {
	docs := roaring64.New()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(indexStatePrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			docs.Add(uint64(chapterIDFromKey(it.Item().Key())))
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// PhrasePostings returns every (document, positions) posting of a
// normalized phrase, ordered by document ID ascending.
func (r *IndexRepository) PhrasePostings(ctx context.Context, phrase string) ([]*core.PhrasePosting, error) {
	var postings []*core.PhrasePosting

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPhraseKey(phrase)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			posting := &core.PhrasePosting{ChapterId: chapterIDFromKey(item.Key())}

			if err := item.Value(func(val []byte) error {
				positions, err := storage.UnmarshalPositions(val)
				if err != nil {
					return err
				}
				posting.Positions = positions
				return nil
			}); err != nil {
				return err
			}

			postings = append(postings, posting)
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return postings, nil
}

// ContainingDocs returns the set of documents containing the word.
func (r *IndexRepository) ContainingDocs(ctx context.Context, word string) (*roaring64.Bitmap, error) {
	return r.scanDocSet(makePartialWordKey(word))
}

// TrigramDocs returns the set of documents whose normalized content
// contains the 3-character gram.
func (r *IndexRepository) TrigramDocs(ctx context.Context, gram string) (*roaring64.Bitmap, error) {
	return r.scanDocSet(makePartialTrigramKey(gram))
}

// scanDocSet collects the document IDs trailing every key under a
// posting prefix.
func (r *IndexRepository) scanDocSet(prefix []byte) (*roaring64.Bitmap, error) {
	docs := roaring64.New()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			docs.Add(uint64(chapterIDFromKey(it.Item().Key())))
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// TokenIndex returns a document's token index in position order.
// Returns ErrNotFound if the document has no token index.
func (r *IndexRepository) TokenIndex(ctx context.Context, id core.ID) ([]core.TokenEntry, error) {
	var tokens []core.TokenEntry
	found := false

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTokenIndexKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		found = true
		return item.Value(func(val []byte) error {
			unmarshaled, err := storage.UnmarshalTokenIndex(val)
			if err != nil {
				return err
			}
			tokens = unmarshaled
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: token index for chapter %d", storage.ErrNotFound, id)
	}

	return tokens, nil
}

// Stats walks the index and aggregates its counters. Corpus counts
// (authors, works, chapters) are owned by the chapter repository and
// left zero here. Cost is proportional to index size.
func (r *IndexRepository) Stats(ctx context.Context) (*core.Stats, error) {
	stats := &core.Stats{}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexStatePrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			stats.IndexedChapters++

			if err := it.Item().Value(func(val []byte) error {
				state, err := storage.UnmarshalIndexState(val)
				if err != nil {
					return err
				}
				stats.Tokens += uint64(state.Tokens)
				return nil
			}); err != nil {
				return err
			}
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(phrasePrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		var prevPhrase []byte
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			stats.PhrasePostings++

			// Strip the prefix and the trailing separator + document ID
			// to recover the phrase portion.
			phrase := key[len(phrasePrefix)+1 : len(key)-9]
			if prevPhrase == nil || !bytes.Equal(phrase, prevPhrase) {
				stats.UniquePhrases++
				prevPhrase = append(prevPhrase[:0], phrase...)
			}
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(trigramPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			stats.TrigramPostings++
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// WithTransaction delegates to the backend.
func (r *IndexRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close is a no-op; the underlying Backend is shared and closed
// separately.
func (r *IndexRepository) Close() error {
	return nil
}
