package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

func TestIndexDocumentBasics(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := chapterRepo.AddChapters(ctx, &core.Chapter{
		WorkId:  1,
		Number:  1,
		Content: "The fear of the LORD is the beginning of wisdom.",
	})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}
	chapter := added[0]

	state, err := indexRepo.IndexDocument(ctx, chapter)
	if err != nil {
		t.Fatalf("Failed to index document: %v", err)
	}

	// 10 tokens, 7 distinct words, 45 distinct word grams of lengths 2-10
	if state.Tokens != 10 {
		t.Fatalf("Expected 10 tokens, got %d", state.Tokens)
	}
	if state.Words != 7 {
		t.Fatalf("Expected 7 distinct words, got %d", state.Words)
	}
	if state.Phrases != 45 {
		t.Fatalf("Expected 45 distinct phrases, got %d", state.Phrases)
	}
	if state.Trigrams == 0 {
		t.Fatal("Expected non-zero trigram count")
	}

	// The marker is visible
	stored, err := indexRepo.State(ctx, chapter.Id)
	if err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	if stored == nil {
		t.Fatal("Expected stored index state")
	}
	if stored.ChapterId != chapter.Id {
		t.Fatalf("Expected chapter %d, got %d", chapter.Id, stored.ChapterId)
	}

	docs, err := indexRepo.IndexedDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to read indexed documents: %v", err)
	}
	if !docs.Contains(uint64(chapter.Id)) {
		t.Fatal("Expected chapter in indexed set")
	}
}

func TestPhrasePostings(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := chapterRepo.AddChapters(ctx, &core.Chapter{
		WorkId:  1,
		Number:  1,
		Content: "The fear of the LORD is the beginning of wisdom.",
	})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}
	chapter := added[0]

	if _, err := indexRepo.IndexDocument(ctx, chapter); err != nil {
		t.Fatalf("Failed to index document: %v", err)
	}

	// "fear of" starts at token position 1
	postings, err := indexRepo.PhrasePostings(ctx, "fear of")
	if err != nil {
		t.Fatalf("Failed to read postings: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("Expected 1 posting, got %d", len(postings))
	}
	if postings[0].ChapterId != chapter.Id {
		t.Fatalf("Expected chapter %d, got %d", chapter.Id, postings[0].ChapterId)
	}
	if len(postings[0].Positions) != 1 || postings[0].Positions[0] != 1 {
		t.Fatalf("Expected positions [1], got %v", postings[0].Positions)
	}

	// The full 5-gram starts at position 0
	postings, err = indexRepo.PhrasePostings(ctx, "the fear of the lord")
	if err != nil {
		t.Fatalf("Failed to read postings: %v", err)
	}
	if len(postings) != 1 || postings[0].Positions[0] != 0 {
		t.Fatalf("Expected the 5-gram at position 0, got %v", postings)
	}

	// Unknown phrases yield no postings
	postings, err = indexRepo.PhrasePostings(ctx, "grace and peace")
	if err != nil {
		t.Fatalf("Failed to read postings: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("Expected 0 postings, got %d", len(postings))
	}

	// Word containment
	docs, err := indexRepo.ContainingDocs(ctx, "wisdom")
	if err != nil {
		t.Fatalf("Failed to read containing docs: %v", err)
	}
	if !docs.Contains(uint64(chapter.Id)) {
		t.Fatal("Expected chapter to contain 'wisdom'")
	}

	docs, err = indexRepo.ContainingDocs(ctx, "grace")
	if err != nil {
		t.Fatalf("Failed to read containing docs: %v", err)
	}
	if !docs.IsEmpty() {
		t.Fatalf("Expected no documents for 'grace', got %d", docs.GetCardinality())
	}

	// Trigram containment
	docs, err = indexRepo.TrigramDocs(ctx, "wis")
	if err != nil {
		t.Fatalf("Failed to read trigram docs: %v", err)
	}
	if !docs.Contains(uint64(chapter.Id)) {
		t.Fatal("Expected chapter to contain trigram 'wis'")
	}
}

func TestPhrasePostings_MultipleOccurrences(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := chapterRepo.AddChapters(ctx, &core.Chapter{
		WorkId:  1,
		Number:  1,
		Content: "The Holy Spirit guides. The Holy Spirit comforts.",
	})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}

	if _, err := indexRepo.IndexDocument(ctx, added[0]); err != nil {
		t.Fatalf("Failed to index document: %v", err)
	}

	postings, err := indexRepo.PhrasePostings(ctx, "holy spirit")
	if err != nil {
		t.Fatalf("Failed to read postings: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("Expected 1 posting, got %d", len(postings))
	}
	positions := postings[0].Positions
	if len(positions) != 2 || positions[0] != 1 || positions[1] != 5 {
		t.Fatalf("Expected positions [1 5], got %v", positions)
	}
}

func TestIndexDocument_Idempotent(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := chapterRepo.AddChapters(ctx, &core.Chapter{
		WorkId:  1,
		Number:  1,
		Content: "Pray without ceasing. In every thing give thanks.",
	})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}
	chapter := added[0]

	first, err := indexRepo.IndexDocument(ctx, chapter)
	if err != nil {
		t.Fatalf("Failed to index document: %v", err)
	}

	second, err := indexRepo.IndexDocument(ctx, chapter)
	if err != nil {
		t.Fatalf("Failed to re-index document: %v", err)
	}

	if first.Tokens != second.Tokens || first.Phrases != second.Phrases ||
		first.Trigrams != second.Trigrams || first.Words != second.Words {
		t.Fatalf("Expected identical state, got %+v and %+v", first, second)
	}

	// Postings were not duplicated
	postings, err := indexRepo.PhrasePostings(ctx, "without ceasing")
	if err != nil {
		t.Fatalf("Failed to read postings: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("Expected 1 posting after re-index, got %d", len(postings))
	}
	if len(postings[0].Positions) != 1 {
		t.Fatalf("Expected 1 position after re-index, got %v", postings[0].Positions)
	}
}

func TestDeleteDocumentIndex(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := chapterRepo.AddChapters(ctx, &core.Chapter{
		WorkId:  1,
		Number:  1,
		Content: "Charity suffereth long, and is kind.",
	})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}
	chapter := added[0]

	if _, err := indexRepo.IndexDocument(ctx, chapter); err != nil {
		t.Fatalf("Failed to index document: %v", err)
	}

	if err := indexRepo.DeleteDocumentIndex(ctx, chapter.Id); err != nil {
		t.Fatalf("Failed to delete document index: %v", err)
	}

	// Marker is gone
	state, err := indexRepo.State(ctx, chapter.Id)
	if err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	if state != nil {
		t.Fatal("Expected nil state after delete")
	}

	docs, err := indexRepo.IndexedDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to read indexed documents: %v", err)
	}
	if !docs.IsEmpty() {
		t.Fatalf("Expected empty indexed set, got %d", docs.GetCardinality())
	}

	// Postings are gone
	postings, err := indexRepo.PhrasePostings(ctx, "charity suffereth")
	if err != nil {
		t.Fatalf("Failed to read postings: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("Expected 0 postings after delete, got %d", len(postings))
	}

	words, err := indexRepo.ContainingDocs(ctx, "charity")
	if err != nil {
		t.Fatalf("Failed to read containing docs: %v", err)
	}
	if !words.IsEmpty() {
		t.Fatal("Expected no word postings after delete")
	}

	// Token index is gone
	_, err = indexRepo.TokenIndex(ctx, chapter.Id)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// Deleting again is a no-op
	if err := indexRepo.DeleteDocumentIndex(ctx, chapter.Id); err != nil {
		t.Fatalf("Expected no-op delete, got %v", err)
	}
}

func TestTokenIndexOffsets(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	content := "The Holy Spirit guides."
	added, err := chapterRepo.AddChapters(ctx, &core.Chapter{WorkId: 1, Number: 1, Content: content})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}

	if _, err := indexRepo.IndexDocument(ctx, added[0]); err != nil {
		t.Fatalf("Failed to index document: %v", err)
	}

	tokens, err := indexRepo.TokenIndex(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to read token index: %v", err)
	}

	want := []core.TokenEntry{
		{Token: "the", Offset: 0},
		{Token: "holy", Offset: 4},
		{Token: "spirit", Offset: 9},
		{Token: "guides", Offset: 16},
	}
	if len(tokens) != len(want) {
		t.Fatalf("Expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, entry := range want {
		if tokens[i] != entry {
			t.Fatalf("Token %d: expected %+v, got %+v", i, entry, tokens[i])
		}
	}
}

func TestPartialIndexInvisible(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Simulate an interrupted indexing run: postings written, no marker
	raw := indexRepo.(*IndexRepository)
	err = raw.writeEntries([]indexEntry{{key: makeWordKey("orphan", 42)}})
	if err != nil {
		t.Fatalf("Failed to write orphan posting: %v", err)
	}

	// Repositories return raw sets; the visibility gate is the marker set
	words, err := indexRepo.ContainingDocs(ctx, "orphan")
	if err != nil {
		t.Fatalf("Failed to read containing docs: %v", err)
	}
	if !words.Contains(42) {
		t.Fatal("Expected orphan posting in raw word set")
	}

	docs, err := indexRepo.IndexedDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to read indexed documents: %v", err)
	}
	if docs.Contains(42) {
		t.Fatal("Expected document without marker to stay invisible")
	}
}

func TestIndexStats(t *testing.T) {
	chapterRepo, indexRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { indexRepo.Close(); chapterRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := chapterRepo.AddChapters(ctx,
		&core.Chapter{WorkId: 1, Number: 1, Content: "The fear of the LORD is the beginning of wisdom."},
		&core.Chapter{WorkId: 1, Number: 2, Content: "The Holy Spirit guides. The Holy Spirit comforts."},
	)
	if err != nil {
		t.Fatalf("Failed to add chapters: %v", err)
	}

	for _, chapter := range added {
		if _, err := indexRepo.IndexDocument(ctx, chapter); err != nil {
			t.Fatalf("Failed to index chapter %d: %v", chapter.Id, err)
		}
	}

	stats, err := indexRepo.Stats(ctx)
	if err != nil {
		t.Fatalf("Failed to read stats: %v", err)
	}

	if stats.IndexedChapters != 2 {
		t.Fatalf("Expected 2 indexed chapters, got %d", stats.IndexedChapters)
	}
	// 10 tokens + 8 tokens
	if stats.Tokens != 18 {
		t.Fatalf("Expected 18 tokens, got %d", stats.Tokens)
	}
	if stats.UniquePhrases == 0 {
		t.Fatal("Expected non-zero unique phrases")
	}
	if stats.PhrasePostings < stats.UniquePhrases {
		t.Fatalf("Expected postings >= unique phrases, got %d < %d", stats.PhrasePostings, stats.UniquePhrases)
	}
	if stats.TrigramPostings == 0 {
		t.Fatal("Expected non-zero trigram postings")
	}
}
