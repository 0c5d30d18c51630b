package fathersearch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauldavidfisher/church-fathers-search/corpus"
	"github.com/pauldavidfisher/church-fathers-search/corpus/static"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.ChapterRepository())
		assert.NotNil(t, db.IndexRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("in-memory database", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory())
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.ChapterRepository())
		assert.NotNil(t, db.IndexRepository())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create reindexer", func(t *testing.T) {
		reindexer := db.NewReindexer(nil, io.Discard)
		require.NotNil(t, reindexer)
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	report, err := pipeline.Run(ctx, static.NewSource())
	require.NoError(t, err)
	require.NoError(t, report.Err)

	stats, err := db.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), stats.Authors)
	assert.Equal(t, uint64(3), stats.Works)
	assert.Equal(t, uint64(6), stats.Chapters)
	assert.Equal(t, uint64(6), stats.IndexedChapters)
	assert.NotZero(t, stats.Tokens)
	assert.NotZero(t, stats.UniquePhrases)
}

func TestDatabase_Persistence(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "persist_db")
	ctx := context.Background()

	doc := &corpus.Document{
		Author:        "Clement of Rome",
		AuthorIsSaint: true,
		WorkTitle:     "First Epistle to the Corinthians",
		WorkURL:       "https://www.newadvent.org/fathers/1010.htm",
		ChapterNumber: 49,
		ChapterTitle:  "The praise of love",
		Content:       "Love unites us to God. Love covers a multitude of sins.",
	}

	// First open: ingest and close.
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	_, already, err := pipeline.IngestDocument(ctx, doc)
	require.NoError(t, err)
	assert.False(t, already)
	pipeline.Release()
	require.NoError(t, db.Close())

	// Second open: the indexed chapter is still searchable.
	db, err = NewDatabase(tmpDir)
	require.NoError(t, err)
	defer db.Close()

	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	results, err := searcher.Exact(ctx, "covers a multitude", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Clement of Rome", results[0].Author)
	assert.Equal(t, "First Epistle to the Corinthians", results[0].WorkTitle)
}
