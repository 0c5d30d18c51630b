package reindex

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauldavidfisher/church-fathers-search/core"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Greater(t, config.BatchSize, 0)
	assert.Greater(t, config.ReportInterval, 0)
	assert.Greater(t, config.MaxRetries, 0)
	assert.Greater(t, config.RetryDelay, time.Duration(0))
	assert.False(t, config.Force, "forced rebuilds must be opt-in")
}

func TestReindexer_Run(t *testing.T) {
	chapterRepo, indexRepo, cleanup := setupTestDB(t)
	defer cleanup()

	seedChapters(t, chapterRepo, indexRepo, 10, true)

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		Force:          true,
	}
	reindexer := NewReindexer(chapterRepo, indexRepo, config, &buf)

	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Starting reindex of 10 chapters")
	assert.Contains(t, output, "10/10")
	assert.Contains(t, output, "Rebuilt 10 of 10 chapters (0 skipped)")
}

func TestReindexer_Run_SkipsConsistentChapters(t *testing.T) {
	chapterRepo, indexRepo, cleanup := setupTestDB(t)
	defer cleanup()

	seedChapters(t, chapterRepo, indexRepo, 5, true)

	var buf bytes.Buffer
	reindexer := NewReindexer(chapterRepo, indexRepo, nil, &buf)

	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Rebuilt 0 of 5 chapters (5 skipped)")
}

func TestReindexer_Run_RebuildsStaleChapters(t *testing.T) {
	chapterRepo, indexRepo, cleanup := setupTestDB(t)
	defer cleanup()

	chapters := seedChapters(t, chapterRepo, indexRepo, 4, true)

	// One chapter changed since it was indexed; only that one needs work.
	rewriteChapter(t, chapterRepo, chapters[1], "Hope does not disappoint those who wait.")

	var buf bytes.Buffer
	reindexer := NewReindexer(chapterRepo, indexRepo, nil, &buf)

	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Rebuilt 1 of 4 chapters (3 skipped)")
	assert.Equal(t, []core.ID{chapters[1].Id}, phraseChapters(t, indexRepo, "does not disappoint"))
}

func TestReindexer_Run_IndexesUnindexedChapters(t *testing.T) {
	chapterRepo, indexRepo, cleanup := setupTestDB(t)
	defer cleanup()

	chapters := seedChapters(t, chapterRepo, indexRepo, 3, false)

	var buf bytes.Buffer
	reindexer := NewReindexer(chapterRepo, indexRepo, nil, &buf)

	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Rebuilt 3 of 3 chapters (0 skipped)")

	for _, chapter := range chapters {
		state, err := indexRepo.State(context.Background(), chapter.Id)
		require.NoError(t, err)
		assert.NotNil(t, state)
	}
}

func TestReindexer_Run_EmptyDatabase(t *testing.T) {
	chapterRepo, indexRepo, cleanup := setupTestDB(t)
	defer cleanup()

	var buf bytes.Buffer
	reindexer := NewReindexer(chapterRepo, indexRepo, nil, &buf)

	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No chapters found in database (0 chapters)")
}

func TestReindexer_Run_ContextCancellation(t *testing.T) {
	chapterRepo, indexRepo, cleanup := setupTestDB(t)
	defer cleanup()

	seedChapters(t, chapterRepo, indexRepo, 5, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	reindexer := NewReindexer(chapterRepo, indexRepo, nil, &buf)

	err := reindexer.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReindexer_Run_ProgressTracking(t *testing.T) {
	chapterRepo, indexRepo, cleanup := setupTestDB(t)
	defer cleanup()

	seedChapters(t, chapterRepo, indexRepo, 25, true)

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      5,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		Force:          true,
	}
	reindexer := NewReindexer(chapterRepo, indexRepo, config, &buf)

	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Progress:")
	assert.Contains(t, output, "25/25")
	assert.Contains(t, output, "Reindex complete")
}
