package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/pauldavidfisher/church-fathers-search/analysis"
	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

// BatchProcessor rebuilds the document index for batches of chapters.
type BatchProcessor struct {
	indexRepo      storage.IndexRepository
	maxRetries     int
	retryBaseDelay time.Duration
	force          bool
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts per chapter rebuild
// retryBaseDelay: base delay for exponential backoff
// force: rebuild chapters even when their index looks consistent
func NewBatchProcessor(indexRepo storage.IndexRepository, maxRetries int, retryBaseDelay time.Duration, force bool) *BatchProcessor {
	return &BatchProcessor{
		indexRepo:      indexRepo,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		force:          force,
	}
}

// Process rebuilds the index of every chapter in the batch: the old
// document index is deleted and the chapter indexed afresh under the
// current analysis rules. Chapters whose marker matches a fresh
// tokenization are skipped unless force is set. Returns how many chapters
// were rebuilt and how many were skipped.
func (bp *BatchProcessor) Process(ctx context.Context, chapters []*core.Chapter) (int, int, error) {
	rebuilt, skipped := 0, 0

	for _, chapter := range chapters {
		if !bp.force {
			ok, err := bp.consistent(ctx, chapter)
			if err != nil {
				return rebuilt, skipped, fmt.Errorf("failed to read index state of chapter %d: %w", chapter.Id, err)
			}
			if ok {
				skipped++
				continue
			}
		}

		// Delete-then-index is safe to repeat: deleting an unindexed
		// document is a no-op and indexing resumes partial writes.
		err := RetryWithBackoff(ctx, func() error {
			if err := bp.indexRepo.DeleteDocumentIndex(ctx, chapter.Id); err != nil {
				return err
			}
			_, err := bp.indexRepo.IndexDocument(ctx, chapter)
			return err
		}, bp.maxRetries, bp.retryBaseDelay)
		if err != nil {
			return rebuilt, skipped, fmt.Errorf("failed to rebuild chapter %d after %d attempts: %w", chapter.Id, bp.maxRetries, err)
		}

		rebuilt++
	}

	return rebuilt, skipped, nil
}

// consistent reports whether the chapter's index marker matches a fresh
// tokenization of its content. The token count is a cheap proxy: rule
// changes that happen to preserve counts need a forced run.
func (bp *BatchProcessor) consistent(ctx context.Context, chapter *core.Chapter) (bool, error) {
	state, err := bp.indexRepo.State(ctx, chapter.Id)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	return state.Tokens == uint32(len(analysis.Tokenize(chapter.Content))), nil
}
