// Copyright 2025 Paul David Fisher
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"

	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

const (
	// DefaultBatchSize is the default number of chapters to fetch in each batch
	DefaultBatchSize = 100
)

// ChapterIterator iterates over every chapter in the corpus in batches.
// Only the id listing is held in memory at once; chapter contents are
// fetched one batch at a time.
type ChapterIterator struct {
	repo      storage.ChapterRepository
	batchSize int
}

// NewChapterIterator creates a new chapter iterator.
// batchSize: number of chapters to fetch in each batch (must be > 0)
func NewChapterIterator(repo storage.ChapterRepository, batchSize int) *ChapterIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChapterIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all chapters in id order, calling fn for each batch.
// Iteration stops on first error from fn or when all chapters are processed.
// Context cancellation is checked between batches.
func (it *ChapterIterator) ForEach(ctx context.Context, fn func([]*core.Chapter) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ids, err := it.repo.ListChapterIDs(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		return nil
	}

	for i := 0; i < len(ids); i += it.batchSize {
		end := i + it.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		chapters, err := it.repo.GetChapters(ctx, ids[i:end]...)
		if err != nil {
			return err
		}

		if err := fn(chapters); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
