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
	"fmt"
	"io"
	"time"

	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of chapters to fetch in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chapters)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed rebuilds
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Force rebuilds every chapter, including chapters whose index
	// already matches their content
	Force bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer orchestrates rebuilding the index of every chapter in a database.
type Reindexer struct {
	chapterRepo storage.ChapterRepository
	indexRepo   storage.IndexRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *ChapterIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(chapterRepo storage.ChapterRepository, indexRepo storage.IndexRepository, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(indexRepo, config.MaxRetries, config.RetryDelay, config.Force)
	iterator := NewChapterIterator(chapterRepo, config.BatchSize)

	return &Reindexer{
		chapterRepo: chapterRepo,
		indexRepo:   indexRepo,
		config:      config,
		progress:    progress,
		processor:   processor,
		iterator:    iterator,
	}
}

// Run executes the reindexing operation.
// Every chapter in the database is rebuilt under the current analysis
// rules unless its index is already consistent (see Config.Force).
// Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	count, err := r.chapterRepo.CountChapters(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chapters: %w", err)
	}

	total := int(count)
	if total == 0 {
		fmt.Fprintf(r.progress, "No chapters found in database (0 chapters)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d chapters (batch size: %d)\n",
		total, r.config.BatchSize)

	// Initialize progress tracker
	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	rebuilt := 0
	skipped := 0

	// Process all chapters in batches
	err = r.iterator.ForEach(ctx, func(chapters []*core.Chapter) error {
		batchRebuilt, batchSkipped, err := r.processor.Process(ctx, chapters)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		rebuilt += batchRebuilt
		skipped += batchSkipped

		// Update progress
		processed += len(chapters)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	// Finish progress tracking
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Rebuilt %d of %d chapters (%d skipped) in %v (%.1f chapters/sec)\n",
		rebuilt, total, skipped, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
