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


package fathersearch

import (
	"context"
	"io"
	"log/slog"

	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/ingestion"
	"github.com/pauldavidfisher/church-fathers-search/reindex"
	"github.com/pauldavidfisher/church-fathers-search/search"
	"github.com/pauldavidfisher/church-fathers-search/storage"
	"github.com/pauldavidfisher/church-fathers-search/storage/badger"
)

// Database bundles the store, its repositories and the component
// constructors behind one handle.
type Database struct {
	backend     *badger.Backend
	chapterRepo storage.ChapterRepository
	indexRepo   storage.IndexRepository
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
}

// WithInMemory opens the store in memory without touching disk. Data is
// lost on Close.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create chapter repository
	chapterRepo, err := badger.NewChapterRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create index repository
	indexRepo, err := badger.NewIndexRepository(backend)
	if err != nil {
		chapterRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		chapterRepo: chapterRepo,
		indexRepo:   indexRepo,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close repositories
	if err := db.indexRepo.Close(); err != nil {
		db.logger.Error("error closing index repository", "err", err)
		return err
	}
	if err := db.chapterRepo.Close(); err != nil {
		db.logger.Error("error closing chapter repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChapterRepository() storage.ChapterRepository {
	return db.chapterRepo
}

func (db *Database) IndexRepository() storage.IndexRepository {
	return db.indexRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chapterRepo, db.indexRepo, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.chapterRepo, db.indexRepo, opts...)
}

func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(db.chapterRepo, db.indexRepo, config, progress)
}

// Stats merges corpus counts from the chapter repository into the
// index-wide statistics.
func (db *Database) Stats(ctx context.Context) (*core.Stats, error) {
	stats, err := db.indexRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if stats.Authors, err = db.chapterRepo.CountAuthors(ctx); err != nil {
		return nil, err
	}
	if stats.Works, err = db.chapterRepo.CountWorks(ctx); err != nil {
		return nil, err
	}
	if stats.Chapters, err = db.chapterRepo.CountChapters(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}
