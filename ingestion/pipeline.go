package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/corpus"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

// ingestQueueDepth bounds the channel between the source reader and the
// indexing workers, so a fast source cannot buffer a whole corpus in
// memory ahead of the index.
const ingestQueueDepth = 64

// Pipeline orchestrates the intake of corpus documents.
// It manages concurrent indexing of chapters on a worker pool.
type Pipeline struct {
	chapterRepository storage.ChapterRepository
	indexRepository   storage.IndexRepository
	indexPool         *ants.Pool
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.indexPool != nil {
			p.indexPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.indexPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chapterRepository storage.ChapterRepository,
	indexRepository storage.IndexRepository,
	opts ...Option,
) (*Pipeline, error) {
	if chapterRepository == nil {
		return nil, ErrChapterRepositoryRequired
	}
	if indexRepository == nil {
		return nil, ErrIndexRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		chapterRepository: chapterRepository,
		indexRepository:   indexRepository,
		indexPool:         pool,
		logger:            slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestDocument files one document under its author and work and indexes
// its chapter. The author upserts by name, the work by URL (title within
// the author when the URL is empty), and the chapter ID derives from its
// content, so repeating a document converges on the same records.
// Reports whether the chapter was already indexed.
func (p *Pipeline) IngestDocument(ctx context.Context, doc *corpus.Document) (*core.IndexState, bool, error) {
	author, err := p.chapterRepository.GetOrCreateAuthor(ctx, &core.Author{
		Name:     doc.Author,
		IsSaint:  doc.AuthorIsSaint,
		IsDoctor: doc.AuthorIsDoctor,
	})
	if err != nil {
		return nil, false, fmt.Errorf("upserting author: %w", err)
	}

	work, err := p.chapterRepository.GetOrCreateWork(ctx, &core.Work{
		AuthorId: author.Id,
		Title:    doc.WorkTitle,
		URL:      doc.WorkURL,
	})
	if err != nil {
		return nil, false, fmt.Errorf("upserting work: %w", err)
	}

	chapters, err := p.chapterRepository.AddChapters(ctx, &core.Chapter{
		WorkId:  work.Id,
		Number:  doc.ChapterNumber,
		Title:   doc.ChapterTitle,
		Content: doc.Content,
	})
	if err != nil {
		return nil, false, fmt.Errorf("adding chapter: %w", err)
	}
	chapter := chapters[0]

	state, err := p.indexRepository.State(ctx, chapter.Id)
	if err != nil {
		return nil, false, fmt.Errorf("reading index state: %w", err)
	}
	if state != nil {
		return state, true, nil
	}

	state, err = p.indexRepository.IndexDocument(ctx, chapter)
	if err != nil {
		return nil, false, fmt.Errorf("indexing chapter: %w", err)
	}
	return state, false, nil
}

// Report summarizes a corpus run.
type Report struct {
	Ingested       int // chapters newly indexed
	AlreadyIndexed int // chapters whose index was already complete
	Failed         int // documents that could not be read or ingested

	// Err aggregates every per-document failure of the run.
	Err error
}

// Run streams every document of the source through IngestDocument,
// indexing concurrently on the pipeline's worker pool. A document that
// fails is logged and counted; the run continues. Run returns an error
// only when the source itself breaks or the run is cancelled, in which
// case the report covers the documents processed up to that point.
func (p *Pipeline) Run(ctx context.Context, source corpus.Source) (*Report, error) {
	report := &Report{}

	var mu sync.Mutex
	var errs *multierror.Error
	fail := func(err error) {
		mu.Lock()
		report.Failed++
		errs = multierror.Append(errs, err)
		mu.Unlock()
	}

	group, ctx := errgroup.WithContext(ctx)
	docs := make(chan *corpus.Document, ingestQueueDepth)

	group.Go(func() error {
		defer close(docs)
		return source.ForEach(ctx, func(doc *corpus.Document, err error) error {
			if err != nil {
				p.logger.Warn("skipping unreadable document", "err", err)
				fail(err)
				return nil
			}
			select {
			case docs <- doc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	group.Go(func() error {
		var wg sync.WaitGroup
		defer wg.Wait()
		for doc := range docs {
			wg.Add(1)
			if err := p.indexPool.Submit(func() {
				defer wg.Done()
				_, already, err := p.IngestDocument(ctx, doc)
				if err != nil {
					p.logger.Error("error ingesting document",
						"author", doc.Author,
						"work", doc.WorkTitle,
						"chapter", doc.ChapterNumber,
						"err", err)
					fail(fmt.Errorf("%s, %s, chapter %d: %w",
						doc.Author, doc.WorkTitle, doc.ChapterNumber, err))
					return
				}
				mu.Lock()
				if already {
					report.AlreadyIndexed++
				} else {
					report.Ingested++
				}
				mu.Unlock()
			}); err != nil {
				wg.Done()
				return err
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return report, err
	}

	report.Err = errs.ErrorOrNil()
	return report, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.indexPool != nil {
		p.indexPool.Release()
	}
}
