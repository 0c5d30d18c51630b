package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pauldavidfisher/church-fathers-search/analysis"
	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/storage"
)

// Searcher answers phrase queries over indexed chapters.
type Searcher struct {
	chapterRepository storage.ChapterRepository
	indexRepository   storage.IndexRepository
	config            *Config
	logger            *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the default configuration. A nil config restores
// the defaults; an invalid one fails construction.
func WithConfig(config *Config) Option {
	return func(s *Searcher) error {
		if config == nil {
			config = DefaultConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chapterRepository storage.ChapterRepository,
	indexRepository storage.IndexRepository,
	opts ...Option,
) (*Searcher, error) {
	if chapterRepository == nil {
		return nil, ErrChapterRepositoryRequired
	}
	if indexRepository == nil {
		return nil, ErrIndexRepositoryRequired
	}

	s := &Searcher{
		chapterRepository: chapterRepository,
		indexRepository:   indexRepository,
		config:            DefaultConfig(),
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// limitOr substitutes the configured maximum for a non-positive limit.
func (s *Searcher) limitOr(limit int) int {
	if limit <= 0 {
		return s.config.MaxResults
	}
	return limit
}

// Request is a tagged search request. Zero-valued tunables fall back to
// the searcher's configuration.
type Request struct {
	Method core.SearchMethod
	Query  string

	// Limit caps the number of results per method.
	Limit int

	// MaxDistance bounds the proximity window span, inclusive.
	MaxDistance uint32

	// Threshold is the fuzzy similarity floor.
	Threshold float64
}

// Search dispatches a request to the matching strategy. A combined
// request flattens the per-method lists in method order; every result
// carries the method that produced it.
func (s *Searcher) Search(ctx context.Context, req Request) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor is Search with stage callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor SearchMonitor) ([]*core.SearchResult, error) {
	switch req.Method {
	case core.MethodExact:
		return s.ExactWithMonitor(ctx, req.Query, req.Limit, monitor)
	case core.MethodProximity:
		return s.ProximityWithMonitor(ctx, req.Query, req.MaxDistance, req.Limit, monitor)
	case core.MethodFuzzy:
		return s.FuzzyWithMonitor(ctx, req.Query, req.Threshold, req.Limit, monitor)
	case core.MethodBoolean:
		return s.BooleanWithMonitor(ctx, req.Query, req.Limit, monitor)
	case core.MethodCombined:
		byMethod, err := s.CombinedWithMonitor(ctx, req.Query, req.Limit, monitor)
		if err != nil {
			return nil, err
		}
		var results []*core.SearchResult
		for _, method := range []core.SearchMethod{core.MethodExact, core.MethodProximity, core.MethodFuzzy, core.MethodBoolean} {
			results = append(results, byMethod[method]...)
		}
		return results, nil
	default:
		return nil, fmt.Errorf("%w: unknown search method %q", ErrInvalidQuery, req.Method)
	}
}

// Exact finds chapters containing the query as a contiguous normalized
// phrase. The query must normalize to an indexable phrase length.
// Results are ordered by chapter ID, then position.
func (s *Searcher) Exact(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.ExactWithMonitor(ctx, query, limit, nil)
}

// ExactWithMonitor is Exact with stage callbacks.
func (s *Searcher) ExactWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(core.MethodExact, query)
	limit = s.limitOr(limit)

	tokens := analysis.Normalize(query)
	monitor.AfterNormalize(tokens)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no searchable tokens in %q", ErrInvalidQuery, query)
	}
	if len(tokens) < analysis.MinPhraseTokens || len(tokens) > analysis.MaxPhraseTokens {
		return nil, fmt.Errorf("%w: %d tokens, indexed range is %d to %d",
			ErrUnsupportedPhraseLength, len(tokens), analysis.MinPhraseTokens, analysis.MaxPhraseTokens)
	}
	phrase := analysis.JoinTokens(tokens)

	postings, err := s.indexRepository.PhrasePostings(ctx, phrase)
	if err != nil {
		s.logger.Error("error reading phrase postings", "phrase", phrase, "err", err)
		return nil, err
	}
	visible, err := s.indexRepository.IndexedDocuments(ctx)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidates(uint64(len(postings)))

	assembler := s.newAssembler()
	var results []*core.SearchResult

	for _, posting := range postings {
		if len(results) >= limit {
			break
		}
		if !visible.Contains(uint64(posting.ChapterId)) {
			continue
		}
		for _, position := range posting.Positions {
			if len(results) >= limit {
				break
			}
			result, err := assembler.build(ctx, posting.ChapterId, position, uint32(len(tokens)), phrase, core.MethodExact)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}

	monitor.AfterScoring(len(results))
	monitor.Finish(results)
	return results, nil
}

// Combined runs every strategy that applies to the query and returns
// the per-method result lists. Exact is skipped for single-token
// queries and clamped to the longest indexable prefix of overlong ones;
// proximity is skipped without two distinct words; boolean runs only
// when the raw query carries an uppercase operator, and its key is
// absent otherwise. Hits are not deduplicated across methods.
func (s *Searcher) Combined(ctx context.Context, query string, limit int) (map[core.SearchMethod][]*core.SearchResult, error) {
	return s.CombinedWithMonitor(ctx, query, limit, nil)
}

// CombinedWithMonitor is Combined with stage callbacks. The monitor
// observes each dispatched method in turn.
func (s *Searcher) CombinedWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) (map[core.SearchMethod][]*core.SearchResult, error) {
	tokens := analysis.Normalize(query)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no searchable tokens in %q", ErrInvalidQuery, query)
	}

	results := make(map[core.SearchMethod][]*core.SearchResult)

	exactTokens := tokens
	if len(exactTokens) > analysis.MaxPhraseTokens {
		exactTokens = exactTokens[:analysis.MaxPhraseTokens]
	}
	if len(exactTokens) >= analysis.MinPhraseTokens {
		exact, err := s.ExactWithMonitor(ctx, analysis.JoinTokens(exactTokens), limit, monitor)
		if err != nil {
			return nil, err
		}
		results[core.MethodExact] = exact
	} else {
		results[core.MethodExact] = nil
	}

	if len(distinctWords(tokens)) >= 2 {
		proximity, err := s.ProximityWithMonitor(ctx, query, 0, limit, monitor)
		if err != nil {
			return nil, err
		}
		results[core.MethodProximity] = proximity
	} else {
		results[core.MethodProximity] = nil
	}

	fuzzy, err := s.FuzzyWithMonitor(ctx, query, 0, limit, monitor)
	if err != nil {
		return nil, err
	}
	results[core.MethodFuzzy] = fuzzy

	if hasBooleanOperator(query) {
		boolean, err := s.BooleanWithMonitor(ctx, query, limit, monitor)
		if err != nil {
			return nil, err
		}
		results[core.MethodBoolean] = boolean
	}

	return results, nil
}

// hasBooleanOperator reports whether the raw query contains an
// uppercase boolean keyword as its own field.
func hasBooleanOperator(query string) bool {
	for _, field := range strings.Fields(query) {
		switch field {
		case "AND", "OR", "NOT":
			return true
		}
	}
	return false
}
