package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/pauldavidfisher/church-fathers-search/analysis"
	"github.com/pauldavidfisher/church-fathers-search/core"
)

// distinctWords deduplicates tokens preserving first-occurrence order.
func distinctWords(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	words := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		words = append(words, token)
	}
	return words
}

// wordOccurrence is one appearance of a query word in a document,
// tagged with the word's index into the distinct query word list.
type wordOccurrence struct {
	position uint32
	word     int
}

// minimumWindow finds the tightest token window covering at least one
// occurrence of each of the distinct query words. Occurrences must be
// in position order. Returns the window bounds and its span, the
// distance between the first and last covered position.
func minimumWindow(occurrences []wordOccurrence, distinct int) (start, end, span uint32, ok bool) {
	counts := make([]int, distinct)
	have := 0
	left := 0

	for right := range occurrences {
		if counts[occurrences[right].word] == 0 {
			have++
		}
		counts[occurrences[right].word]++

		for have == distinct {
			width := occurrences[right].position - occurrences[left].position
			if !ok || width < span {
				start, end, span, ok = occurrences[left].position, occurrences[right].position, width, true
			}
			counts[occurrences[left].word]--
			if counts[occurrences[left].word] == 0 {
				have--
			}
			left++
		}
	}

	return start, end, span, ok
}

// Proximity finds chapters where every query word occurs within
// maxDistance tokens, measured between the first and last word of the
// tightest covering window, inclusive. Results are ordered by span,
// then chapter ID. A zero maxDistance falls back to the configured
// default.
func (s *Searcher) Proximity(ctx context.Context, query string, maxDistance uint32, limit int) ([]*core.SearchResult, error) {
	return s.ProximityWithMonitor(ctx, query, maxDistance, limit, nil)
}

// ProximityWithMonitor is Proximity with stage callbacks.
func (s *Searcher) ProximityWithMonitor(ctx context.Context, query string, maxDistance uint32, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(core.MethodProximity, query)
	limit = s.limitOr(limit)
	if maxDistance == 0 {
		maxDistance = s.config.MaxProximityDistance
	}

	tokens := analysis.Normalize(query)
	monitor.AfterNormalize(tokens)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no searchable tokens in %q", ErrInvalidQuery, query)
	}

	words := distinctWords(tokens)
	if len(words) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientTerms, len(words))
	}

	candidates, err := s.indexRepository.IndexedDocuments(ctx)
	if err != nil {
		return nil, err
	}
	for _, word := range words {
		docs, err := s.indexRepository.ContainingDocs(ctx, word)
		if err != nil {
			return nil, err
		}
		candidates.And(docs)
		if candidates.IsEmpty() {
			break
		}
	}
	monitor.AfterCandidates(candidates.GetCardinality())

	wordIndex := make(map[string]int, len(words))
	for i, word := range words {
		wordIndex[word] = i
	}

	type proximityHit struct {
		chapter core.ID
		start   uint32
		length  uint32
		span    uint32
	}
	var hits []proximityHit

	it := candidates.Iterator()
	for it.HasNext() {
		id := core.ID(it.Next())

		entries, err := s.indexRepository.TokenIndex(ctx, id)
		if err != nil {
			return nil, err
		}

		var occurrences []wordOccurrence
		for position, entry := range entries {
			if w, ok := wordIndex[entry.Token]; ok {
				occurrences = append(occurrences, wordOccurrence{position: uint32(position), word: w})
			}
		}

		start, end, span, ok := minimumWindow(occurrences, len(words))
		if !ok || span > maxDistance {
			continue
		}
		hits = append(hits, proximityHit{chapter: id, start: start, length: end - start + 1, span: span})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].span != hits[j].span {
			return hits[i].span < hits[j].span
		}
		return hits[i].chapter < hits[j].chapter
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	monitor.AfterScoring(len(hits))

	assembler := s.newAssembler()
	display := analysis.JoinTokens(words)
	results := make([]*core.SearchResult, 0, len(hits))
	for _, hit := range hits {
		result, err := assembler.build(ctx, hit.chapter, hit.start, hit.length, display, core.MethodProximity)
		if err != nil {
			return nil, err
		}
		result.Span = hit.span
		results = append(results, result)
	}

	monitor.Finish(results)
	return results, nil
}
