package search

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/pauldavidfisher/church-fathers-search/analysis"
	"github.com/pauldavidfisher/church-fathers-search/core"
)

// Fuzzy finds indexed phrases similar to the query. Chapters are first
// shortlisted by shared character trigrams, then their phrases of
// comparable word length are screened with the Dice coefficient and
// scored with Ratio. Each chapter contributes its single best phrase.
// Results are ordered by similarity descending, then chapter ID. A zero
// threshold falls back to the configured default.
func (s *Searcher) Fuzzy(ctx context.Context, query string, threshold float64, limit int) ([]*core.SearchResult, error) {
	return s.FuzzyWithMonitor(ctx, query, threshold, limit, nil)
}

// FuzzyWithMonitor is Fuzzy with stage callbacks.
func (s *Searcher) FuzzyWithMonitor(ctx context.Context, query string, threshold float64, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(core.MethodFuzzy, query)
	limit = s.limitOr(limit)
	if threshold == 0 {
		threshold = s.config.FuzzyThreshold
	}

	tokens := analysis.Normalize(query)
	monitor.AfterNormalize(tokens)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no searchable tokens in %q", ErrInvalidQuery, query)
	}

	phrase := analysis.JoinTokens(tokens)
	queryGrams := analysis.TrigramSet(phrase)
	if len(queryGrams) == 0 {
		monitor.AfterCandidates(0)
		monitor.Finish(nil)
		return nil, nil
	}

	minLen := len(tokens) - s.config.FuzzyLengthSlack
	if minLen < analysis.MinPhraseTokens {
		minLen = analysis.MinPhraseTokens
	}
	maxLen := len(tokens) + s.config.FuzzyLengthSlack
	if maxLen > analysis.MaxPhraseTokens {
		maxLen = analysis.MaxPhraseTokens
	}
	if minLen > maxLen {
		monitor.AfterCandidates(0)
		monitor.Finish(nil)
		return nil, nil
	}

	visible, err := s.indexRepository.IndexedDocuments(ctx)
	if err != nil {
		return nil, err
	}

	// Shortlist chapters sharing enough distinct trigrams with the
	// query. A phrase scoring Dice >= floor shares at least
	// |Q|*floor/2 of the query's grams, and a phrase's grams are a
	// subset of its chapter's, so no qualifying phrase is lost here.
	minShared := int(math.Ceil(float64(len(queryGrams)) * s.config.TrigramDiceFloor / 2))
	if minShared < 1 {
		minShared = 1
	}

	shared := make(map[uint64]int)
	for gram := range queryGrams {
		docs, err := s.indexRepository.TrigramDocs(ctx, gram)
		if err != nil {
			return nil, err
		}
		docs.And(visible)

		it := docs.Iterator()
		for it.HasNext() {
			shared[it.Next()]++
		}
	}

	candidates := make([]core.ID, 0, len(shared))
	for id, count := range shared {
		if count >= minShared {
			candidates = append(candidates, core.ID(id))
		}
	}
	slices.Sort(candidates)
	monitor.AfterCandidates(uint64(len(candidates)))

	type fuzzyHit struct {
		chapter    core.ID
		position   uint32
		length     uint32
		phrase     string
		similarity float64
	}
	var hits []fuzzyHit

	// Score each candidate's phrases of comparable length, keeping the
	// best per chapter at its first position.
	for _, id := range candidates {
		entries, err := s.indexRepository.TokenIndex(ctx, id)
		if err != nil {
			return nil, err
		}
		words := make([]string, len(entries))
		for i, entry := range entries {
			words[i] = entry.Token
		}

		var best *fuzzyHit
		seen := make(map[string]struct{})
		for _, gram := range analysis.WordGrams(words, minLen, maxLen) {
			if _, ok := seen[gram.Phrase]; ok {
				continue
			}
			seen[gram.Phrase] = struct{}{}

			if analysis.DiceCoefficient(analysis.TrigramSet(gram.Phrase), queryGrams) < s.config.TrigramDiceFloor {
				continue
			}
			similarity := Ratio(gram.Phrase, phrase)
			if similarity < threshold {
				continue
			}
			if best == nil || similarity > best.similarity {
				best = &fuzzyHit{
					chapter:    id,
					position:   gram.Start,
					length:     gram.Length,
					phrase:     gram.Phrase,
					similarity: similarity,
				}
			}
		}
		if best != nil {
			hits = append(hits, *best)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].similarity != hits[j].similarity {
			return hits[i].similarity > hits[j].similarity
		}
		return hits[i].chapter < hits[j].chapter
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	monitor.AfterScoring(len(hits))

	assembler := s.newAssembler()
	results := make([]*core.SearchResult, 0, len(hits))
	for _, hit := range hits {
		result, err := assembler.build(ctx, hit.chapter, hit.position, hit.length, hit.phrase, core.MethodFuzzy)
		if err != nil {
			return nil, err
		}
		result.Similarity = hit.similarity
		results = append(results, result)
	}

	monitor.Finish(results)
	return results, nil
}
