package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/pauldavidfisher/church-fathers-search/analysis"
	"github.com/pauldavidfisher/church-fathers-search/core"
)

type booleanOp int

const (
	opAnd booleanOp = iota
	opOr
	opNot
)

// boolStep is one evaluation step: fold the documents containing word
// into the accumulator using op.
type boolStep struct {
	op   booleanOp
	word string
}

// parseBoolean splits a boolean expression into evaluation steps.
// Uppercase AND, OR and NOT are operators; any other field is a term,
// so lowercase "and" is an ordinary word. Terms pass through the shared
// normalizer; a term that normalizes to several tokens contributes them
// as consecutive implicit-AND steps, with any pending operator binding
// the first. Adjacent terms imply AND.
//
// A leading operator, a trailing operator, two operators in a row, or
// an operator whose operand normalizes to nothing is a parse error. A
// term normalizing to nothing anywhere else is skipped. An empty
// expression parses to zero steps.
func parseBoolean(expr string) ([]boolStep, error) {
	var steps []boolStep

	pending := opAnd
	pendingToken := ""
	hasPending := false

	for _, field := range strings.Fields(expr) {
		var op booleanOp
		switch field {
		case "AND":
			op = opAnd
		case "OR":
			op = opOr
		case "NOT":
			op = opNot
		default:
			tokens := analysis.Normalize(field)
			if len(tokens) == 0 {
				if hasPending {
					return nil, fmt.Errorf("%w: operator %s has no operand", ErrBooleanParse, pendingToken)
				}
				continue
			}

			first := opAnd
			if hasPending {
				first = pending
				hasPending = false
			}
			steps = append(steps, boolStep{op: first, word: tokens[0]})
			for _, token := range tokens[1:] {
				steps = append(steps, boolStep{op: opAnd, word: token})
			}
			continue
		}

		if len(steps) == 0 {
			return nil, fmt.Errorf("%w: expression begins with %s", ErrBooleanParse, field)
		}
		if hasPending {
			return nil, fmt.Errorf("%w: operator %s follows %s", ErrBooleanParse, field, pendingToken)
		}
		pending = op
		pendingToken = field
		hasPending = true
	}

	if hasPending {
		return nil, fmt.Errorf("%w: expression ends with %s", ErrBooleanParse, pendingToken)
	}

	return steps, nil
}

// positiveWords returns the distinct non-negated words in step order.
func positiveWords(steps []boolStep) map[string]struct{} {
	words := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		if step.op != opNot {
			words[step.word] = struct{}{}
		}
	}
	return words
}

// evalBoolean folds the steps left to right over containment bitmaps,
// so A OR B AND C evaluates as (A OR B) AND C. Every operand is gated
// to visible before folding.
func (s *Searcher) evalBoolean(ctx context.Context, steps []boolStep, visible *roaring64.Bitmap) (*roaring64.Bitmap, error) {
	var matched *roaring64.Bitmap

	for _, step := range steps {
		docs, err := s.indexRepository.ContainingDocs(ctx, step.word)
		if err != nil {
			return nil, err
		}
		docs.And(visible)

		if matched == nil {
			matched = docs
			continue
		}
		switch step.op {
		case opAnd:
			matched.And(docs)
		case opOr:
			matched.Or(docs)
		case opNot:
			matched.AndNot(docs)
		}
	}

	if matched == nil {
		matched = roaring64.New()
	}
	return matched, nil
}

// Boolean evaluates a flat AND/OR/NOT expression over word containment.
// Results are ordered by chapter ID; each hit reports the first
// occurrence of any non-negated term. An empty expression matches
// nothing.
func (s *Searcher) Boolean(ctx context.Context, expr string, limit int) ([]*core.SearchResult, error) {
	return s.BooleanWithMonitor(ctx, expr, limit, nil)
}

// BooleanWithMonitor is Boolean with stage callbacks.
func (s *Searcher) BooleanWithMonitor(ctx context.Context, expr string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(core.MethodBoolean, expr)
	limit = s.limitOr(limit)

	steps, err := parseBoolean(expr)
	if err != nil {
		return nil, err
	}

	words := make([]string, len(steps))
	for i, step := range steps {
		words[i] = step.word
	}
	monitor.AfterNormalize(words)

	if len(steps) == 0 {
		monitor.AfterCandidates(0)
		monitor.Finish(nil)
		return nil, nil
	}

	visible, err := s.indexRepository.IndexedDocuments(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := s.evalBoolean(ctx, steps, visible)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidates(matched.GetCardinality())

	positives := positiveWords(steps)
	assembler := s.newAssembler()
	var results []*core.SearchResult

	it := matched.Iterator()
	for it.HasNext() && len(results) < limit {
		id := core.ID(it.Next())

		entries, err := s.indexRepository.TokenIndex(ctx, id)
		if err != nil {
			return nil, err
		}

		// Every matched chapter contains at least one positive term:
		// the accumulator only ever grows from positive operands.
		position, word := -1, ""
		for i, entry := range entries {
			if _, ok := positives[entry.Token]; ok {
				position, word = i, entry.Token
				break
			}
		}
		if position < 0 {
			continue
		}

		result, err := assembler.build(ctx, id, uint32(position), 1, word, core.MethodBoolean)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	monitor.AfterScoring(len(results))
	monitor.Finish(results)
	return results, nil
}
