package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pauldavidfisher/church-fathers-search/core"
)

// provenance is the resolved attribution chain for one chapter.
type provenance struct {
	author  *core.Author
	work    *core.Work
	chapter *core.Chapter
}

// assembler turns raw hits into SearchResults: a text excerpt around the
// match plus the author/work/chapter attribution. Token indexes and
// attribution chains are cached for the lifetime of one query, so a
// chapter contributing several hits is fetched once.
type assembler struct {
	searcher *Searcher
	tokens   map[core.ID][]core.TokenEntry
	chains   map[core.ID]*provenance
}

func (s *Searcher) newAssembler() *assembler {
	return &assembler{
		searcher: s,
		tokens:   make(map[core.ID][]core.TokenEntry),
		chains:   make(map[core.ID]*provenance),
	}
}

func (a *assembler) tokenIndex(ctx context.Context, id core.ID) ([]core.TokenEntry, error) {
	if entries, ok := a.tokens[id]; ok {
		return entries, nil
	}
	entries, err := a.searcher.indexRepository.TokenIndex(ctx, id)
	if err != nil {
		return nil, err
	}
	a.tokens[id] = entries
	return entries, nil
}

func (a *assembler) chain(ctx context.Context, id core.ID) (*provenance, error) {
	if chain, ok := a.chains[id]; ok {
		return chain, nil
	}
	author, work, chapter, err := a.searcher.chapterRepository.Provenance(ctx, id)
	if err != nil {
		return nil, err
	}
	chain := &provenance{author: author, work: work, chapter: chapter}
	a.chains[id] = chain
	return chain, nil
}

// build assembles one hit into a SearchResult.
func (a *assembler) build(ctx context.Context, id core.ID, position, length uint32, phrase string, method core.SearchMethod) (*core.SearchResult, error) {
	chain, err := a.chain(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := a.tokenIndex(ctx, id)
	if err != nil {
		return nil, err
	}

	config := a.searcher.config
	excerpt := excerptAround(chain.chapter.Content, entries, int(position), int(length), config.ContextTokens, config.ContextMaxChars)

	return &core.SearchResult{
		ChapterId:    id,
		Position:     position,
		Length:       length,
		Phrase:       phrase,
		Context:      excerpt,
		Method:       method,
		Author:       chain.author.Name,
		WorkTitle:    chain.work.Title,
		WorkURL:      chain.work.URL,
		ChapterTitle: chain.chapter.Title,
	}, nil
}

// excerptAround cuts a window of roughly windowTokens tokens out of the
// raw content, centered on the match. Ellipses mark clipped edges and
// the excerpt is capped at maxChars bytes on a rune boundary.
func excerptAround(content string, entries []core.TokenEntry, position, length, windowTokens, maxChars int) string {
	if len(entries) == 0 || position >= len(entries) {
		return ""
	}
	if length < 1 {
		length = 1
	}
	if position+length > len(entries) {
		length = len(entries) - position
	}
	if windowTokens < length {
		windowTokens = length
	}

	start := position - (windowTokens-length)/2
	if start < 0 {
		start = 0
	}
	end := start + windowTokens
	if end > len(entries) {
		end = len(entries)
		start = end - windowTokens
		if start < 0 {
			start = 0
		}
	}

	from := int(entries[start].Offset)
	to := len(content)
	if end < len(entries) {
		to = int(entries[end].Offset)
	}
	excerpt := strings.TrimSpace(content[from:to])

	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(entries) {
		suffix = "..."
	}

	if len(prefix)+len(excerpt)+len(suffix) > maxChars {
		budget := maxChars - len(prefix) - 3
		if budget < 0 {
			budget = 0
		}
		excerpt = strings.TrimSpace(truncateRunes(excerpt, budget))
		suffix = "..."
	}

	return prefix + excerpt + suffix
}

// truncateRunes shortens s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}

// FilterByAuthor keeps results whose author name contains name,
// case-insensitively. An empty name keeps everything.
func FilterByAuthor(results []*core.SearchResult, name string) []*core.SearchResult {
	if name == "" {
		return results
	}

	needle := strings.ToLower(name)
	filtered := make([]*core.SearchResult, 0, len(results))
	for _, result := range results {
		if strings.Contains(strings.ToLower(result.Author), needle) {
			filtered = append(filtered, result)
		}
	}
	return filtered
}
