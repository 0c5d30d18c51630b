package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pauldavidfisher/church-fathers-search/core"
)

// isWordRune reports whether r belongs inside a token.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits raw text into normalized tokens, each carrying the byte
// offset of its source span. Tokens are lowercased; punctuation separates
// tokens except for an apostrophe with a letter or digit on both sides,
// which stays inside its token ("don't" is one token, "Jesus'" drops the
// trailing apostrophe). Whitespace of any kind and length separates tokens.
func Tokenize(text string) []core.TokenEntry {
	var entries []core.TokenEntry
	var b strings.Builder
	start := -1

	flush := func() {
		if start >= 0 {
			entries = append(entries, core.TokenEntry{
				Token:  b.String(),
				Offset: uint32(start),
			})
			b.Reset()
			start = -1
		}
	}

	prev := rune(-1)
	for i, r := range text {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '\'' && isWordRune(prev):
			// Internal only: the next rune must also be a word rune.
			next, _ := utf8.DecodeRuneInString(text[i+utf8.RuneLen(r):])
			if isWordRune(next) {
				b.WriteRune(r)
			} else {
				flush()
			}
		default:
			flush()
		}
		prev = r
	}
	flush()

	return entries
}

// Normalize returns the normalized token stream of text. It is Tokenize
// without the offsets; both paths share one scanner.
func Normalize(text string) []string {
	entries := Tokenize(text)
	if len(entries) == 0 {
		return nil
	}
	tokens := make([]string, len(entries))
	for i, e := range entries {
		tokens[i] = e.Token
	}
	return tokens
}

// JoinTokens renders tokens in canonical phrase form: joined by single
// spaces. Phrase keys in the index and query phrases both go through this.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
