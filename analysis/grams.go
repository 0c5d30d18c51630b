package analysis

import "strings"

// Canonical word-gram length bounds. The index stores every contiguous
// phrase of MinPhraseTokens..MaxPhraseTokens words; exact lookups outside
// this range cannot hit.
const (
	MinPhraseTokens = 2
	MaxPhraseTokens = 10
)

// Gram is one word n-gram: the space-joined phrase text, the token
// position it starts at, and its length in tokens.
type Gram struct {
	Phrase string
	Start  uint32
	Length uint32
}

// Trigram is one 3-character gram occurrence with its rune offset into
// the text it was generated from.
type Trigram struct {
	Gram   string
	Offset uint32
}

// WordGrams emits every contiguous run of minLen..maxLen tokens as a Gram.
// A document of L tokens yields sum over n in [minLen, min(maxLen, L)] of
// (L-n+1) grams; shorter documents simply emit fewer. Bounds outside
// [1, len(tokens)] are clamped; an inverted range yields nothing.
func WordGrams(tokens []string, minLen, maxLen int) []Gram {
	if minLen < 1 {
		minLen = 1
	}
	if maxLen > len(tokens) {
		maxLen = len(tokens)
	}
	if minLen > maxLen {
		return nil
	}

	total := 0
	for n := minLen; n <= maxLen; n++ {
		total += len(tokens) - n + 1
	}
	grams := make([]Gram, 0, total)

	for start := 0; start+minLen <= len(tokens); start++ {
		var b strings.Builder
		b.WriteString(tokens[start])
		if minLen == 1 {
			grams = append(grams, Gram{
				Phrase: tokens[start],
				Start:  uint32(start),
				Length: 1,
			})
		}
		for n := 2; n <= maxLen && start+n <= len(tokens); n++ {
			b.WriteString(" ")
			b.WriteString(tokens[start+n-1])
			if n >= minLen {
				grams = append(grams, Gram{
					Phrase: b.String(),
					Start:  uint32(start),
					Length: uint32(n),
				})
			}
		}
	}

	return grams
}

// CharTrigrams emits every 3-rune window of text in order, spaces
// included, so grams cross word boundaries. Offsets count runes. Text
// shorter than three runes yields nothing.
func CharTrigrams(text string) []Trigram {
	rs := []rune(text)
	if len(rs) < 3 {
		return nil
	}
	grams := make([]Trigram, 0, len(rs)-2)
	for i := 0; i+3 <= len(rs); i++ {
		grams = append(grams, Trigram{
			Gram:   string(rs[i : i+3]),
			Offset: uint32(i),
		})
	}
	return grams
}

// TrigramSet returns the distinct trigram set of text, for overlap math.
func TrigramSet(text string) map[string]struct{} {
	rs := []rune(text)
	if len(rs) < 3 {
		return nil
	}
	set := make(map[string]struct{}, len(rs)-2)
	for i := 0; i+3 <= len(rs); i++ {
		set[string(rs[i:i+3])] = struct{}{}
	}
	return set
}

// DiceCoefficient computes 2|A∩B| / (|A|+|B|) over two trigram sets.
// Two empty sets share nothing: 0.
func DiceCoefficient(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for g := range small {
		if _, ok := large[g]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)+len(b))
}
