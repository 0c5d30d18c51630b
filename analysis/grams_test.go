package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordGrams_CountFormula(t *testing.T) {
	// A document of L tokens yields sum over n in [min, min(max, L)] of
	// (L-n+1) grams.
	tests := []struct {
		name   string
		tokens int
		min    int
		max    int
		want   int
	}{
		{name: "eight tokens, lengths 2..4", tokens: 8, min: 2, max: 4, want: 7 + 6 + 5},
		{name: "three tokens, lengths 2..10", tokens: 3, min: 2, max: 10, want: 2 + 1},
		{name: "two tokens, lengths 2..10", tokens: 2, min: 2, max: 10, want: 1},
		{name: "single token below min", tokens: 1, min: 2, max: 10, want: 0},
		{name: "empty", tokens: 0, min: 2, max: 10, want: 0},
		{name: "unigrams allowed", tokens: 5, min: 1, max: 2, want: 5 + 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := make([]string, tt.tokens)
			for i := range tokens {
				tokens[i] = string(rune('a' + i))
			}
			assert.Len(t, WordGrams(tokens, tt.min, tt.max), tt.want)
		})
	}
}

func TestWordGrams_PhrasesAndPositions(t *testing.T) {
	tokens := []string{"great", "is", "your", "power", "and", "your", "wisdom", "infinite"}

	grams := WordGrams(tokens, 2, 4)
	require.Len(t, grams, 18)

	byPhrase := make(map[string]Gram, len(grams))
	for _, g := range grams {
		// The repeated "your" makes distinct starts share nothing here;
		// keep the first occurrence per phrase.
		if _, ok := byPhrase[g.Phrase]; !ok {
			byPhrase[g.Phrase] = g
		}
	}

	assert.Equal(t, Gram{Phrase: "great is", Start: 0, Length: 2}, byPhrase["great is"])
	assert.Equal(t, Gram{Phrase: "great is your", Start: 0, Length: 3}, byPhrase["great is your"])
	assert.Equal(t, Gram{Phrase: "is your power and", Start: 1, Length: 4}, byPhrase["is your power and"])
	assert.Equal(t, Gram{Phrase: "your wisdom infinite", Start: 5, Length: 3}, byPhrase["your wisdom infinite"])
}

func TestWordGrams_ClampsToDocumentLength(t *testing.T) {
	tokens := []string{"faith", "hope", "love"}

	grams := WordGrams(tokens, 2, 10)

	for _, g := range grams {
		assert.LessOrEqual(t, int(g.Length), len(tokens))
		assert.LessOrEqual(t, int(g.Start+g.Length), len(tokens))
	}
}

func TestCharTrigrams(t *testing.T) {
	grams := CharTrigrams("love of god")

	want := []Trigram{
		{Gram: "lov", Offset: 0},
		{Gram: "ove", Offset: 1},
		{Gram: "ve ", Offset: 2},
		{Gram: "e o", Offset: 3},
		{Gram: " of", Offset: 4},
		{Gram: "of ", Offset: 5},
		{Gram: "f g", Offset: 6},
		{Gram: " go", Offset: 7},
		{Gram: "god", Offset: 8},
	}
	assert.Equal(t, want, grams)
}

func TestCharTrigrams_Short(t *testing.T) {
	assert.Nil(t, CharTrigrams(""))
	assert.Nil(t, CharTrigrams("ab"))
	assert.Equal(t, []Trigram{{Gram: "a b", Offset: 0}}, CharTrigrams("a b"))
}

func TestTrigramSet_SubsetOfContainingText(t *testing.T) {
	// Every trigram of a phrase appears in the trigram set of any text the
	// phrase occurs in verbatim; the fuzzy prefilter depends on this.
	content := "faith in the lord brings great hope"
	phrase := "lord brings great"

	contentSet := TrigramSet(content)
	for g := range TrigramSet(phrase) {
		_, ok := contentSet[g]
		assert.True(t, ok, "missing trigram %q", g)
	}
}

func TestDiceCoefficient(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "kingdom", b: "kingdom", want: 1.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
		{name: "empty against text", a: "", b: "kingdom", want: 0.0},
		{name: "both empty", a: "", b: "", want: 0.0},
		// "night" and "nacht": night={nig, igh, ght}, nacht={nac, ach, cht};
		// no shared trigrams.
		{name: "classic bigram example shares nothing at trigram size", a: "night", b: "nacht", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DiceCoefficient(TrigramSet(tt.a), TrigramSet(tt.b)), 1e-12)
		})
	}
}

func TestDiceCoefficient_PartialOverlap(t *testing.T) {
	a := TrigramSet("abcd") // abc, bcd
	b := TrigramSet("abce") // abc, bce

	assert.InDelta(t, 0.5, DiceCoefficient(a, b), 1e-12)
}
