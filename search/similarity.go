package search

// Ratio computes Ratcliff/Obershelp similarity between two strings over
// runes: twice the number of characters in matching blocks, divided by
// the combined length. Matching blocks are found by taking the longest
// common block, then recursing on the pieces to either side. Identical
// strings score 1.0, as do two empty strings; strings with no runes in
// common score 0.
func Ratio(a, b string) float64 {
	left := []rune(a)
	right := []rune(b)
	total := len(left) + len(right)
	if total == 0 {
		return 1.0
	}

	m := newMatcher(left, right)
	return 2 * float64(m.matchTotal(0, len(left), 0, len(right))) / float64(total)
}

type matcher struct {
	a, b []rune

	// b2j maps each rune of b to its positions, ascending.
	b2j map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// longestMatch finds the longest block with a[i:i+k] == b[j:j+k],
// alo <= i <= i+k <= ahi and blo <= j <= j+k <= bhi. Among maximal
// blocks it prefers the one starting earliest in a, then earliest in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] is the length of the longest block ending with a[i-1]
	// and b[j] after processing row i-1.
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}

// matchTotal sums matching rune counts over the recursion: the longest
// block, then the regions to its left and to its right.
func (m *matcher) matchTotal(alo, ahi, blo, bhi int) int {
	i, j, k := m.longestMatch(alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	return k + m.matchTotal(alo, i, blo, j) + m.matchTotal(i+k, ahi, j+k, bhi)
}
