// Package similarity implements the character-level sequence ratio used for
// stagnation detection between consecutive summaries.
package similarity

import "strings"

// Ratio returns a measure of the sequences' similarity in [0, 1], computed as
// 2*M / T where M is the total size of all longest matching blocks and T is
// the total number of characters in both inputs. This is the classic
// sequence-diff ratio over runes, without junk heuristics.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	b2j := make(map[rune][]int, len(rb))
	for j, ch := range rb {
		b2j[ch] = append(b2j[ch], j)
	}

	matched := matchingSize(ra, rb, 0, len(ra), 0, len(rb), b2j)
	return 2.0 * float64(matched) / float64(total)
}

// Similar reports whether two non-empty strings are near-identical at or above
// the given ratio threshold. Empty inputs are never considered similar.
func Similar(a, b string, threshold float64) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return Ratio(a, b) >= threshold
}

// matchingSize recursively finds the longest matching block in
// a[alo:ahi] x b[blo:bhi] and sums the matches on both sides of it.
func matchingSize(a, b []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) int {
	besti, bestj, size := longestMatch(a, blo, bhi, alo, ahi, b2j)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchingSize(a, b, alo, besti, blo, bestj, b2j)
	matched += matchingSize(a, b, besti+size, ahi, bestj+size, bhi, b2j)
	return matched
}

// longestMatch finds the longest block of a[alo:ahi] that matches inside
// b[blo:bhi], using the precomputed rune-to-positions index of b.
func longestMatch(a []rune, blo, bhi, alo, ahi int, b2j map[rune][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
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
