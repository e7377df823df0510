// Package textutil provides string similarity scoring for fuzzy title
// matching. The ratio implemented here follows the Ratcliff/Obershelp
// algorithm: twice the number of matching characters divided by the total
// length of both strings, with matches found greedily around the longest
// common substring.
package textutil

// Ratio returns a similarity score in [0, 1] for the two strings.
// Two empty strings are considered identical (ratio 1).
func Ratio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}
	matched := matchTotal(ar, br)
	return 2 * float64(matched) / float64(total)
}

// matchTotal sums the sizes of all matching blocks by recursing on either
// side of the longest common substring.
func matchTotal(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchTotal(a[:ai], b[:bi]) + matchTotal(a[ai+size:], b[bi+size:])
}

// longestMatch locates the longest common substring of a and b. Ties are
// broken toward the earliest position in a, then the earliest in b, which
// keeps the overall score deterministic.
func longestMatch(a, b []rune) (ai, bi, size int) {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	j2len := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int)
		for _, j := range b2j[r] {
			k := j2len[j-1] + 1
			next[j] = k
			if k > size {
				ai = i - k + 1
				bi = j - k + 1
				size = k
			}
		}
		j2len = next
	}
	return ai, bi, size
}
