// Package typoutil matches misspelled catalog names against a known vocabulary.
package typoutil

// Distance returns the Damerau-Levenshtein distance between a and b, counting
// adjacent transpositions as one edit. Once the distance is known to exceed
// maxDistance it stops and returns maxDistance + 1. A negative maxDistance
// disables the limit.
func Distance(a, b string, maxDistance int) int {
	ra, rb := []rune(a), []rune(b)
	if maxDistance < 0 {
		maxDistance = len(ra) + len(rb)
	}
	if abs(len(ra)-len(rb)) > maxDistance {
		return maxDistance + 1
	}
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Three rows: i-2 is needed for transpositions.
	prevPrev := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				curr[j] = min(curr[j], prevPrev[j-2]+cost)
			}
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > maxDistance {
			return maxDistance + 1
		}
		prevPrev, prev, curr = prev, curr, prevPrev
	}
	return prev[len(rb)]
}

// Closest returns the candidate nearest to word within maxDistance.
// Ties keep the earlier candidate.
func Closest(word string, candidates []string, maxDistance int) (string, int, bool) {
	best, bestDist := "", maxDistance+1
	for _, candidate := range candidates {
		d := Distance(word, candidate, maxDistance)
		if d < bestDist {
			best, bestDist = candidate, d
			if d == 0 {
				break
			}
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestDist, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
