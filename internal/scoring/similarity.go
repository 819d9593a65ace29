package scoring

// Similarity computes a normalized similarity ratio in [0, 1] between two
// strings: 2*LCS(a,b) / (len(a)+len(b)), the same shape of metric difflib
// uses. Identical strings yield 1.0; strings with no common characters
// yield 0.0. Inputs are compared as-is; callers normalize first.
func Similarity(a, b string) float64 {
	if a == b {
		if len(a) == 0 {
			return 0
		}
		return 1
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	// LCS length with a rolling row.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]

	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
