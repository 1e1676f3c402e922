package pipeline

// similarityRatio is the Ratcliff/Obershelp character-sequence ratio:
// twice the number of matching characters over the combined length,
// where matches are found by recursing around the longest common
// substring. Returns a value in [0, 1].
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	matches := matchingChars([]rune(a), []rune(b))
	return 2.0 * float64(matches) / float64(len([]rune(a))+len([]rune(b)))
}

func matchingChars(a, b []rune) int {
	aStart, aLen, bStart, bLen := longestCommonSubstring(a, b)
	if aLen == 0 {
		return 0
	}

	matches := aLen
	matches += matchingChars(a[:aStart], b[:bStart])
	matches += matchingChars(a[aStart+aLen:], b[bStart+bLen:])
	return matches
}

func longestCommonSubstring(a, b []rune) (aStart, aLen, bStart, bLen int) {
	// prev[j] holds the match length ending at a[i-1], b[j-1]
	prev := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				current[j] = prev[j-1] + 1
				if current[j] > aLen {
					aLen = current[j]
					bLen = current[j]
					aStart = i - current[j]
					bStart = j - current[j]
				}
			}
		}
		prev = current
	}

	return aStart, aLen, bStart, bLen
}
