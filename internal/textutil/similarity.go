package textutil

// Levenshtein returns the edit distance between a and b measured in runes.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity returns 1 - Levenshtein(a, b) / max(len(a), len(b)).
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// Candidate is a scored comparison target.
type Candidate struct {
	Index int
	Value string
	Score float64
}

// BestMatch returns the highest scoring candidate for needle. Ties keep the
// earliest candidate. ok is false when candidates is empty.
func BestMatch(needle string, candidates []string) (best Candidate, ok bool) {
	for i, value := range candidates {
		score := Similarity(needle, value)
		if !ok || score > best.Score {
			best = Candidate{Index: i, Value: value, Score: score}
			ok = true
		}
	}
	return best, ok
}
