package toolfilter

// distance computes the Levenshtein edit distance between two strings
// using two-row dynamic programming. Comparison is case-sensitive.
func distance(a, b string) int {
	la := len(a)
	lb := len(b)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			ins := prev[j] + 1
			del := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := ins
			if del < min {
				min = del
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}

// Suggest finds the candidate closest to name by edit distance. It returns
// the best candidate when the distance is at most 3, else an empty string.
// It is used both for tool selection and for mistyped command names.
func Suggest(name string, candidates []string) string {
	bestDist := -1
	bestName := ""

	for _, c := range candidates {
		d := distance(name, c)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestName = c
		}
	}

	if bestDist >= 0 && bestDist <= 3 {
		return bestName
	}
	return ""
}
