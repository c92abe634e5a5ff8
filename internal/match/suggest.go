package match

// minSuggestScore is the normalized similarity below which no suggestion is made.
const minSuggestScore = 0.5

// Suggest returns the candidate closest to name, comparing normalized
// identifiers so that "client_official" finds "clientOfficial". Ties keep the
// earlier candidate. It returns false when nothing is close enough.
func Suggest(name string, candidates []string) (string, bool) {
	norm := NormalizeIdent(name)

	best, bestScore := "", 0.0

	for _, c := range candidates {
		if c == name {
			continue
		}

		score := LevenshteinNormalized(norm, NormalizeIdent(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	if bestScore < minSuggestScore {
		return "", false
	}

	return best, true
}
