package search

// TrigramScore returns the trigram similarity between query and the document
// title, following pg_trgm: each word is padded with two leading spaces and one
// trailing space, and the score is the size of the shared trigram set divided
// by the size of the union. The result is in [0, 1].
func TrigramScore(query string, doc Document) float64 {
	return Similarity(query, doc.Title)
}

func Similarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)

	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0

	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}

	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, word := range words(s) {
		padded := []rune("  " + word + " ")

		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}

	return set
}
