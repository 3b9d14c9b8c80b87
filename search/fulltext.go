package search

// Weights of the title (A) and body (B) sections, as in PostgreSQL's ts_rank defaults.
const (
	weightTitle = 1.0
	weightBody  = 0.4
)

// FullTextRank scores the share of query terms present in the document. A term
// found in the title counts with the title weight, a term found only in the
// body counts with the body weight.
func FullTextRank(query string, doc Document) float64 {
	terms := uniqueWords(query)
	if len(terms) == 0 {
		return 0
	}

	titleTerms := wordSet(doc.Title)
	bodyTerms := wordSet(doc.Body)

	var total float64

	for _, term := range terms {
		switch {
		case contains(titleTerms, term):
			total += weightTitle
		case contains(bodyTerms, term):
			total += weightBody
		}
	}

	return total / float64(len(terms))
}

func uniqueWords(s string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)

	for _, w := range words(s) {
		if _, ok := seen[w]; ok {
			continue
		}

		seen[w] = struct{}{}
		result = append(result, w)
	}

	return result
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, w := range words(s) {
		set[w] = struct{}{}
	}

	return set
}

func contains(set map[string]struct{}, w string) bool {
	_, ok := set[w]

	return ok
}
