// Package search scores documents against free-text queries.
//
// A Strategy bundles a scoring function with the threshold a score has to pass
// for the document to count as a match, so callers can swap the matching
// algorithm without touching their filtering and ordering logic.
package search

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Document struct {
	Title string
	Body  string
}

type ScoreFunc func(query string, doc Document) float64

type Strategy struct {
	Name      string
	Score     ScoreFunc
	Threshold float64
	// Inclusive accepts scores equal to the threshold.
	Inclusive bool
}

func (s Strategy) Accepts(score float64) bool {
	if s.Inclusive {
		return score >= s.Threshold
	}

	return score > s.Threshold
}

const (
	StrategyTrigram  = "trigram"
	StrategyFullText = "fulltext"
)

var (
	// Trigram matches on title similarity.
	Trigram = Strategy{
		Name:      StrategyTrigram,
		Score:     TrigramScore,
		Threshold: 0.1,
		Inclusive: false,
	}

	// FullText ranks query terms found in the title above those found in the body.
	FullText = Strategy{
		Name:      StrategyFullText,
		Score:     FullTextRank,
		Threshold: 0.3,
		Inclusive: true,
	}
)

type UnknownStrategyError struct {
	Name string
}

func (err UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown search strategy %q", err.Name)
}

func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyTrigram:
		return Trigram, nil
	case StrategyFullText:
		return FullText, nil
	default:
		return Strategy{}, UnknownStrategyError{Name: name}
	}
}

// words lower-cases s and splits it into runs of letters and digits.
func words(s string) []string {
	lower := cases.Lower(language.Und).String(s)

	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
