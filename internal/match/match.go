// Package match scores string similarity for duplicate detection across
// products and counterparties. Scores are in [0,100]; 100 means identical
// after normalisation. This is a heuristic: no false-negative guarantee.
package match

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// Normalize lowercases (Unicode case folding) and trims the input.
func Normalize(s string) string {
	return strings.TrimSpace(fold.String(s))
}

// Ratio is the plain edit-distance similarity of two strings.
func Ratio(a, b string) int {
	return fuzzy.Ratio(Normalize(a), Normalize(b))
}

// TokenSortRatio compares strings after sorting their tokens, making the
// score order-insensitive.
func TokenSortRatio(a, b string) int {
	return fuzzy.TokenSortRatio(Normalize(a), Normalize(b))
}

// TokenSetRatio compares the token sets of both strings; insensitive to
// word order and repeated tokens. Preferred for name+variant composites
// where OCR word order is unreliable.
func TokenSetRatio(a, b string) int {
	return fuzzy.TokenSetRatio(Normalize(a), Normalize(b))
}

// Equal reports whether two strings are identical after normalisation.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
