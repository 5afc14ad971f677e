package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NameKey folds a planet name into its lookup key: NFKC normalized, case folded,
// inner whitespace collapsed. "TRAPPIST-1 e" and "trappist-1  E" share a key.
func NameKey(name string) string {
	folded := cases.Fold().String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}
