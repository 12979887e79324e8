package utils

import (
	"strings"

	"github.com/gosimple/unidecode"
)

// NormalizeName ASCII-folds and lowercases a dancer name for search
// (e.g. "Zoë  García" → "zoe garcia").
func NormalizeName(name string) string {
	folded := unidecode.Unidecode(name)
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
