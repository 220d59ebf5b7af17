// internal/extraction/reconcile.go
package extraction

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"loan-intake-workers/internal/models"
)

// FuzzyMatchThreshold is the minimum similarity for a fuzzy match against a required field.
const FuzzyMatchThreshold = 0.8

// Reconcile maps a backend field name onto the profile's canonical vocabulary.
// It tries a direct alias, a normalized alias, then a fuzzy match against the
// required fields. When nothing matches it returns the raw name with spaces
// stripped and false.
func Reconcile(rawName string, profile *DocumentTypeProfile) (models.FieldName, bool) {
	if profile == nil {
		return models.FieldName(stripSpaces(rawName)), false
	}

	if canonical, ok := profile.FieldNameAliases[rawName]; ok {
		return canonical, true
	}

	norm := normalizeLabel(rawName)
	if norm == "" {
		return "", false
	}

	aliasKeys := make([]string, 0, len(profile.FieldNameAliases))
	for k := range profile.FieldNameAliases {
		aliasKeys = append(aliasKeys, k)
	}
	sort.Strings(aliasKeys)
	for _, k := range aliasKeys {
		if normalizeLabel(k) == norm {
			return profile.FieldNameAliases[k], true
		}
	}

	if best, ok := closestRequired(norm, profile.RequiredFields); ok {
		return best, true
	}

	return models.FieldName(stripSpaces(rawName)), false
}

// Similarity is the difflib sequence ratio of a and b, compared rune by rune.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func closestRequired(norm string, required []models.FieldName) (models.FieldName, bool) {
	var (
		best      models.FieldName
		bestRatio float64
	)
	for _, f := range required {
		ratio := Similarity(norm, normalizeLabel(string(f)))
		if ratio > bestRatio {
			best, bestRatio = f, ratio
		}
	}
	if bestRatio >= FuzzyMatchThreshold {
		return best, true
	}
	return "", false
}

// normalizeLabel lowercases s and drops all whitespace.
func normalizeLabel(s string) string {
	return strings.ToLower(stripSpaces(s))
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
