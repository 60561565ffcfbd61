// Package inventory holds product search and stock helpers for the inventory screen.
package inventory

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/jask/warehousedash/internal/api"
)

// fuzzyMinLen is the shortest query word that tolerates a typo.
const fuzzyMinLen = 4

// Match reports whether p matches query. Name, SKU and category are searched
// case-insensitively by substring; failing that, every query word of at least
// four characters must be within one edit of some word of those fields.
// An empty query matches everything.
func Match(p api.Product, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{strings.ToLower(p.Name), strings.ToLower(p.SKU), strings.ToLower(p.Category)}
	for _, f := range fields {
		if strings.Contains(f, q) {
			return true
		}
	}

	qWords := words(q)
	var candidates []string
	for _, f := range fields {
		candidates = append(candidates, words(f)...)
	}
	matched := 0
	for _, w := range qWords {
		if len([]rune(w)) < fuzzyMinLen {
			if !containsSubstring(candidates, w) {
				return false
			}
			matched++
			continue
		}
		if !nearWord(candidates, w) {
			return false
		}
		matched++
	}
	return matched > 0
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsSubstring(candidates []string, w string) bool {
	for _, c := range candidates {
		if strings.Contains(c, w) {
			return true
		}
	}
	return false
}

func nearWord(candidates []string, w string) bool {
	for _, c := range candidates {
		if strings.Contains(c, w) || levenshtein.ComputeDistance(c, w) <= 1 {
			return true
		}
	}
	return false
}
