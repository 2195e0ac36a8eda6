package dietplan

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTag lower-cases, trims and strips diacritics so "Feijão " matches "feijao".
func NormalizeTag(tag string) string {
	// transform.Chain keeps state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, tag)
	if err != nil {
		stripped = tag
	}
	return strings.TrimSpace(strings.ToLower(stripped))
}

// NormalizeTags normalises and de-duplicates tags, keeping first-seen order and
// dropping blanks.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := NormalizeTag(tag)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		normalized = append(normalized, value)
	}
	return normalized
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range NormalizeTags(tags) {
		set[tag] = true
	}
	return set
}
