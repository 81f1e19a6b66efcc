package movie

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// symbolOnly matches queries made of nothing but punctuation.
var symbolOnly = regexp.MustCompile(`^[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>?]+$`)

// ValidateQuery checks a non-blank query before it is sent anywhere.
func ValidateQuery(query string) error {
	clean := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(clean) < 2 {
		return ErrQueryTooShort
	}
	if symbolOnly.MatchString(clean) {
		return ErrQueryMeaningless
	}
	return nil
}

// FilterLocal returns the records whose text fields contain every query term.
// A term also matches when only its first three characters are found.
func FilterLocal(query string, movies []Movie) []Movie {
	lower := cases.Lower(language.Und)
	terms := strings.Fields(lower.String(query))

	out := make([]Movie, 0)
	for _, m := range movies {
		haystack := lower.String(searchableText(m))
		if matchesAll(haystack, terms) {
			out = append(out, m)
		}
	}
	return out
}

func matchesAll(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			continue
		}
		if strings.Contains(haystack, prefix(term, 3)) {
			continue
		}
		return false
	}
	return true
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func searchableText(m Movie) string {
	fields := []string{m.Title, m.Year, m.Genre, m.Director, m.Actors, m.Plot, m.Country, m.Language, m.Type}
	parts := fields[:0]
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Merge puts local matches first, tagged as local, followed by remote
// matches, dropping any record that is the Same as an earlier one.
func Merge(local, remote []Movie) []Movie {
	combined := make([]Movie, 0, len(local)+len(remote))
	for _, m := range local {
		m.Local = true
		combined = append(combined, m)
	}
	combined = append(combined, remote...)

	out := make([]Movie, 0, len(combined))
	for _, m := range combined {
		if !containsSame(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func containsSame(list []Movie, m Movie) bool {
	for _, existing := range list {
		if Same(existing, m) {
			return true
		}
	}
	return false
}
