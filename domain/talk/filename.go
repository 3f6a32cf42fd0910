package talk

import (
	"strings"
	"unicode"
)

// defaultStem is used when a title sanitizes to nothing
const defaultStem = "talk"

// SanitizeTitle makes a talk title safe to use as a single path segment
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	stem := strings.Join(strings.Fields(b.String()), " ")
	stem = strings.Trim(stem, ". ")
	if stem == "" {
		return defaultStem
	}
	return stem
}
