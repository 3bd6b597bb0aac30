package extract

import (
	"strings"
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	`\"`, `"`,
)

// CleanText canonicalizes extracted text: double quotes (straight or
// typographic) are removed, runs of Unicode whitespace (including NBSP)
// collapse to one space, and the result is trimmed. CleanText(CleanText(s)) == CleanText(s).
func CleanText(s string) string {
	s = quoteReplacer.Replace(s)
	s = strings.ReplaceAll(s, `"`, "")
	return strings.Join(strings.Fields(s), " ")
}
