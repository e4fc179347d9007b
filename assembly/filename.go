package assembly

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeTitle turns an event title into a safe file name stem: runs of
// whitespace become "_", accents are folded to ASCII and anything outside
// [A-Za-z0-9._-] is dropped. An empty result becomes "report".
func SanitizeTitle(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var sb strings.Builder
	for _, field := range strings.Fields(folded) {
		if sb.Len() > 0 {
			sb.WriteByte('_')
		}
		for _, r := range field {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-') {
				sb.WriteRune(r)
			}
		}
	}
	name := strings.Trim(sb.String(), "._")
	if name == "" {
		return "report"
	}
	return name
}

// OutputPath is where the report for title is written.
func OutputPath(outputDir, title string) string {
	return filepath.Join(outputDir, SanitizeTitle(title)+".docx")
}
