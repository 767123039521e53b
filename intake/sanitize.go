package intake

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var disallowedChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFilename strips path components, shell metacharacters, and
// control characters, NFKD-normalizes, restricts to [A-Za-z0-9._-],
// truncates to 200 characters, and falls back to "unnamed" for an empty
// or dot-led result. It is idempotent:
// SanitizeFilename(SanitizeFilename(x)) == SanitizeFilename(x).
func SanitizeFilename(name string) string {
	// Drop any path components; only the base name is meaningful.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	name = b.String()

	name = disallowedChars.ReplaceAllString(name, "_")

	if len(name) > 200 {
		name = name[:200]
	}

	if name == "" || strings.HasPrefix(name, ".") {
		return "unnamed"
	}

	return name
}
