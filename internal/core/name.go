package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ArtifactSuffix is appended to every rendered ticket file name, before the
// extension.
const ArtifactSuffix = "_ticket"

// stripMarks decomposes, drops combining marks, and recomposes, so
// "Zoë Åberg" becomes "Zoe Aberg".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ArtifactName returns the deterministic file name for a participant's ticket:
// the name with diacritics removed, spaces replaced by underscores, and
// path separators or control characters dropped, followed by
// ArtifactSuffix and ext (e.g. ".png").
func ArtifactName(name, ext string) string {
	base, _, err := transform.String(stripMarks, strings.TrimSpace(name))
	if err != nil {
		base = strings.TrimSpace(name)
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '/' || r == '\\' || r == ':' || unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		out = "participant"
	}
	return out + ArtifactSuffix + ext
}
