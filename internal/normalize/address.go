package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// abbrevRules expands common Quebec roadway-type abbreviations to their full
// forms. Matching is word-boundary based on the lowercased, accent-folded
// string; an optional trailing period is consumed with the abbreviation.
// Directional words (ouest/est/nord/sud) are deliberately left untouched so
// that Core can use them as truncation markers.
var abbrevRules = []struct {
	re   *regexp.Regexp
	full string
}{
	{regexp.MustCompile(`\bave\b\.?`), "avenue"},
	{regexp.MustCompile(`\bav\b\.?`), "avenue"},
	{regexp.MustCompile(`\bch\b\.?`), "chemin"},
	{regexp.MustCompile(`\bboul\b\.?`), "boulevard"},
	{regexp.MustCompile(`\bbd\b\.?`), "boulevard"},
	{regexp.MustCompile(`\brt\b\.?`), "route"},
}

// boilerplate substrings removed after punctuation handling: the
// municipality name and province mentions add nothing to a comparison key
// and differ between the municipal register and the provincial extract.
var boilerplate = []string{"val-d'or", "(quebec)", "quebec"}

// directionals terminate the significant part of an address in Core.
var directionals = map[string]bool{
	"ouest": true, "est": true, "nord": true, "sud": true,
	"o": true, "e": true, "n": true, "s": true,
}

// accentFolder strips diacritics via canonical decomposition (NFD, drop
// combining marks, recompose).
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents removes diacritics from s. On a transform error the input is
// returned unchanged; comparison then degrades to accent-sensitive equality
// rather than failing.
func foldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// Normalize canonicalizes a free-text civic address for comparison:
// lowercase, accents stripped, abbreviations expanded, punctuation and
// municipality boilerplate removed, whitespace collapsed. Empty input yields
// the empty string. Normalize is idempotent: applying it to its own output
// returns the same string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(raw))
	s = foldAccents(s)

	for _, rule := range abbrevRules {
		s = rule.re.ReplaceAllString(s, rule.full)
	}

	// Commas and periods become spaces; runs of whitespace collapse.
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == '.' {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	for _, noise := range boilerplate {
		s = strings.ReplaceAll(s, noise, "")
	}
	return strings.Join(strings.Fields(s), " ")
}

// Core extracts the significant part of an address: the house number plus at
// most three following tokens, truncated early at the first directional
// token. Trailing directionals and locality names vary between sources and
// caused false negatives when compared verbatim.
//
//	Core("725, 3e Avenue Ouest")  == "725 3e avenue"
//	Core("1185 des Foreurs")      == "1185 des foreurs"
func Core(raw string) string {
	parts := strings.Fields(Normalize(raw))
	if len(parts) > 4 {
		parts = parts[:4]
	}
	for i, word := range parts {
		if directionals[word] {
			parts = parts[:i]
			break
		}
	}
	return strings.Join(parts, " ")
}

// Similar reports whether two addresses designate the same location for
// matching purposes: their cores are equal, or one core contains the other
// (one source often records a longer street name than the other). Blank
// addresses never match anything.
func Similar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	coreA, coreB := Core(a), Core(b)
	if coreA == "" || coreB == "" {
		return false
	}
	return coreA == coreB ||
		strings.Contains(coreA, coreB) ||
		strings.Contains(coreB, coreA)
}

// CleanAddress flattens the multi-line civic addresses found in provincial
// registry extracts into a single comma-separated line.
func CleanAddress(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ReplaceAll(raw, "\r\n", ", ")
	s = strings.ReplaceAll(s, "\n", ", ")
	return strings.TrimSpace(s)
}
