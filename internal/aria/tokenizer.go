package aria

import "strings"

// TemporalMarkers is the fixed glossary set used by the accumulator's
// temporal-adjacency signal.
var TemporalMarkers = map[string]bool{
	"then": true, "now": true, "before": true, "after": true, "when": true,
	"while": true, "during": true, "until": true, "since": true,
	"already": true, "soon": true, "later": true, "earlier": true,
	"yesterday": true, "today": true, "tomorrow": true, "always": true,
	"never": true, "once": true, "first": true, "last": true, "next": true,
	"finally": true, "eventually": true, "immediately": true,
	"suddenly": true, "gradually": true, "recently": true,
	"formerly": true, "meanwhile": true,
}

// contrastPairsList is the fixed 20-pair antonym table from the glossary.
var contrastPairsList = [][2]string{
	{"good", "bad"}, {"big", "small"}, {"hot", "cold"}, {"fast", "slow"},
	{"old", "new"}, {"high", "low"}, {"light", "dark"}, {"happy", "sad"},
	{"strong", "weak"}, {"hard", "soft"}, {"loud", "quiet"},
	{"clean", "dirty"}, {"rich", "poor"}, {"safe", "dangerous"},
	{"full", "empty"}, {"long", "short"}, {"thick", "thin"},
	{"wide", "narrow"}, {"deep", "shallow"}, {"young", "old"},
}

// ContrastPartner maps a token to its fixed antonym partner, symmetrically.
var ContrastPartner = buildContrastPartners()

func buildContrastPartners() map[string]string {
	m := make(map[string]string, len(contrastPairsList)*2)
	for _, p := range contrastPairsList {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}
	return m
}

// isTokenRune reports whether r is allowed inside a raw token run before
// normalization: letters, digits, underscore, apostrophe, hyphen.
func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '\'' || r == '-':
		return true
	default:
		return false
	}
}

// Tokenize normalizes raw text into an ordered sequence of lowercase
// tokens of length >= 2 (§4.1). It never fails — an unparseable or empty
// input simply yields a zero-length slice, which callers treat as the
// "no tokens" short-circuit.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isTokenRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
