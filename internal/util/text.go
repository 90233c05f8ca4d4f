package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	rePunct   = regexp.MustCompile(`[“”"'.,;:()\[\]{}!?¿¡]`)
	reSpaces  = regexp.MustCompile(`\s+`)
	reAnchor  = regexp.MustCompile(`\b\d{1,4}/\d{4}\b`)
	breakRepl = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")
)

// Canonicalize lower-cases, strips diacritics, replaces punctuation with
// spaces (slash kept so references like 12/2023 survive) and collapses
// whitespace. Idempotent.
func Canonicalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ReplaceAll(raw, "­", "")
	s = breakRepl.Replace(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripAccents(s)
	s = rePunct.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CanonicalizeName reorders a single "surname, given" comma to
// "given surname" before canonicalizing.
func CanonicalizeName(raw string) string {
	t := strings.TrimSpace(raw)
	if strings.Count(t, ",") == 1 {
		i := strings.Index(t, ",")
		surname := strings.TrimSpace(t[:i])
		given := strings.TrimSpace(t[i+1:])
		t = strings.TrimSpace(given + " " + surname)
	}
	return Canonicalize(t)
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// TokenSet returns the canonical words longer than two runes.
func TokenSet(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Split(Canonicalize(text), " ") {
		if utf8.RuneCountInString(w) > 2 {
			out[w] = struct{}{}
		}
	}
	return out
}

func ExtractAnchors(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, a := range reAnchor.FindAllString(text, -1) {
		out[a] = struct{}{}
	}
	return out
}

func TokenDice(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return 2 * float64(inter) / float64(len(a)+len(b))
}

// SequenceRatio is the SequenceMatcher similarity over runes.
func SequenceRatio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// CombinedSimilarity blends the sequence ratio with token overlap; an empty
// side scores zero.
func CombinedSimilarity(a, b string) float64 {
	a2 := Canonicalize(a)
	b2 := Canonicalize(b)
	if a2 == "" || b2 == "" {
		return 0
	}
	seq := SequenceRatio(a2, b2)
	tok := TokenDice(TokenSet(a2), TokenSet(b2))
	return 0.6*seq + 0.4*tok
}
