package util

import (
	"regexp"
	"strings"
)

type rewriteRule struct {
	pattern *regexp.Regexp
	repl    string
}

// Rules operate on canonicalized text, so accents are already stripped and
// everything is lower case.
const lawType = `(?:proyecto de ley organica|proyecto de ley|proposicion de ley|real decreto-ley|real decreto legislativo|ley organica|ley)`

// Longer patterns must run before the shorter ones they contain.
var titleRules = []rewriteRule{
	// Leading document-type keyword up through its connector.
	{regexp.MustCompile(`^(?:dictamen|convalidacion|derogacion|enmienda|informe|ratificacion)\b.*?(?:sobre|del|de la|de el|de)\b`), ""},
	// Proposing-group boilerplate collapses down to its "para".
	{regexp.MustCompile(`\bdel grupo parlamentario\b.*?\bpara\b`), " para "},
	{regexp.MustCompile(`\bde los grupos parlamentarios\b.*?\bpara\b`), " para "},
	{regexp.MustCompile(`\bdel gobierno\b`), ""},
	// Law-type prefixes, longest form first.
	{regexp.MustCompile(`^` + lawType + `\s+\d+/\d{4},?\s+de\s+\d{1,2}\s+de\s+[a-z]+,?`), ""},
	{regexp.MustCompile(`^` + lawType + `\s+\d+/\d{4},?`), ""},
	{regexp.MustCompile(`^` + lawType + `\b`), ""},
	// Leading connector phrases.
	{regexp.MustCompile(`^(?:por (?:la|el) que se (?:modifica|aprueba|crea|adoptan)|por (?:la|el) que se|de medidas|relativa? a|de)\b`), ""},
}

var reLawRef = regexp.MustCompile(`(?:ley|decreto-ley|real decreto-ley|ley organica)\s+(\d+/\d{4})`)

// CleanTitle canonicalizes a title and applies the rewrite rules, each at
// most once, in order.
func CleanTitle(raw string) string {
	t := Canonicalize(raw)
	for _, r := range titleRules {
		t = strings.TrimSpace(r.pattern.ReplaceAllString(t, r.repl))
	}
	return strings.TrimSpace(reSpaces.ReplaceAllString(t, " "))
}

// LawReference returns the number/year of the first law-type reference in a
// canonical title, or empty. The number must sit next to a law-type keyword.
func LawReference(canon string) string {
	m := reLawRef.FindStringSubmatch(canon)
	if m == nil {
		return ""
	}
	return m[1]
}
