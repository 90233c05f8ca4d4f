package util

import (
	"math"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accents and case", input: "Ley Orgánica", want: "ley organica"},
		{name: "already plain", input: "LEY ORGANICA", want: "ley organica"},
		{name: "punctuation to space", input: "Hola, ¿qué tal? (bien)", want: "hola que tal bien"},
		{name: "slash preserved", input: "Ley 12/2023.", want: "ley 12/2023"},
		{name: "soft hyphen removed", input: "movi­lidad", want: "movilidad"},
		{name: "line breaks and tabs", input: "una\nley\tmuy\r\nlarga", want: "una ley muy larga"},
		{name: "whitespace collapsed", input: "  ley   de   bases  ", want: "ley de bases"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Canonicalize(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if again := Canonicalize(got); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCanonicalizeName(t *testing.T) {
	if got, want := CanonicalizeName("García, Ana"), CanonicalizeName("Ana García"); got != want {
		t.Fatalf("comma reorder mismatch: %q vs %q", got, want)
	}
	if got := CanonicalizeName("García, Ana"); got != "ana garcia" {
		t.Fatalf("got %q", got)
	}
	// Two commas means the format is not "surname, given"; leave order alone.
	if got := CanonicalizeName("a, b, c"); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestTokenSet(t *testing.T) {
	got := TokenSet("de la Movilidad Sostenible")
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	for _, tok := range []string{"movilidad", "sostenible"} {
		if _, ok := got[tok]; !ok {
			t.Fatalf("missing %q in %v", tok, got)
		}
	}
}

func TestExtractAnchors(t *testing.T) {
	got := ExtractAnchors("ley 9/2025 y real decreto-ley 14/2025")
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	for _, a := range []string{"9/2025", "14/2025"} {
		if _, ok := got[a]; !ok {
			t.Fatalf("missing %q in %v", a, got)
		}
	}
	if got := ExtractAnchors("sin referencias"); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestTokenDice(t *testing.T) {
	a := TokenSet("movilidad sostenible urbana")
	b := TokenSet("movilidad sostenible rural")
	if got, want := TokenDice(a, b), 2.0*2/6; math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v want %v", got, want)
	}
	if TokenDice(a, map[string]struct{}{}) != 0 {
		t.Fatal("empty set should score 0")
	}
}

func TestSequenceRatio(t *testing.T) {
	if got := SequenceRatio("abc", "abc"); got != 1 {
		t.Fatalf("got %v", got)
	}
	if got := SequenceRatio("abcd", "xyzw"); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestCombinedSimilarity(t *testing.T) {
	if got := CombinedSimilarity("Movilidad Sostenible", "movilidad sostenible"); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical canon should score 1, got %v", got)
	}
	if got := CombinedSimilarity("", "algo"); got != 0 {
		t.Fatalf("empty side should score 0, got %v", got)
	}
	got := CombinedSimilarity("plan de vivienda", "ley de presupuestos")
	if got < 0 || got > 1 {
		t.Fatalf("score out of range: %v", got)
	}
}
