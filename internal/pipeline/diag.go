package pipeline

import (
	"github.com/jdiegots/congreso-2025/internal"
)

type InitiativeSample struct {
	Zip        string
	XML        string
	Date       string
	Session    string
	Number     string
	Title      string
	Matter     string
	BestScore  string
	SecondBest string
}

// Diagnostics accumulates unresolved linkages over a run. Deputies count
// every occurrence per canonical name; initiatives keep the first occurrence
// per cleaned query text.
type Diagnostics struct {
	UnmatchedDeputies map[string]int
	AmbiguousDeputies map[string]int

	unmatchedInitiatives map[string]InitiativeSample
	unmatchedOrder       []string
	ambiguousInitiatives map[string]InitiativeSample
	ambiguousOrder       []string

	ParseFailures []internal.ParseFailure
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		UnmatchedDeputies:    map[string]int{},
		AmbiguousDeputies:    map[string]int{},
		unmatchedInitiatives: map[string]InitiativeSample{},
		ambiguousInitiatives: map[string]InitiativeSample{},
	}
}

func (d *Diagnostics) DeputyOutcome(status internal.MatchStatus, canonicalName string) {
	switch status {
	case internal.MatchUnmatched:
		d.UnmatchedDeputies[canonicalName]++
	case internal.MatchAmbiguous:
		d.AmbiguousDeputies[canonicalName]++
	}
}

func (d *Diagnostics) InitiativeOutcome(status internal.MatchStatus, key string, sample InitiativeSample) {
	switch status {
	case internal.MatchUnmatched:
		if _, seen := d.unmatchedInitiatives[key]; !seen {
			d.unmatchedInitiatives[key] = sample
			d.unmatchedOrder = append(d.unmatchedOrder, key)
		}
	case internal.MatchAmbiguous:
		if _, seen := d.ambiguousInitiatives[key]; !seen {
			d.ambiguousInitiatives[key] = sample
			d.ambiguousOrder = append(d.ambiguousOrder, key)
		}
	}
}

func (d *Diagnostics) Failure(zip, xml, msg string) {
	d.ParseFailures = append(d.ParseFailures, internal.ParseFailure{Zip: zip, XML: xml, Error: msg})
}

func (d *Diagnostics) UnmatchedInitiatives() []InitiativeSample {
	return samplesInOrder(d.unmatchedInitiatives, d.unmatchedOrder)
}

func (d *Diagnostics) AmbiguousInitiatives() []InitiativeSample {
	return samplesInOrder(d.ambiguousInitiatives, d.ambiguousOrder)
}

func samplesInOrder(byKey map[string]InitiativeSample, order []string) []InitiativeSample {
	out := make([]InitiativeSample, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// Merge folds another accumulator into this one: counts are summed,
// first-occurrence samples keep the earlier insertion, failures append.
func (d *Diagnostics) Merge(other *Diagnostics) {
	for k, n := range other.UnmatchedDeputies {
		d.UnmatchedDeputies[k] += n
	}
	for k, n := range other.AmbiguousDeputies {
		d.AmbiguousDeputies[k] += n
	}
	for _, k := range other.unmatchedOrder {
		if _, seen := d.unmatchedInitiatives[k]; !seen {
			d.unmatchedInitiatives[k] = other.unmatchedInitiatives[k]
			d.unmatchedOrder = append(d.unmatchedOrder, k)
		}
	}
	for _, k := range other.ambiguousOrder {
		if _, seen := d.ambiguousInitiatives[k]; !seen {
			d.ambiguousInitiatives[k] = other.ambiguousInitiatives[k]
			d.ambiguousOrder = append(d.ambiguousOrder, k)
		}
	}
	d.ParseFailures = append(d.ParseFailures, other.ParseFailures...)
}
