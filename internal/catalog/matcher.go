package catalog

import (
	"sort"

	"github.com/jdiegots/congreso-2025/internal"
	"github.com/jdiegots/congreso-2025/internal/config"
	"github.com/jdiegots/congreso-2025/internal/util"
)

// scoreLawMatch is the near-certain score for two titles carrying the same
// law number; a law-number mismatch is a hard negative regardless of prose.
const scoreLawMatch = 0.99

type Matcher struct {
	cfg   config.Config
	index *Index
}

func NewMatcher(cfg config.Config, initiatives []internal.InitiativeRecord) *Matcher {
	return &Matcher{cfg: cfg, index: BuildIndex(initiatives)}
}

func (m *Matcher) Match(rawText string) internal.InitiativeMatch {
	canon := util.CleanTitle(rawText)
	if canon == "" {
		return internal.InitiativeMatch{Status: internal.MatchUnmatched}
	}

	candidates := m.retrieve(canon)
	queryRef := util.LawReference(canon)

	best, second := -1.0, -1.0
	bestI, secondI := -1, -1
	for _, i := range candidates {
		sc := m.score(canon, queryRef, m.index.Rows[i])
		if sc > best {
			secondI, second = bestI, best
			bestI, best = i, sc
		} else if sc > second {
			secondI, second = i, sc
		}
	}
	if bestI < 0 {
		return internal.InitiativeMatch{Status: internal.MatchUnmatched}
	}

	var runnerUp *internal.Candidate
	if secondI >= 0 {
		runnerUp = &internal.Candidate{ID: m.index.Rows[secondI].ID, Score: second}
	}

	out := internal.InitiativeMatch{Score: best, Second: runnerUp}
	out.Status = m.decide(best, second, secondI >= 0)
	if out.Status == internal.MatchOK {
		out.ID = m.index.Rows[bestI].ID
	}
	return out
}

// retrieve returns candidate row positions in ascending order: anchor hits,
// then token hits when anchors yield nothing usable, then the whole catalog.
func (m *Matcher) retrieve(canon string) []int {
	set := map[int]struct{}{}
	for a := range util.ExtractAnchors(canon) {
		for _, i := range m.index.AnchorToRows[a] {
			set[i] = struct{}{}
		}
	}

	if len(set) == 0 || len(set) > m.cfg.CandidateAnchorMax {
		for t := range util.TokenSet(canon) {
			for _, i := range m.index.TokenToRows[t] {
				set[i] = struct{}{}
			}
		}
	}

	if len(set) == 0 {
		out := make([]int, len(m.index.Rows))
		for i := range out {
			out[i] = i
		}
		return m.prune(out, canon)
	}

	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return m.prune(out, canon)
}

func (m *Matcher) prune(candidates []int, canon string) []int {
	if len(candidates) <= m.cfg.CandidatePruneAt {
		return candidates
	}
	queryTokens := util.TokenSet(canon)
	type overlap struct {
		inter int
		pos   int
	}
	scored := make([]overlap, 0, len(candidates))
	for _, i := range candidates {
		inter := 0
		for t := range m.index.Rows[i].Tokens {
			if _, ok := queryTokens[t]; ok {
				inter++
			}
		}
		scored = append(scored, overlap{inter: inter, pos: i})
	}
	sort.Slice(scored, func(a, b int) bool {
		if scored[a].inter != scored[b].inter {
			return scored[a].inter > scored[b].inter
		}
		return scored[a].pos < scored[b].pos
	})
	if len(scored) > m.cfg.CandidateShortlist {
		scored = scored[:m.cfg.CandidateShortlist]
	}
	out := make([]int, len(scored))
	for i, s := range scored {
		out[i] = s.pos
	}
	sort.Ints(out)
	return out
}

func (m *Matcher) score(canon, queryRef string, row Row) float64 {
	rowRef := util.LawReference(row.Canon)
	if queryRef != "" && rowRef != "" {
		if queryRef == rowRef {
			return scoreLawMatch
		}
		return 0
	}
	return util.CombinedSimilarity(canon, row.Canon)
}

func (m *Matcher) decide(best, second float64, hasSecond bool) internal.MatchStatus {
	gap := best
	if hasSecond {
		gap = best - second
	}
	switch {
	case best >= m.cfg.MatchHighThreshold:
		return internal.MatchOK
	case best >= m.cfg.MatchMidThreshold && gap >= m.cfg.MatchGapThreshold:
		return internal.MatchOK
	case hasSecond && gap < m.cfg.MatchGapThreshold && best >= m.cfg.MatchAmbiguousFloor:
		return internal.MatchAmbiguous
	case best >= m.cfg.MatchAmbiguousFloor:
		return internal.MatchAmbiguous
	default:
		return internal.MatchUnmatched
	}
}
