package roster

import (
	"github.com/jdiegots/congreso-2025/internal"
	"github.com/jdiegots/congreso-2025/internal/util"
)

type Index struct {
	KeyToIDs map[string][]string
	NameByID map[string]string
}

func BuildIndex(deputies []internal.DeputyRecord) *Index {
	idx := &Index{
		KeyToIDs: map[string][]string{},
		NameByID: map[string]string{},
	}
	for _, d := range deputies {
		key := util.CanonicalizeName(d.Name)
		if key == "" {
			continue
		}
		idx.NameByID[d.ID] = d.Name
		idx.KeyToIDs[key] = append(idx.KeyToIDs[key], d.ID)
	}
	return idx
}

// Match resolves a printed name by exact canonical-key lookup; the decision
// is cardinality based.
func (idx *Index) Match(rawName string) internal.DeputyMatch {
	ids := idx.KeyToIDs[util.CanonicalizeName(rawName)]
	switch len(ids) {
	case 0:
		return internal.DeputyMatch{Status: internal.MatchUnmatched}
	case 1:
		return internal.DeputyMatch{ID: ids[0], Score: 1.0, Status: internal.MatchOK}
	default:
		return internal.DeputyMatch{Status: internal.MatchAmbiguous}
	}
}
