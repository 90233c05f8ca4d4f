package catalog

import (
	"github.com/jdiegots/congreso-2025/internal"
	"github.com/jdiegots/congreso-2025/internal/util"
)

type Row struct {
	ID      string
	Title   string
	Canon   string
	Anchors map[string]struct{}
	Tokens  map[string]struct{}
}

type Index struct {
	Rows         []Row
	TokenToRows  map[string][]int
	AnchorToRows map[string][]int
}

func BuildIndex(initiatives []internal.InitiativeRecord) *Index {
	idx := &Index{
		Rows:         make([]Row, 0, len(initiatives)),
		TokenToRows:  map[string][]int{},
		AnchorToRows: map[string][]int{},
	}

	for _, rec := range initiatives {
		canon := util.CleanTitle(rec.Title)
		idx.Rows = append(idx.Rows, Row{
			ID:      rec.ID,
			Title:   rec.Title,
			Canon:   canon,
			Anchors: util.ExtractAnchors(canon),
			Tokens:  util.TokenSet(canon),
		})
	}

	for i, r := range idx.Rows {
		for t := range r.Tokens {
			idx.TokenToRows[t] = append(idx.TokenToRows[t], i)
		}
		for a := range r.Anchors {
			idx.AnchorToRows[a] = append(idx.AnchorToRows[a], i)
		}
	}

	return idx
}
