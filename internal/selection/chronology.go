package selection

import (
	"sort"

	"github.com/jonathan/resume-curator/internal/types"
)

// ReorderByCompanyChronology orders selected bullets for presentation: companies follow corpus
// (resume) order, bullets inside a company follow score desc, priority desc, corpus order.
// It never adds, drops or alters a bullet and is idempotent.
func ReorderByCompanyChronology(selected []types.SelectedBullet, corpus *types.Corpus) []types.SelectedBullet {
	companyRank := make(map[string]int)
	var index map[string]types.Location
	if corpus != nil {
		for i, company := range corpus.Experience {
			companyRank[company.ID] = i
		}
		index = corpus.Index()
	}

	rankOf := func(companyID string) int {
		if r, ok := companyRank[companyID]; ok {
			return r
		}
		// unknown companies sink to the end
		return len(companyRank)
	}

	items := make([]candidate, len(selected))
	for i, sb := range selected {
		order := len(index) + i
		if loc, ok := index[sb.Bullet.ID]; ok {
			order = loc.Order
		}
		items[i] = candidate{SelectedBullet: sb, order: order}
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rankOf(items[i].CompanyID), rankOf(items[j].CompanyID)
		if ri != rj {
			return ri < rj
		}
		if items[i].CompanyID != items[j].CompanyID {
			return items[i].CompanyID < items[j].CompanyID
		}
		return rankBefore(items[i], items[j])
	})

	out := make([]types.SelectedBullet, len(items))
	for i, item := range items {
		out[i] = item.SelectedBullet
	}
	return out
}
