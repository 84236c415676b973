package selection

import (
	"sort"

	"github.com/jonathan/resume-curator/internal/types"
)

// candidate is a scored bullet with the bookkeeping needed for ranking.
type candidate struct {
	types.SelectedBullet
	order int
}

// rankBefore orders candidates by score desc, then author priority desc, then corpus order.
func rankBefore(a, b candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Bullet.Priority != b.Bullet.Priority {
		return a.Bullet.Priority > b.Bullet.Priority
	}
	return a.order < b.order
}

// rankCandidates flattens the corpus into scored candidates. Bullets missing from scores are
// dropped; score entries for unknown ids are ignored.
func rankCandidates(corpus *types.Corpus, scores types.ScoreMap) []candidate {
	var candidates []candidate
	if corpus == nil {
		return candidates
	}

	order := 0
	for _, company := range corpus.Experience {
		for _, position := range company.Children {
			for _, bullet := range position.Children {
				if score, ok := scores[bullet.ID]; ok {
					candidates = append(candidates, candidate{
						SelectedBullet: types.SelectedBullet{
							Bullet:     bullet,
							CompanyID:  company.ID,
							PositionID: position.ID,
							Score:      score,
						},
						order: order,
					})
				}
				order++
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankBefore(candidates[i], candidates[j])
	})
	return candidates
}

// SelectBulletsWithConstraints picks the final bullet set.
//
// Candidates are walked once in rank order and admitted while the global, per-company and
// per-position limits hold. Companies below MinPerCompany are then backfilled in corpus order,
// displacing the lowest-ranked bullet of another company that sits above its own minimum.
// A minimum that cannot be met this way is returned as a Shortfall; MaxBullets is never
// exceeded. The result is in rank order and depends only on the inputs.
func SelectBulletsWithConstraints(
	corpus *types.Corpus,
	scores types.ScoreMap,
	cfg types.SelectionConfig,
) ([]types.SelectedBullet, []Shortfall, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, &ConfigError{Message: "limits must be positive with minPerCompany <= maxPerCompany <= maxBullets", Cause: err}
	}

	ranked := rankCandidates(corpus, scores)
	admitted := make([]bool, len(ranked))
	companyCount := make(map[string]int)
	positionCount := make(map[string]int)
	total := 0

	admit := func(i int) {
		admitted[i] = true
		companyCount[ranked[i].CompanyID]++
		positionCount[ranked[i].PositionID]++
		total++
	}
	evict := func(i int) {
		admitted[i] = false
		companyCount[ranked[i].CompanyID]--
		positionCount[ranked[i].PositionID]--
		total--
	}

	for i, c := range ranked {
		if total >= cfg.MaxBullets {
			break
		}
		if companyCount[c.CompanyID] >= cfg.MaxPerCompany {
			continue
		}
		if positionCount[c.PositionID] >= cfg.MaxPerPosition {
			continue
		}
		admit(i)
	}

	var shortfalls []Shortfall
	if corpus != nil {
		for _, company := range corpus.Experience {
			hasCandidates := false
			for {
				if companyCount[company.ID] >= cfg.MinPerCompany {
					break
				}

				pick := -1
				for i, c := range ranked {
					if c.CompanyID != company.ID {
						continue
					}
					hasCandidates = true
					if !admitted[i] && positionCount[c.PositionID] < cfg.MaxPerPosition {
						pick = i
						break
					}
				}
				if pick < 0 {
					break
				}

				if total < cfg.MaxBullets {
					admit(pick)
					continue
				}

				victim := -1
				for i := len(ranked) - 1; i >= 0; i-- {
					c := ranked[i]
					if admitted[i] && c.CompanyID != company.ID && companyCount[c.CompanyID] > cfg.MinPerCompany {
						victim = i
						break
					}
				}
				if victim < 0 {
					break
				}
				evict(victim)
				admit(pick)
			}

			if hasCandidates && companyCount[company.ID] < cfg.MinPerCompany {
				shortfalls = append(shortfalls, Shortfall{
					CompanyID: company.ID,
					Have:      companyCount[company.ID],
					Want:      cfg.MinPerCompany,
				})
			}
		}
	}

	selected := make([]types.SelectedBullet, 0, total)
	for i, c := range ranked {
		if admitted[i] {
			selected = append(selected, c.SelectedBullet)
		}
	}
	return selected, shortfalls, nil
}
