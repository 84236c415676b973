package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-curator/internal/types"
)

// RankedBullet is one bullet's heuristic score.
type RankedBullet struct {
	BulletID    string   `json:"bulletId"`
	CompanyID   string   `json:"companyId"`
	PositionID  string   `json:"positionId"`
	Score       float64  `json:"score"`
	MatchedTags []string `json:"matchedTags,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// RankBullets scores every bullet in the corpus against the job description and returns them
// sorted by score descending, ties in corpus order.
func RankBullets(corpus *types.Corpus, jobDescription string) []RankedBullet {
	weights := TagWeightsFromJobDescription(corpus, jobDescription)

	ranked := make([]RankedBullet, 0, corpus.CountBullets())
	for ci := range corpus.Experience {
		company := &corpus.Experience[ci]
		for pi := range company.Children {
			position := &company.Children[pi]
			for bi := range position.Children {
				bullet := &position.Children[bi]
				score, matched := ScoreBullet(bullet, position, company, weights)
				ranked = append(ranked, RankedBullet{
					BulletID:    bullet.ID,
					CompanyID:   company.ID,
					PositionID:  position.ID,
					Score:       score,
					MatchedTags: matched,
					Notes:       generateNotes(matched, bullet.Priority),
				})
			}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ScoreMap returns every bullet's heuristic score keyed by bullet id.
func ScoreMap(corpus *types.Corpus, jobDescription string) types.ScoreMap {
	ranked := RankBullets(corpus, jobDescription)
	scores := make(types.ScoreMap, len(ranked))
	for _, r := range ranked {
		scores[r.BulletID] = r.Score
	}
	return scores
}

func generateNotes(matched []string, priority int) string {
	var parts []string
	if len(matched) > 0 {
		parts = append(parts, fmt.Sprintf("Tag match (%s)", strings.Join(matched, ", ")))
	} else {
		parts = append(parts, "No tag matches")
	}

	switch {
	case priority >= 8:
		parts = append(parts, "High priority")
	case priority >= 5:
		parts = append(parts, "Medium priority")
	default:
		parts = append(parts, "Low priority")
	}
	return strings.Join(parts, ". ")
}
