package llm

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-curator/internal/ranking"
	"github.com/jonathan/resume-curator/internal/types"
)

// heuristicProvider scores bullets offline by tag overlap with the job description and by
// priority. It needs no credentials and never fails except on cancellation.
type heuristicProvider struct{}

// NewHeuristicProvider returns the offline provider.
func NewHeuristicProvider() Provider {
	return heuristicProvider{}
}

func (heuristicProvider) Name() ProviderID { return Heuristic }

func (heuristicProvider) IsAvailable() bool { return true }

func (heuristicProvider) Select(ctx context.Context, req Request) (*types.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelledError(Heuristic, err)
	}

	ranked := ranking.RankBullets(req.Compendium, req.JobDescription)
	count := req.Count()
	if count > len(ranked) {
		count = len(ranked)
	}

	bullets := make([]types.ScoredBullet, 0, count)
	matched := 0
	for _, r := range ranked[:count] {
		bullets = append(bullets, types.ScoredBullet{ID: r.BulletID, Score: r.Score})
		if len(r.MatchedTags) > 0 {
			matched++
		}
	}

	return &types.ProviderResult{
		Bullets:   bullets,
		Reasoning: fmt.Sprintf("Scored offline from tag overlap and priority; %d of %d picks match tags in the job description.", matched, count),
		Provider:  string(Heuristic),
	}, nil
}
