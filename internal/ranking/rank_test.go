package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-curator/internal/types"
)

func rankCorpus() *types.Corpus {
	return &types.Corpus{Experience: []types.Company{
		{ID: "acme", Priority: 5, Children: []types.Position{{
			ID: "acme-sre", Priority: 5,
			Children: []types.Bullet{
				{ID: "acme-1", Description: "Ran Kubernetes clusters", Priority: 5, Tags: []string{"kubernetes"}},
				{ID: "acme-2", Description: "Planned offsites", Priority: 5, Tags: []string{"events"}},
			},
		}}},
		{ID: "globex", Priority: 5, Children: []types.Position{{
			ID: "globex-dev", Priority: 5,
			Children: []types.Bullet{
				{ID: "globex-1", Description: "Wrote Go services", Priority: 5, Tags: []string{"go"}},
				{ID: "globex-2", Description: "Organised meetups", Priority: 5, Tags: []string{"community"}},
			},
		}}},
	}}
}

func TestRankBullets_Ordering(t *testing.T) {
	ranked := RankBullets(rankCorpus(), "Platform engineer: Go, Kubernetes, on-call.")
	require.Len(t, ranked, 4)

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.BulletID
	}
	// matched bullets first, ties kept in corpus order
	assert.Equal(t, []string{"acme-1", "globex-1", "acme-2", "globex-2"}, ids)

	assert.Equal(t, "globex", ranked[1].CompanyID)
	assert.Equal(t, "globex-dev", ranked[1].PositionID)
	assert.Equal(t, []string{"go"}, ranked[1].MatchedTags)
	assert.Contains(t, ranked[1].Notes, "Tag match (go)")
	assert.Contains(t, ranked[3].Notes, "No tag matches")
}

func TestScoreMap_CoversCorpusInRange(t *testing.T) {
	corpus := rankCorpus()
	scores := ScoreMap(corpus, "anything")

	assert.Len(t, scores, corpus.CountBullets())
	for id, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0, id)
		assert.LessOrEqual(t, s, 1.0, id)
	}
}

func TestGenerateNotes(t *testing.T) {
	assert.Equal(t, "Tag match (go, sql). High priority", generateNotes([]string{"go", "sql"}, 9))
	assert.Equal(t, "No tag matches. Medium priority", generateNotes(nil, 5))
	assert.Equal(t, "No tag matches. Low priority", generateNotes(nil, 2))
}
