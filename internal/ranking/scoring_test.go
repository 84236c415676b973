package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-curator/internal/types"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Go", "go"},
		{"distributed-systems", "distributed systems"},
		{"  C++ & C#,  k8s!! ", "c++ c# k8s"},
		{"machine_learning", "machine learning"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeText(tt.input), "input %q", tt.input)
	}
}

func TestTagWeightsFromJobDescription(t *testing.T) {
	corpus := &types.Corpus{Experience: []types.Company{{
		ID: "c", Priority: 5, Tags: []string{"fintech"},
		Children: []types.Position{{
			ID: "p", Priority: 5, Tags: []string{"leadership"},
			Children: []types.Bullet{
				{ID: "b1", Description: "x", Priority: 5, Tags: []string{"go", "distributed-systems"}},
				{ID: "b2", Description: "y", Priority: 5, Tags: []string{"python"}},
			},
		}},
	}}}

	weights := TagWeightsFromJobDescription(corpus, "Good engineers with Distributed Systems and Go experience. Fintech a plus.")

	assert.Equal(t, TagWeights{"go": 1.0, "distributed systems": 1.0, "fintech": 1.0}, weights)
}

func TestTagRelevance(t *testing.T) {
	weights := TagWeights{"engineering": 1.0, "leadership": 0.9, "product": 0.5}

	score, matched := tagRelevance([]string{"engineering", "leadership"}, weights)
	assert.InDelta(t, 0.95, score, 0.001)
	assert.Equal(t, []string{"engineering", "leadership"}, matched)

	score, matched = tagRelevance([]string{"engineering", "unknown"}, weights)
	assert.InDelta(t, 1.0, score, 0.001)
	assert.Equal(t, []string{"engineering"}, matched)

	score, matched = tagRelevance([]string{"unknown"}, weights)
	assert.Zero(t, score)
	assert.Empty(t, matched)

	score, _ = tagRelevance(nil, weights)
	assert.Zero(t, score)
}

func TestCompanyMultiplier(t *testing.T) {
	assert.InDelta(t, 1.2, companyMultiplier(&types.Company{Priority: 10}), 0.001)
	assert.InDelta(t, 0.84, companyMultiplier(&types.Company{Priority: 1}), 0.001)
	assert.InDelta(t, 1.0, companyMultiplier(&types.Company{Priority: 5}), 0.001)
}

func TestPositionMultiplier(t *testing.T) {
	weights := TagWeights{"leadership": 1.0}

	assert.InDelta(t, 1.32, positionMultiplier(&types.Position{Priority: 10, Tags: []string{"leadership"}}, weights), 0.001)
	assert.InDelta(t, 1.0, positionMultiplier(&types.Position{Priority: 5}, weights), 0.001)
	assert.InDelta(t, 0.9, positionMultiplier(&types.Position{Priority: 5, Tags: []string{"sales"}}, weights), 0.001)
}

func TestScoreBullet(t *testing.T) {
	weights := TagWeights{"go": 1.0, "leadership": 1.0}

	t.Run("best possible bullet scores 1", func(t *testing.T) {
		score, matched := ScoreBullet(
			&types.Bullet{Priority: 10, Tags: []string{"go"}},
			&types.Position{Priority: 10, Tags: []string{"leadership"}},
			&types.Company{Priority: 10},
			weights,
		)
		assert.InDelta(t, 1.0, score, 0.0001)
		assert.Equal(t, []string{"go"}, matched)
	})

	t.Run("neutral bullet with no tags", func(t *testing.T) {
		score, matched := ScoreBullet(
			&types.Bullet{Priority: 5},
			&types.Position{Priority: 5},
			&types.Company{Priority: 5},
			weights,
		)
		assert.InDelta(t, 0.2/maxRawScore, score, 0.0001)
		assert.Empty(t, matched)
	})

	t.Run("tag match outweighs priority", func(t *testing.T) {
		tagged, _ := ScoreBullet(&types.Bullet{Priority: 3, Tags: []string{"go"}}, &types.Position{Priority: 5}, &types.Company{Priority: 5}, weights)
		untagged, _ := ScoreBullet(&types.Bullet{Priority: 10}, &types.Position{Priority: 5}, &types.Company{Priority: 5}, weights)
		assert.Greater(t, tagged, untagged)
	})
}
