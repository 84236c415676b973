package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-curator/internal/types"
)

func sampleCorpus() *types.Corpus {
	return &types.Corpus{Experience: []types.Company{
		{
			ID: "acme", Name: "Acme", DateStart: "2021-01", Tags: []string{"saas"}, Priority: 8,
			Children: []types.Position{
				{ID: "acme-lead", Name: "Lead", Tags: []string{}, Priority: 8, Children: []types.Bullet{
					{ID: "a1", Description: "Led the migration", Tags: []string{"postgres"}, Priority: 9},
					{ID: "a2", Description: "Mentored engineers", Tags: []string{}, Priority: 6, Link: "https://example.com"},
				}},
				{ID: "acme-ic", Tags: []string{}, Priority: 5, Children: []types.Bullet{
					{ID: "a3", Description: "Built billing", Tags: []string{"go"}, Priority: 5},
				}},
			},
		},
		{
			ID: "globex", Tags: []string{}, Priority: 5,
			Children: []types.Position{
				{ID: "globex-dev", Tags: []string{}, Priority: 5, Children: []types.Bullet{
					{ID: "g1", Description: "Wrote workers", Tags: []string{}, Priority: 7},
				}},
			},
		},
	}}
}

func TestFlattenCorpus(t *testing.T) {
	nodes := flattenCorpus(sampleCorpus())
	require.Len(t, nodes, 9)

	assert.Equal(t, corpusNode{ID: "acme", Level: LevelCompany, SortOrder: 0, Name: "Acme", DateStart: "2021-01", Tags: []string{"saas"}, Priority: 8}, nodes[0])
	assert.Equal(t, "acme", nodes[1].ParentID)
	assert.Equal(t, LevelPosition, nodes[1].Level)
	assert.Equal(t, 1, nodes[3].SortOrder, "a2 is the second bullet of acme-lead")
	assert.Equal(t, "globex", nodes[7].ParentID)
}

func TestBuildCorpus_ReversesFlatten(t *testing.T) {
	corpus := sampleCorpus()
	nodes := flattenCorpus(corpus)

	// rows come back ordered by sort_order, not walk order
	shuffled := make([]corpusNode, len(nodes))
	for i := range nodes {
		shuffled[i] = nodes[len(nodes)-1-i]
	}

	rebuilt, err := buildCorpus(shuffled)
	require.NoError(t, err)
	assert.Equal(t, corpus, rebuilt)
}

func TestBuildCorpus_Errors(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []corpusNode
		wantErr string
	}{
		{
			name:    "unknown level",
			nodes:   []corpusNode{{ID: "x", Level: "team", Priority: 1}},
			wantErr: "unknown level",
		},
		{
			name:    "orphan without parent",
			nodes:   []corpusNode{{ID: "p", Level: LevelPosition, Priority: 1}},
			wantErr: "has no parent",
		},
		{
			name: "bullet under company",
			nodes: []corpusNode{
				{ID: "c", Level: LevelCompany, Priority: 1},
				{ID: "b", ParentID: "c", Level: LevelBullet, Priority: 1},
			},
			wantErr: "cannot be a child of company",
		},
		{
			name: "dangling parent",
			nodes: []corpusNode{
				{ID: "c", Level: LevelCompany, Priority: 1},
				{ID: "p", ParentID: "c", Level: LevelPosition, Priority: 1},
				{ID: "b", ParentID: "missing", Level: LevelBullet, Priority: 1},
			},
			wantErr: "not reachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildCorpus(tt.nodes)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchemaSQL_Embedded(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS corpus_nodes")
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS selection_runs")
}
