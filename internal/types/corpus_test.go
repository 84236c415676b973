package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCorpus() *Corpus {
	return &Corpus{
		Experience: []Company{
			{
				ID:       "acme",
				Name:     "Acme",
				Priority: 8,
				Tags:     []string{"infra"},
				Children: []Position{
					{
						ID:       "acme-staff",
						Name:     "Staff Engineer",
						Priority: 9,
						Children: []Bullet{
							{ID: "acme-1", Description: "Cut deploy time by 80%", Priority: 9, Tags: []string{"devops"}},
							{ID: "acme-2", Description: "Led migration to Kubernetes", Priority: 7},
						},
					},
				},
			},
			{
				ID:       "globex",
				Name:     "Globex",
				Priority: 5,
				Children: []Position{
					{
						ID:       "globex-swe",
						Name:     "Software Engineer",
						Priority: 5,
						Children: []Bullet{
							{ID: "globex-1", Description: "Built billing service in Go", Priority: 6},
						},
					},
				},
			},
		},
	}
}

func TestCorpus_ValidateOK(t *testing.T) {
	require.NoError(t, sampleCorpus().Validate())
}

func TestCorpus_ValidateProblems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Corpus)
		contain string
	}{
		{
			name:    "duplicate bullet id",
			mutate:  func(c *Corpus) { c.Experience[1].Children[0].Children[0].ID = "acme-1" },
			contain: `duplicate id "acme-1"`,
		},
		{
			name:    "priority out of range",
			mutate:  func(c *Corpus) { c.Experience[0].Children[0].Children[1].Priority = 11 },
			contain: "Priority",
		},
		{
			name:    "empty description",
			mutate:  func(c *Corpus) { c.Experience[0].Children[0].Children[0].Description = "" },
			contain: "Description",
		},
		{
			name:    "position without bullets",
			mutate:  func(c *Corpus) { c.Experience[1].Children[0].Children = nil },
			contain: "Children",
		},
		{
			name:    "company id reused by position",
			mutate:  func(c *Corpus) { c.Experience[1].Children[0].ID = "acme" },
			contain: `duplicate id "acme"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCorpus()
			tt.mutate(c)

			err := c.Validate()
			require.Error(t, err)

			var cve *CorpusValidationError
			require.True(t, errors.As(err, &cve))
			assert.Contains(t, cve.Error(), tt.contain)
		})
	}
}

func TestCorpus_Index(t *testing.T) {
	c := sampleCorpus()
	index := c.Index()

	require.Len(t, index, 3)
	assert.Equal(t, Location{CompanyIndex: 0, PositionIndex: 0, BulletIndex: 1, Order: 1, CompanyID: "acme", PositionID: "acme-staff"}, index["acme-2"])
	assert.Equal(t, 2, index["globex-1"].Order)
	assert.Equal(t, "Built billing service in Go", c.Bullet(index["globex-1"]).Description)
	assert.Equal(t, 3, c.CountBullets())
}

func TestCorpus_JSONFieldNames(t *testing.T) {
	raw := `{"experience":[{"id":"c","priority":5,"tags":[],"dateStart":"2020",
		"children":[{"id":"p","priority":5,"tags":[],"children":[{"id":"b","description":"x","priority":3,"tags":["go"]}]}]}]}`

	var c Corpus
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	require.NoError(t, c.Validate())
	assert.Equal(t, "2020", c.Experience[0].DateStart)
	assert.Equal(t, []string{"go"}, c.Experience[0].Children[0].Children[0].Tags)
}

func TestSelectionConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultSelectionConfig().Validate())

	bad := []SelectionConfig{
		{MaxBullets: 3, MaxPerCompany: 2, MaxPerPosition: 2, MinPerCompany: 3},
		{MaxBullets: 3, MaxPerCompany: 4, MaxPerPosition: 2, MinPerCompany: 1},
		{MaxBullets: 0, MaxPerCompany: 0, MaxPerPosition: 1, MinPerCompany: 0},
		{MaxBullets: 3, MaxPerCompany: 2, MaxPerPosition: 0, MinPerCompany: 1},
	}
	for _, cfg := range bad {
		assert.Error(t, cfg.Validate(), "%+v", cfg)
	}
}

func TestProviderResult_Scores(t *testing.T) {
	r := &ProviderResult{Bullets: []ScoredBullet{{ID: "a", Score: 0.4}, {ID: "b", Score: 0.9}}}
	assert.Equal(t, ScoreMap{"a": 0.4, "b": 0.9}, r.Scores())
}
