package types

import "time"

// ScoreMap maps bullet id to relevance score in [0,1]. Built fresh per request.
type ScoreMap map[string]float64

// SelectionConfig holds the diversity constraints for bullet selection.
type SelectionConfig struct {
	MaxBullets     int `json:"maxBullets" validate:"gt=0"`
	MaxPerCompany  int `json:"maxPerCompany" validate:"gt=0,ltefield=MaxBullets"`
	MaxPerPosition int `json:"maxPerPosition" validate:"gt=0"`
	MinPerCompany  int `json:"minPerCompany" validate:"gt=0,ltefield=MaxPerCompany"`
}

// DefaultSelectionConfig returns the default diversity constraints.
func DefaultSelectionConfig() SelectionConfig {
	return SelectionConfig{
		MaxBullets:     18,
		MaxPerCompany:  6,
		MaxPerPosition: 4,
		MinPerCompany:  1,
	}
}

// SelectedBullet joins a bullet with its score and ancestry.
type SelectedBullet struct {
	Bullet     Bullet  `json:"bullet"`
	CompanyID  string  `json:"companyId"`
	PositionID string  `json:"positionId"`
	Score      float64 `json:"score"`
}

// ScoredBullet is a single bullet score returned by a provider.
type ScoredBullet struct {
	ID    string  `json:"id" jsonschema:"minLength=1"`
	Score float64 `json:"score" jsonschema:"minimum=0,maximum=1"`
}

// Salary is the compensation range a provider extracted from the job description.
type Salary struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// ProviderResponse is the raw JSON document every provider is asked to produce.
type ProviderResponse struct {
	Bullets   []ScoredBullet `json:"bullets" jsonschema:"required"`
	Reasoning string         `json:"reasoning" jsonschema:"required"`
	JobTitle  string         `json:"jobTitle,omitempty"`
	Salary    *Salary        `json:"salary,omitempty"`
}

// ProviderResult is the validated, provider-agnostic outcome of a provider call.
type ProviderResult struct {
	Bullets      []ScoredBullet `json:"bullets"`
	Reasoning    string         `json:"reasoning"`
	JobTitle     string         `json:"jobTitle,omitempty"`
	Salary       *Salary        `json:"salary,omitempty"`
	TokensUsed   int            `json:"tokensUsed"`
	AttemptCount int            `json:"attemptCount"`
	Provider     string         `json:"provider"`
}

// Scores converts the returned bullets to a ScoreMap.
func (r *ProviderResult) Scores() ScoreMap {
	scores := make(ScoreMap, len(r.Bullets))
	for _, b := range r.Bullets {
		scores[b.ID] = b.Score
	}
	return scores
}

// Validate checks that every limit is positive and that
// MinPerCompany <= MaxPerCompany <= MaxBullets.
func (c SelectionConfig) Validate() error {
	return validate.Struct(c)
}

// SelectionRun is the persisted record of one selection request, successful or not.
type SelectionRun struct {
	RequestID    string           `json:"requestId"`
	Status       string           `json:"status"`
	Provider     string           `json:"provider"`
	AttemptCount int              `json:"attemptCount"`
	TokensUsed   int              `json:"tokensUsed"`
	JobTitle     string           `json:"jobTitle,omitempty"`
	Reasoning    string           `json:"reasoning,omitempty"`
	Attempts     []AttemptFailure `json:"attempts"`
	Bullets      []SelectedBullet `json:"bullets"`
	CreatedAt    time.Time        `json:"createdAt"`
}
