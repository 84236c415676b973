package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-curator/internal/ranking"
	"github.com/jonathan/resume-curator/internal/selection"
	"github.com/jonathan/resume-curator/internal/types"
)

func TestPrintProviderResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProviderResult(&types.ProviderResult{
		Provider:     "claude-haiku",
		AttemptCount: 2,
		TokensUsed:   1234,
		JobTitle:     "Staff Engineer",
		Salary:       &types.Salary{Min: 180000, Max: 220000, Currency: "USD"},
		Reasoning:    "Picked database work",
	})
	output := buf.String()

	assert.Contains(t, output, "PROVIDER RESULT")
	assert.Contains(t, output, "claude-haiku")
	assert.Contains(t, output, "Attempts: 2")
	assert.Contains(t, output, "1234")
	assert.Contains(t, output, "Staff Engineer")
	assert.Contains(t, output, "180000-220000 USD")
	assert.Contains(t, output, "Picked database work")
}

func TestPrintProviderResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProviderResult(nil)
	assert.Empty(t, buf.String())
}

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		name   string
		salary types.Salary
		want   string
	}{
		{"range", types.Salary{Min: 1, Max: 2, Currency: "EUR"}, "1-2 EUR"},
		{"max only", types.Salary{Max: 5}, "up to 5"},
		{"min only", types.Salary{Min: 3, Currency: "USD"}, "from 3 USD"},
		{"empty", types.Salary{}, "unspecified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSalary(&tt.salary))
		})
	}
}

func TestPrintSelectedBullets(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	bullets := []types.SelectedBullet{
		{Bullet: types.Bullet{ID: "a1", Description: "Led the migration"}, CompanyID: "acme", Score: 0.9},
		{Bullet: types.Bullet{ID: "a2", Description: "Cut latency"}, CompanyID: "acme", Score: 0.7},
		{Bullet: types.Bullet{ID: "g1", Description: "Shipped billing"}, CompanyID: "globex", Score: 0.5},
	}
	p.PrintSelectedBullets(bullets, []selection.Shortfall{{CompanyID: "initech", Have: 0, Want: 1}})
	output := buf.String()

	assert.Contains(t, output, "Selected 3 bullets")
	assert.Equal(t, 1, strings.Count(output, "│ acme "))
	assert.Contains(t, output, "0.90  Led the migration")
	assert.Contains(t, output, "globex")
	assert.Contains(t, output, "initech (0 of 1)")
}

func TestPrintSelectedBullets_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSelectedBullets(nil, nil)
	assert.Empty(t, buf.String())
}

func TestPrintRankedBullets(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ranked := make([]ranking.RankedBullet, 7)
	for i := range ranked {
		ranked[i] = ranking.RankedBullet{BulletID: "b", CompanyID: "c", Score: 0.5}
	}
	ranked[0].MatchedTags = []string{"go", "postgres"}

	p.PrintRankedBullets(ranked)
	output := buf.String()

	assert.Contains(t, output, "TOP RANKED BULLETS")
	assert.Contains(t, output, "Total bullets ranked: 7")
	assert.Contains(t, output, "Tags: go, postgres")
	assert.Contains(t, output, "... and 2 more bullets")
}

func TestPrintAttempts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAttempts([]types.AttemptFailure{
		{Code: types.CodeProviderDown, Provider: "claude-sonnet", Message: "server error (HTTP 503)"},
	})
	output := buf.String()

	assert.Contains(t, output, "PROVIDER ATTEMPTS")
	assert.Contains(t, output, "claude-sonnet E011_PROVIDER_DOWN")
	assert.Contains(t, output, "server error (HTTP 503)")

	buf.Reset()
	p.PrintAttempts(nil)
	assert.Contains(t, buf.String(), "NO FAILED ATTEMPTS")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}
