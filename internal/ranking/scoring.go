// Package ranking scores resume bullets against a job description without calling a model.
package ranking

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-curator/internal/types"
)

// Weights for the bullet base score.
const (
	tagRelevanceWeight = 0.6
	priorityWeight     = 0.4
)

// maxRawScore is the largest value base × company × position can reach
// (1.0 × 1.2 × 1.2 × 1.1). Raw scores are divided by it to land in [0,1].
const maxRawScore = 1.2 * 1.2 * 1.1

// TagWeights maps a normalized tag to its importance for one job, in [0,1].
type TagWeights map[string]float64

// TagWeightsFromJobDescription gives weight 1.0 to every corpus tag mentioned in the job
// description. Matching is case-insensitive and treats '-' and '_' in tags as spaces.
func TagWeightsFromJobDescription(corpus *types.Corpus, jobDescription string) TagWeights {
	text := " " + normalizeText(jobDescription) + " "
	weights := make(TagWeights)

	check := func(tags []string) {
		for _, tag := range tags {
			norm := normalizeText(tag)
			if norm == "" {
				continue
			}
			if _, done := weights[norm]; done {
				continue
			}
			if strings.Contains(text, " "+norm+" ") {
				weights[norm] = 1.0
			}
		}
	}

	for _, company := range corpus.Experience {
		check(company.Tags)
		for _, position := range company.Children {
			check(position.Tags)
			for _, bullet := range position.Children {
				check(bullet.Tags)
			}
		}
	}
	return weights
}

// normalizeText lowercases s and collapses every run of non-alphanumeric runes
// (except '+' and '#', as in "c++" or "c#") to a single space.
func normalizeText(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space && sb.Len() > 0 {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// tagRelevance is the average weight of the tags that have one, or 0 if none match.
// The second return value lists the matched tags.
func tagRelevance(tags []string, weights TagWeights) (float64, []string) {
	if len(tags) == 0 || len(weights) == 0 {
		return 0, nil
	}

	total := 0.0
	var matched []string
	for _, tag := range tags {
		if w, ok := weights[normalizeText(tag)]; ok {
			total += w
			matched = append(matched, tag)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	return total / float64(len(matched)), matched
}

// companyMultiplier maps priority 1-10 to 0.84-1.2.
func companyMultiplier(company *types.Company) float64 {
	return 0.8 + float64(company.Priority)/10*0.4
}

// positionMultiplier combines position priority (0.84-1.2) with how relevant the
// position's own tags are (0.9-1.1, or 1.0 when untagged).
func positionMultiplier(position *types.Position, weights TagWeights) float64 {
	priority := 0.8 + float64(position.Priority)/10*0.4

	tags := 1.0
	if len(position.Tags) > 0 {
		relevance, _ := tagRelevance(position.Tags, weights)
		tags = 0.9 + relevance*0.2
	}
	return priority * tags
}

// ScoreBullet returns the normalized hierarchical score of one bullet and the bullet tags that
// matched.
func ScoreBullet(bullet *types.Bullet, position *types.Position, company *types.Company, weights TagWeights) (float64, []string) {
	relevance, matched := tagRelevance(bullet.Tags, weights)
	base := relevance*tagRelevanceWeight + float64(bullet.Priority)/10*priorityWeight

	score := base * companyMultiplier(company) * positionMultiplier(position, weights) / maxRawScore
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score, matched
}
