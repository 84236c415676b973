package experience

import (
	"strings"

	"github.com/jonathan/resume-curator/internal/types"
)

// NormalizeCorpus trims ids and text and normalizes tags at every level. Order is kept.
func NormalizeCorpus(corpus *types.Corpus) {
	for ci := range corpus.Experience {
		company := &corpus.Experience[ci]
		company.ID = strings.TrimSpace(company.ID)
		company.Tags = NormalizeTags(company.Tags)

		for pi := range company.Children {
			position := &company.Children[pi]
			position.ID = strings.TrimSpace(position.ID)
			position.Tags = NormalizeTags(position.Tags)

			for bi := range position.Children {
				bullet := &position.Children[bi]
				bullet.ID = strings.TrimSpace(bullet.ID)
				bullet.Description = collapseSpace(bullet.Description)
				bullet.Tags = NormalizeTags(bullet.Tags)
			}
		}
	}
}

// NormalizeTags lowercases and trims tags, dropping empty and repeated ones.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = strings.ToLower(collapseSpace(tag))
		if tag == "" {
			continue // Skip empty tags
		}
		if _, exists := seen[tag]; !exists {
			normalized = append(normalized, tag)
			seen[tag] = struct{}{}
		}
	}

	return normalized
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
