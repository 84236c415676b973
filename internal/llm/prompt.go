package llm

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jonathan/resume-curator/internal/prompts"
	"github.com/jonathan/resume-curator/internal/schemas"
	"github.com/jonathan/resume-curator/internal/types"
)

// Prompt is the system and user text sent to a model.
type Prompt struct {
	System string
	User   string
}

// promptBullet is how a bullet is shown to the model. Priorities are deliberately absent so
// the model judges relevance from content alone.
type promptBullet struct {
	ID       string   `json:"id"`
	Company  string   `json:"company"`
	Position string   `json:"position"`
	Tags     []string `json:"tags,omitempty"`
	Text     string   `json:"text"`
}

// BuildPrompt renders the selection prompt for req, with req.RetryContext (if any) first.
func BuildPrompt(req Request) Prompt {
	return Prompt{
		System: prompts.MustGet(prompts.Selection, "system"),
		User: prompts.Format(prompts.MustGet(prompts.Selection, "select-bullets"), map[string]string{
			"RetryContext":   req.RetryContext,
			"Count":          strconv.Itoa(req.Count()),
			"MinBullets":     strconv.Itoa(req.MinBullets),
			"Schema":         schemas.ResponseSchemaJSON(),
			"JobDescription": strings.TrimSpace(req.JobDescription),
			"Experience":     renderExperience(req.Compendium),
		}),
	}
}

func renderExperience(corpus *types.Corpus) string {
	if corpus == nil {
		return ""
	}

	var sb strings.Builder
	for _, company := range corpus.Experience {
		for _, position := range company.Children {
			for _, bullet := range position.Children {
				line, _ := json.Marshal(promptBullet{
					ID:       bullet.ID,
					Company:  displayName(company.Name, company.ID),
					Position: displayName(position.Name, position.ID),
					Tags:     bullet.Tags,
					Text:     bullet.Description,
				})
				sb.Write(line)
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

// RetryContext describes a rejected attempt so the model can correct it on the next try.
func RetryContext(failure types.AttemptFailure, count int) string {
	return prompts.Format(prompts.MustGet(prompts.Selection, "retry-context"), map[string]string{
		"Code":   string(failure.Code),
		"Detail": failure.Message,
		"Fix":    prompts.Format(prompts.MustGet(prompts.Selection, fixKey(failure.Code)), map[string]string{"Count": strconv.Itoa(count)}),
	})
}

func fixKey(code types.ErrorCode) string {
	switch code {
	case types.CodeSchemaMismatch:
		return "fix-schema"
	case types.CodeWrongBulletCount:
		return "fix-count"
	case types.CodeInvalidBulletID:
		return "fix-invalid-id"
	case types.CodeDuplicateBulletID:
		return "fix-duplicate"
	default:
		return "fix-malformed"
	}
}
