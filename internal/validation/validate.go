package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-curator/internal/schemas"
	"github.com/jonathan/resume-curator/internal/types"
)

// maxListedIDs bounds how many offending ids are echoed back in a message.
const maxListedIDs = 5

// Validate checks a provider's JSON output, in order: parseable JSON, schema shape, exact
// bullet count, every id present in the corpus, no id repeated. The first failed check wins.
func Validate(content string, corpus *types.Corpus, expected int) (*types.ProviderResponse, error) {
	if !json.Valid([]byte(content)) {
		return nil, &Error{Code: types.CodeMalformedJSON, Message: "response is not valid JSON"}
	}

	if err := schemas.ValidateProviderResponse(content); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, &Error{Code: types.CodeSchemaMismatch, Message: ve.Summary()}
		}
		return nil, &Error{Code: types.CodeSchemaMismatch, Message: "response does not match the expected shape", Cause: err}
	}

	var resp types.ProviderResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, &Error{Code: types.CodeSchemaMismatch, Message: "response does not match the expected shape", Cause: err}
	}

	if len(resp.Bullets) != expected {
		return nil, &Error{
			Code:    types.CodeWrongBulletCount,
			Message: fmt.Sprintf("expected exactly %d bullets, got %d", expected, len(resp.Bullets)),
		}
	}

	index := corpus.Index()
	var unknown []string
	for _, b := range resp.Bullets {
		if _, ok := index[b.ID]; !ok {
			unknown = append(unknown, b.ID)
		}
	}
	if len(unknown) > 0 {
		return nil, &Error{
			Code:    types.CodeInvalidBulletID,
			Message: fmt.Sprintf("unknown bullet ids: %s", listIDs(unknown)),
		}
	}

	seen := make(map[string]bool, len(resp.Bullets))
	var dupes []string
	for _, b := range resp.Bullets {
		if seen[b.ID] {
			dupes = append(dupes, b.ID)
		}
		seen[b.ID] = true
	}
	if len(dupes) > 0 {
		return nil, &Error{
			Code:    types.CodeDuplicateBulletID,
			Message: fmt.Sprintf("bullet ids returned more than once: %s", listIDs(dupes)),
		}
	}

	return &resp, nil
}

func listIDs(ids []string) string {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Strings(uniq)

	if len(uniq) > maxListedIDs {
		return fmt.Sprintf("%s (and %d more)", strings.Join(uniq[:maxListedIDs], ", "), len(uniq)-maxListedIDs)
	}
	return strings.Join(uniq, ", ")
}
