package experience

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-curator/internal/schemas"
	"github.com/jonathan/resume-curator/internal/types"
)

// LoadCorpus loads, normalizes and validates a corpus from a JSON file. A path of "-"
// reads standard input.
func LoadCorpus(path string) (*types.Corpus, error) {
	if path == "-" {
		return ReadCorpus(os.Stdin)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}
	return ParseCorpus(content)
}

// ReadCorpus loads a corpus from r.
func ReadCorpus(r io.Reader) (*types.Corpus, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Message: "failed to read corpus", Cause: err}
	}
	return ParseCorpus(content)
}

// ParseCorpus checks content against the corpus schema, decodes it, normalizes tags and
// text, and enforces id uniqueness and field limits.
func ParseCorpus(content []byte) (*types.Corpus, error) {
	if !json.Valid(content) {
		return nil, &LoadError{Message: "corpus is not valid JSON"}
	}

	if err := schemas.ValidateCorpus(content); err != nil {
		return nil, &LoadError{Message: "corpus does not match schema", Cause: err}
	}

	var corpus types.Corpus
	if err := json.Unmarshal(content, &corpus); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}

	NormalizeCorpus(&corpus)

	if err := corpus.Validate(); err != nil {
		return nil, &LoadError{Message: "corpus failed validation", Cause: err}
	}
	return &corpus, nil
}
