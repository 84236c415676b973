// Package types provides type definitions for structured data used throughout the resume-curator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrDataUnavailable marks corpus loading failures. It is distinct from selection failures so
// callers can report "data unavailable" without blaming a provider.
var ErrDataUnavailable = errors.New("resume data unavailable")

// Corpus is the full, ordered tree of experience available for selection.
// Company order is resume order (newest first).
type Corpus struct {
	Experience []Company `json:"experience" validate:"required,min=1,dive"`
}

// Company is the top level of the experience hierarchy.
type Company struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name,omitempty"`
	Location    string     `json:"location,omitempty"`
	DateStart   string     `json:"dateStart,omitempty"`
	DateEnd     string     `json:"dateEnd,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags"`
	Priority    int        `json:"priority" validate:"min=1,max=10"`
	Link        string     `json:"link,omitempty"`
	Children    []Position `json:"children" validate:"required,min=1,dive"`
}

// Position is a role held at a company.
type Position struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name,omitempty"`
	Location    string   `json:"location,omitempty"`
	DateStart   string   `json:"dateStart,omitempty"`
	DateEnd     string   `json:"dateEnd,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	Priority    int      `json:"priority" validate:"min=1,max=10"`
	Link        string   `json:"link,omitempty"`
	Children    []Bullet `json:"children" validate:"required,min=1,dive"`
}

// Bullet is a single achievement statement, the atomic selectable unit.
// Description holds the text that appears on the resume.
type Bullet struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags"`
	Priority    int      `json:"priority" validate:"min=1,max=10"`
	Link        string   `json:"link,omitempty"`
}

// Location addresses a bullet inside the corpus.
type Location struct {
	CompanyIndex  int
	PositionIndex int
	BulletIndex   int
	// Order is the bullet's position in a flattened walk of the corpus.
	Order      int
	CompanyID  string
	PositionID string
}

// CorpusValidationError lists every problem found in a corpus.
type CorpusValidationError struct {
	Problems []string
}

func (e *CorpusValidationError) Error() string {
	return fmt.Sprintf("invalid corpus: %s", strings.Join(e.Problems, "; "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that every id is unique across the corpus.
func (c *Corpus) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate corpus: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	seen := make(map[string]string)
	claim := func(id, where string) {
		if id == "" {
			return
		}
		if prev, ok := seen[id]; ok {
			problems = append(problems, fmt.Sprintf("duplicate id %q (%s and %s)", id, prev, where))
			return
		}
		seen[id] = where
	}
	for ci, company := range c.Experience {
		claim(company.ID, fmt.Sprintf("experience[%d]", ci))
		for pi, position := range company.Children {
			claim(position.ID, fmt.Sprintf("experience[%d].children[%d]", ci, pi))
			for bi, bullet := range position.Children {
				claim(bullet.ID, fmt.Sprintf("experience[%d].children[%d].children[%d]", ci, pi, bi))
			}
		}
	}

	if len(problems) > 0 {
		return &CorpusValidationError{Problems: problems}
	}
	return nil
}

// Index returns a lookup from bullet id to its location in the corpus.
func (c *Corpus) Index() map[string]Location {
	index := make(map[string]Location)
	order := 0
	for ci := range c.Experience {
		company := &c.Experience[ci]
		for pi := range company.Children {
			position := &company.Children[pi]
			for bi := range position.Children {
				index[position.Children[bi].ID] = Location{
					CompanyIndex:  ci,
					PositionIndex: pi,
					BulletIndex:   bi,
					Order:         order,
					CompanyID:     company.ID,
					PositionID:    position.ID,
				}
				order++
			}
		}
	}
	return index
}

// CountBullets returns the total number of bullets in the corpus.
func (c *Corpus) CountBullets() int {
	count := 0
	for _, company := range c.Experience {
		for _, position := range company.Children {
			count += len(position.Children)
		}
	}
	return count
}

// Bullet returns the bullet at loc.
func (c *Corpus) Bullet(loc Location) Bullet {
	return c.Experience[loc.CompanyIndex].Children[loc.PositionIndex].Children[loc.BulletIndex]
}
