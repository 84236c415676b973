package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-curator/internal/types"
)

// Corpus node levels.
const (
	LevelCompany  = "company"
	LevelPosition = "position"
	LevelBullet   = "bullet"
)

// corpusNode is one row of corpus_nodes. sort_order is the node's index among its siblings.
type corpusNode struct {
	ID          string
	ParentID    string
	Level       string
	SortOrder   int
	Name        string
	Location    string
	DateStart   string
	DateEnd     string
	Summary     string
	Description string
	Tags        []string
	Priority    int
	Link        string
}

var corpusColumns = []string{
	"corpus_name", "node_id", "parent_id", "level", "sort_order", "name", "location",
	"date_start", "date_end", "summary", "description", "tags", "priority", "link",
}

// LoadCorpus reads the named corpus. A missing corpus or a failed query matches
// types.ErrDataUnavailable.
func (db *DB) LoadCorpus(ctx context.Context, name string) (*types.Corpus, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT node_id, parent_id, level, sort_order, name, location, date_start, date_end,
		        summary, description, tags, priority, link
		 FROM corpus_nodes
		 WHERE corpus_name = $1
		 ORDER BY sort_order, node_id`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %q: %w: %w", name, types.ErrDataUnavailable, err)
	}

	nodes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (corpusNode, error) {
		var n corpusNode
		err := row.Scan(&n.ID, &n.ParentID, &n.Level, &n.SortOrder, &n.Name, &n.Location,
			&n.DateStart, &n.DateEnd, &n.Summary, &n.Description, &n.Tags, &n.Priority, &n.Link)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %q: %w: %w", name, types.ErrDataUnavailable, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("corpus %q not found: %w", name, types.ErrDataUnavailable)
	}

	corpus, err := buildCorpus(nodes)
	if err != nil {
		return nil, fmt.Errorf("corpus %q is malformed: %w: %w", name, types.ErrDataUnavailable, err)
	}
	return corpus, nil
}

// SaveCorpus replaces the named corpus.
func (db *DB) SaveCorpus(ctx context.Context, name string, corpus *types.Corpus) error {
	if err := corpus.Validate(); err != nil {
		return fmt.Errorf("refusing to save corpus %q: %w", name, err)
	}

	nodes := flattenCorpus(corpus)
	rows := make([][]any, len(nodes))
	for i, n := range nodes {
		rows[i] = []any{name, n.ID, n.ParentID, n.Level, n.SortOrder, n.Name, n.Location,
			n.DateStart, n.DateEnd, n.Summary, n.Description, n.Tags, n.Priority, n.Link}
	}

	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM corpus_nodes WHERE corpus_name = $1`, name); err != nil {
			return fmt.Errorf("failed to clear corpus: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"corpus_nodes"}, corpusColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("failed to copy corpus nodes: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save corpus %q: %w", name, err)
	}
	return nil
}

// flattenCorpus converts the tree to rows in walk order.
func flattenCorpus(corpus *types.Corpus) []corpusNode {
	var nodes []corpusNode
	for ci, c := range corpus.Experience {
		nodes = append(nodes, corpusNode{
			ID: c.ID, Level: LevelCompany, SortOrder: ci, Name: c.Name, Location: c.Location,
			DateStart: c.DateStart, DateEnd: c.DateEnd, Summary: c.Summary, Description: c.Description,
			Tags: nonNilTags(c.Tags), Priority: c.Priority, Link: c.Link,
		})
		for pi, p := range c.Children {
			nodes = append(nodes, corpusNode{
				ID: p.ID, ParentID: c.ID, Level: LevelPosition, SortOrder: pi, Name: p.Name, Location: p.Location,
				DateStart: p.DateStart, DateEnd: p.DateEnd, Summary: p.Summary, Description: p.Description,
				Tags: nonNilTags(p.Tags), Priority: p.Priority, Link: p.Link,
			})
			for bi, b := range p.Children {
				nodes = append(nodes, corpusNode{
					ID: b.ID, ParentID: p.ID, Level: LevelBullet, SortOrder: bi, Name: b.Name,
					Summary: b.Summary, Description: b.Description,
					Tags: nonNilTags(b.Tags), Priority: b.Priority, Link: b.Link,
				})
			}
		}
	}
	return nodes
}

// buildCorpus rebuilds the tree from rows. Siblings are ordered by SortOrder regardless of
// row order.
func buildCorpus(nodes []corpusNode) (*types.Corpus, error) {
	var companies []corpusNode
	children := make(map[string][]corpusNode)
	for _, n := range nodes {
		switch n.Level {
		case LevelCompany:
			companies = append(companies, n)
		case LevelPosition, LevelBullet:
			if n.ParentID == "" {
				return nil, fmt.Errorf("%s %q has no parent", n.Level, n.ID)
			}
			children[n.ParentID] = append(children[n.ParentID], n)
		default:
			return nil, fmt.Errorf("node %q has unknown level %q", n.ID, n.Level)
		}
	}

	sortNodes(companies)
	corpus := &types.Corpus{Experience: make([]types.Company, 0, len(companies))}
	placed := len(companies)

	for _, c := range companies {
		company := types.Company{
			ID: c.ID, Name: c.Name, Location: c.Location, DateStart: c.DateStart, DateEnd: c.DateEnd,
			Summary: c.Summary, Description: c.Description, Tags: c.Tags, Priority: c.Priority, Link: c.Link,
		}
		positions := children[c.ID]
		sortNodes(positions)
		for _, p := range positions {
			if p.Level != LevelPosition {
				return nil, fmt.Errorf("%s %q cannot be a child of company %q", p.Level, p.ID, c.ID)
			}
			position := types.Position{
				ID: p.ID, Name: p.Name, Location: p.Location, DateStart: p.DateStart, DateEnd: p.DateEnd,
				Summary: p.Summary, Description: p.Description, Tags: p.Tags, Priority: p.Priority, Link: p.Link,
			}
			bullets := children[p.ID]
			sortNodes(bullets)
			for _, b := range bullets {
				if b.Level != LevelBullet {
					return nil, fmt.Errorf("%s %q cannot be a child of position %q", b.Level, b.ID, p.ID)
				}
				position.Children = append(position.Children, types.Bullet{
					ID: b.ID, Name: b.Name, Summary: b.Summary, Description: b.Description,
					Tags: b.Tags, Priority: b.Priority, Link: b.Link,
				})
			}
			placed += 1 + len(bullets)
			company.Children = append(company.Children, position)
		}
		corpus.Experience = append(corpus.Experience, company)
	}

	if placed != len(nodes) {
		return nil, fmt.Errorf("%d nodes are not reachable from any company", len(nodes)-placed)
	}
	return corpus, nil
}

func sortNodes(nodes []corpusNode) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].SortOrder < nodes[j].SortOrder })
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
