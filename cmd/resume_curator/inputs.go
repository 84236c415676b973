package main

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-curator/internal/config"
	"github.com/jonathan/resume-curator/internal/db"
	"github.com/jonathan/resume-curator/internal/experience"
	"github.com/jonathan/resume-curator/internal/fetch"
	"github.com/jonathan/resume-curator/internal/types"
)

// corpusSource names where the corpus comes from: a JSON file path or a corpus stored in
// Postgres.
type corpusSource struct {
	Path   string
	DBName string
}

func (s corpusSource) validate() error {
	if s.Path == "" && s.DBName == "" {
		return fmt.Errorf("either --corpus or --corpus-db must be provided (via flag or config)")
	}
	if s.Path != "" && s.DBName != "" {
		return fmt.Errorf("--corpus and --corpus-db are mutually exclusive; provide only one")
	}
	return nil
}

func loadCorpus(ctx context.Context, src corpusSource, database *db.DB) (*types.Corpus, error) {
	if src.DBName == "" {
		return experience.LoadCorpus(src.Path)
	}
	if database == nil {
		return nil, fmt.Errorf("--corpus-db requires DATABASE_URL or --db-url")
	}
	return database.LoadCorpus(ctx, src.DBName)
}

// jobSource returns the configured job description source.
func jobSource(cfg *config.Config) (string, error) {
	if cfg.Job == "" && cfg.JobURL == "" {
		return "", fmt.Errorf("either --job or --job-url must be provided (via flag or config)")
	}
	if cfg.Job != "" && cfg.JobURL != "" {
		return "", fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}
	if cfg.JobURL != "" {
		return cfg.JobURL, nil
	}
	return cfg.Job, nil
}

// loadInputs reads the corpus and the job description concurrently.
func loadInputs(ctx context.Context, cfg *config.Config, src corpusSource, database *db.DB) (*types.Corpus, string, error) {
	source, err := jobSource(cfg)
	if err != nil {
		return nil, "", err
	}
	if err := src.validate(); err != nil {
		return nil, "", err
	}

	var (
		corpus *types.Corpus
		job    string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		corpus, err = loadCorpus(gctx, src, database)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		opts := fetch.DefaultOptions()
		opts.UseBrowser = cfg.UseBrowser
		var err error
		job, err = fetch.JobDescription(gctx, source, opts)
		if err != nil {
			return fmt.Errorf("failed to load job description: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return corpus, job, nil
}

// openDB connects when a database URL is configured and returns nil otherwise.
func openDB(ctx context.Context, databaseURL string) (*db.DB, error) {
	if databaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
