package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-curator/internal/config"
	"github.com/jonathan/resume-curator/internal/observability"
	"github.com/jonathan/resume-curator/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank corpus bullets offline against a job description",
	Long:  "Scores every bullet with the tag and priority heuristic, without calling any provider, and prints them best first.",
	RunE:  runRankCmd,
}

var (
	rankJob        string
	rankJobURL     string
	rankCorpus     string
	rankUseBrowser bool
	rankLimit      int
	rankJSON       bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankJob, "job", "j", "", "Path to job description text file, or - for stdin")
	rankCmd.Flags().StringVar(&rankJobURL, "job-url", "", "URL to fetch job description from")
	rankCmd.Flags().StringVar(&rankCorpus, "corpus", "", "Path to corpus JSON file (required)")
	rankCmd.Flags().BoolVar(&rankUseBrowser, "use-browser", false, "Use headless browser for script-rendered job pages (requires Chrome)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 0, "Only print the top N bullets")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Print the ranking as JSON")

	if err := rankCmd.MarkFlagRequired("corpus"); err != nil {
		panic(fmt.Sprintf("failed to mark corpus flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRankCmd(cmd *cobra.Command, _ []string) error {
	cfg := &config.Config{Job: rankJob, JobURL: rankJobURL, UseBrowser: rankUseBrowser}
	return runRank(cmd.Context(), cfg, rankCorpus, rankLimit, rankJSON, cmd.OutOrStdout())
}

func runRank(ctx context.Context, cfg *config.Config, corpusPath string, limit int, asJSON bool, out io.Writer) error {
	corpus, job, err := loadInputs(ctx, cfg, corpusSource{Path: corpusPath}, nil)
	if err != nil {
		return err
	}

	ranked := ranking.RankBullets(corpus, job)
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}
	observability.NewPrinter(out).PrintRankedBullets(ranked)
	return nil
}
