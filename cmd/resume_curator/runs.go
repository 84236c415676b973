package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-curator/internal/db"
	"github.com/jonathan/resume-curator/internal/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs [request-id]",
	Short: "List recorded selection runs, or show one",
	Long:  "Without arguments, lists the most recent runs recorded with select --save-run. With a request id, prints that run as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRunsCmd,
}

var (
	runsLimit       int
	runsDatabaseURL string
)

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Number of runs to list")
	runsCmd.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runsCmd)
}

func runRunsCmd(cmd *cobra.Command, args []string) error {
	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	ctx := cmd.Context()
	database, err := openDB(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if len(args) == 1 {
		return showRun(ctx, database, args[0], cmd.OutOrStdout())
	}
	runs, err := database.ListSelectionRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

func showRun(ctx context.Context, database *db.DB, requestID string, out io.Writer) error {
	run, err := database.GetSelectionRun(ctx, requestID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no selection run with request id %s", requestID)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func printRuns(out io.Writer, runs []*types.SelectionRun) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No selection runs recorded")
		return
	}
	for _, run := range runs {
		provider := run.Provider
		if provider == "" {
			provider = "-"
		}
		_, _ = fmt.Fprintf(out, "%s  %s  %-9s  %-13s  %2d bullets  %d attempts\n",
			run.CreatedAt.Format("2006-01-02 15:04"), run.RequestID, run.Status, provider,
			len(run.Bullets), run.AttemptCount)
	}
}
