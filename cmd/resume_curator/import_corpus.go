package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-curator/internal/experience"
)

var importCorpusCmd = &cobra.Command{
	Use:   "import-corpus <corpus.json>",
	Short: "Store a corpus file in the database",
	Long:  "Validates a corpus JSON file and stores it under --name, replacing any corpus with the same name. Select it later with --corpus-db.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportCorpusCmd,
}

var (
	importName        string
	importDatabaseURL string
	importMigrate     bool
)

func init() {
	importCorpusCmd.Flags().StringVar(&importName, "name", "", "Corpus name (required)")
	importCorpusCmd.Flags().StringVar(&importDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	importCorpusCmd.Flags().BoolVar(&importMigrate, "migrate", false, "Create the tables if they do not exist")

	if err := importCorpusCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}

	rootCmd.AddCommand(importCorpusCmd)
}

func runImportCorpusCmd(cmd *cobra.Command, args []string) error {
	databaseURL := importDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	return runImportCorpus(cmd.Context(), databaseURL, args[0], importName, importMigrate, cmd.OutOrStdout())
}

func runImportCorpus(ctx context.Context, databaseURL, path, name string, migrate bool, out io.Writer) error {
	corpus, err := experience.LoadCorpus(path)
	if err != nil {
		return fmt.Errorf("invalid corpus: %w", err)
	}

	database, err := openDB(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if migrate {
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	if err := database.SaveCorpus(ctx, name, corpus); err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Stored corpus %q (%d bullets)\n", name, corpus.CountBullets())
	return nil
}
