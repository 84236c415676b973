package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-curator/internal/experience"
)

var validateCorpusCmd = &cobra.Command{
	Use:   "validate-corpus <corpus.json>",
	Short: "Validate a corpus file",
	Long:  "Checks a corpus JSON file against the corpus schema and the id, priority and structure rules, and prints a summary. Use - to read from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidateCorpus(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCorpusCmd)
}

func runValidateCorpus(path string, out io.Writer) error {
	corpus, err := experience.LoadCorpus(path)
	if err != nil {
		return fmt.Errorf("invalid corpus: %w", err)
	}

	positions := 0
	for _, company := range corpus.Experience {
		positions += len(company.Children)
	}
	_, _ = fmt.Fprintf(out, "Corpus is valid: %d companies, %d positions, %d bullets\n",
		len(corpus.Experience), positions, corpus.CountBullets())
	return nil
}
