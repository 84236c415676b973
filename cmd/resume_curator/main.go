// Package main implements the resume_curator CLI, which picks the resume bullets that best
// match a job posting.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_curator",
	Short: "Resume bullet curation",
	Long: `resume_curator scores a resume corpus against a job description with an LLM provider,
falls back across providers on failure, and reduces the scores to a diverse, chronologically
ordered bullet list.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
