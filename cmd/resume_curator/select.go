package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-curator/internal/config"
	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/observability"
	"github.com/jonathan/resume-curator/internal/pipeline"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select the resume bullets that best match a job description",
	Long: `Scores every bullet of the corpus against the job description with the chosen provider,
falling back through the configured provider order, then applies the diversity limits and
orders the result by company.

Configuration can be loaded from a JSON file using --config. Environment variables override
the file and command-line flags override both.`,
	RunE: runSelectCmd,
}

var (
	selectConfigPath     string
	selectJob            string
	selectJobURL         string
	selectCorpus         string
	selectCorpusDB       string
	selectProvider       string
	selectFallback       []string
	selectMaxBullets     int
	selectMaxPerCompany  int
	selectMaxPerPosition int
	selectMinPerCompany  int
	selectCandidatePool  int
	selectUseBrowser     bool
	selectVerbose        bool
	selectJSON           bool
	selectSaveRun        bool
	selectDatabaseURL    string
	selectMetricsFile    string
)

func init() {
	selectCmd.Flags().StringVar(&selectConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	selectCmd.Flags().StringVarP(&selectJob, "job", "j", "", "Path to job description text file, or - for stdin (mutually exclusive with --job-url)")
	selectCmd.Flags().StringVar(&selectJobURL, "job-url", "", "URL to fetch job description from (mutually exclusive with --job)")
	selectCmd.Flags().StringVar(&selectCorpus, "corpus", "", "Path to corpus JSON file")
	selectCmd.Flags().StringVar(&selectCorpusDB, "corpus-db", "", "Name of a corpus stored in the database (mutually exclusive with --corpus)")

	selectCmd.Flags().StringVarP(&selectProvider, "provider", "p", "", "Provider to try first (claude-sonnet, claude-haiku, gpt-4o-mini, gemini-flash, heuristic)")
	selectCmd.Flags().StringSliceVar(&selectFallback, "fallback", nil, "Provider fallback order, comma separated")

	selectCmd.Flags().IntVar(&selectMaxBullets, "max-bullets", 0, "Maximum bullets selected")
	selectCmd.Flags().IntVar(&selectMaxPerCompany, "max-per-company", 0, "Maximum bullets per company")
	selectCmd.Flags().IntVar(&selectMaxPerPosition, "max-per-position", 0, "Maximum bullets per position")
	selectCmd.Flags().IntVar(&selectMinPerCompany, "min-per-company", 0, "Minimum bullets per company when candidates exist")
	selectCmd.Flags().IntVar(&selectCandidatePool, "candidate-pool", 0, "Bullets requested from the provider (default twice --max-bullets)")

	selectCmd.Flags().BoolVar(&selectUseBrowser, "use-browser", false, "Use headless browser for script-rendered job pages (requires Chrome)")
	selectCmd.Flags().BoolVarP(&selectVerbose, "verbose", "v", false, "Print detailed debug information")
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "Print the result as JSON")
	selectCmd.Flags().BoolVar(&selectSaveRun, "save-run", false, "Record the run in the database")
	selectCmd.Flags().StringVar(&selectDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	selectCmd.Flags().StringVar(&selectMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")

	rootCmd.AddCommand(selectCmd)
}

// selectRequest is everything runSelect needs besides the configuration.
type selectRequest struct {
	Corpus  corpusSource
	JSON    bool
	SaveRun bool
}

func runSelectCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(selectConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySelectFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	req := selectRequest{
		Corpus:  corpusSource{Path: cfg.Corpus, DBName: selectCorpusDB},
		JSON:    selectJSON,
		SaveRun: selectSaveRun,
	}
	return runSelect(ctx, cfg, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// applySelectFlags overrides config values with flags that were explicitly set.
func applySelectFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("job") {
		cfg.Job = selectJob
	}
	if flags.Changed("job-url") {
		cfg.JobURL = selectJobURL
	}
	if flags.Changed("corpus") {
		cfg.Corpus = selectCorpus
	}
	if flags.Changed("provider") {
		cfg.Provider = selectProvider
	}
	if flags.Changed("fallback") {
		cfg.FallbackOrder = selectFallback
	}
	if flags.Changed("max-bullets") {
		cfg.MaxBullets = config.Int(selectMaxBullets)
	}
	if flags.Changed("max-per-company") {
		cfg.MaxPerCompany = config.Int(selectMaxPerCompany)
	}
	if flags.Changed("max-per-position") {
		cfg.MaxPerPosition = config.Int(selectMaxPerPosition)
	}
	if flags.Changed("min-per-company") {
		cfg.MinPerCompany = config.Int(selectMinPerCompany)
	}
	if flags.Changed("candidate-pool") {
		cfg.CandidatePool = selectCandidatePool
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = selectUseBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = selectVerbose
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = selectDatabaseURL
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = selectMetricsFile
	}
}

func runSelect(ctx context.Context, cfg *config.Config, req selectRequest, stdout, stderr io.Writer) error {
	logger := observability.NewLogger(stderr, cfg.Verbose)
	slog.SetDefault(logger)

	if cfg.MetricsFile != "" {
		defer func() {
			if werr := observability.WriteMetricsFile(cfg.MetricsFile); werr != nil {
				logger.Warn("failed to write metrics file", "path", cfg.MetricsFile, "error", werr)
			}
		}()
	}

	if req.SaveRun && cfg.DatabaseURL == "" {
		return fmt.Errorf("--save-run requires DATABASE_URL or --db-url")
	}
	dbConn, err := openDB(ctx, databaseURLFor(cfg, req))
	if err != nil {
		return err
	}
	if dbConn != nil {
		defer dbConn.Close()
	}

	corpus, job, err := loadInputs(ctx, cfg, req.Corpus, dbConn)
	if err != nil {
		return err
	}
	logger.Debug("inputs loaded", "bullets", corpus.CountBullets(), "job_chars", len(job))

	fallback, err := cfg.ProviderOrder()
	if err != nil {
		return err
	}
	order, err := pipeline.ProviderOrder(cfg.Provider, fallback)
	if err != nil {
		return err
	}
	providers, err := llm.NewProviders(ctx, order, cfg.LLMConfig())
	if err != nil {
		return fmt.Errorf("failed to create providers: %w", err)
	}
	defer func() {
		if cerr := llm.CloseAll(providers); cerr != nil {
			logger.Warn("failed to close providers", "error", cerr)
		}
	}()

	orch := pipeline.NewOrchestrator(providers, cfg.RetryPolicy())
	opts := pipeline.RunOptions{
		JobDescription: job,
		Corpus:         corpus,
		Provider:       cfg.Provider,
		FallbackOrder:  fallback,
		Selection:      cfg.SelectionConfig(),
		CandidatePool:  cfg.CandidatePool,
		OnProgress: func(event pipeline.ProgressEvent) {
			logger.Info(event.Message, "step", event.Step, "category", event.Category, "request_id", event.RequestID)
		},
	}
	if req.SaveRun {
		opts.Recorder = dbConn
	}

	outcome, err := pipeline.RunSelection(ctx, orch, opts)
	if err != nil {
		var selErr *pipeline.SelectionError
		if errors.As(err, &selErr) {
			_, _ = fmt.Fprintln(stderr, selErr.UserMessage())
			if cfg.Verbose {
				observability.NewPrinter(stderr).PrintAttempts(selErr.Attempts)
			}
		}
		return err
	}

	if req.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	printer := observability.NewPrinter(stdout)
	printer.PrintProviderResult(outcome.Result())
	printer.PrintSelectedBullets(outcome.Bullets, outcome.Shortfalls)
	if cfg.Verbose {
		printer.PrintAttempts(outcome.Attempts)
	}
	return nil
}

// databaseURLFor returns the database URL only when the run needs a connection.
func databaseURLFor(cfg *config.Config, req selectRequest) string {
	if req.SaveRun || req.Corpus.DBName != "" {
		return cfg.DatabaseURL
	}
	return ""
}
