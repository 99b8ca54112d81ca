package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pfrederiksen/venue-scraper/internal/config"
	"github.com/pfrederiksen/venue-scraper/internal/enrich"
	"github.com/pfrederiksen/venue-scraper/internal/fetch"
	"github.com/pfrederiksen/venue-scraper/internal/logger"
	"github.com/pfrederiksen/venue-scraper/internal/pipeline"
	"github.com/pfrederiksen/venue-scraper/internal/scraper"
	"github.com/pfrederiksen/venue-scraper/internal/storage"
	"github.com/pfrederiksen/venue-scraper/internal/venue"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// options holds the values bound to the root command's flags
type options struct {
	configPath string
	url        string
	maxItems   int
	dataDir    string
	format     string
	sort       string
	dryRun     bool
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "venue-scraper",
		Short: "Scrape a venue list article into CSV and XLSX",
		Long: `A CLI tool that turns a magazine-style venue list article into a table.
Each venue's own page is visited for its phone number, website and address.
Rows are written as CSV and XLSX; venues new since the last run are flagged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a config file (yaml, json or toml)")
	cmd.Flags().StringVar(&opts.url, "url", "", "List article URL (overrides article.url)")
	cmd.Flags().IntVar(&opts.maxItems, "max-items", 0, "Maximum venues to extract (overrides rules.max_items)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Output directory (overrides output.dir)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.sort, "sort", "article", "Row order: article or name")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Scrape without writing any files")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging and per-venue detail")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, opts *options) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}
	order := SortOrder(strings.ToLower(opts.sort))
	if !validSortOrder(order) {
		return fmt.Errorf("invalid sort: %s (must be 'article' or 'name')", opts.sort)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	log, closeLog, err := buildLogger(cfg.Log, opts.verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	metrics := logger.NewMetrics()
	fetcher := fetch.New(cfg.FetchSettings(), log, fetch.WithMetrics(metrics))
	extractor := scraper.New(cfg.ExtractionRules(), log)
	enricher := enrich.New(fetcher, enrich.DomainOf(cfg.Article.URL), log)

	pipelineOpts := []pipeline.Option{pipeline.WithMetrics(metrics)}
	if format == FormatText {
		stderr := cmd.ErrOrStderr()
		pipelineOpts = append(pipelineOpts, pipeline.WithProgress(func(i, total int, c venue.Candidate) {
			fmt.Fprintf(stderr, "[%2d/%d] %s\n", i, total, c.Name)
		}))
	}

	p := pipeline.New(pipeline.Config{
		ArticleURL: cfg.Article.URL,
		DelayMin:   cfg.Fetch.DelayMin,
		DelayMax:   cfg.Fetch.DelayMax,
	}, fetcher, extractor, enricher, log, pipelineOpts...)

	report, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	// Files keep article order; --sort only affects the summary
	shown := append([]venue.Row(nil), report.Rows...)
	sortRows(shown, order)

	result := &OutputResult{
		CheckedAt:  time.Now().UTC(),
		ArticleURL: report.ArticleURL,
		Strategy:   report.Strategy,
		VenueCount: len(report.Rows),
		Venues:     shown,
		DryRun:     opts.dryRun,
	}
	if opts.verbose || format == FormatJSON {
		result.Metrics = report.Metrics
	}

	if !opts.dryRun {
		if err := save(cfg.Output, report, result, log); err != nil {
			return err
		}
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// applyFlags copies explicitly set flags over the loaded config
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Article.URL = opts.url
	}
	if flags.Changed("max-items") {
		cfg.Rules.MaxItems = opts.maxItems
	}
	if flags.Changed("data-dir") {
		cfg.Output.Dir = opts.dataDir
	}
	if opts.verbose {
		cfg.Log.Level = string(logger.LevelDebug)
	}
}

// buildLogger opens the configured log sink. The returned func flushes and
// closes it.
func buildLogger(cfg config.LogConfig, verbose bool, stderr io.Writer) (logger.Logger, func(), error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = stderr
	var file *os.File
	if cfg.File != "" {
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = file
	}

	log := logger.New(level, w)
	return log, func() {
		_ = log.Sync()
		if file != nil {
			file.Close()
		}
	}, nil
}

// save writes the rows and the run snapshot to the output directory and
// records the changes since the previous run on result
func save(cfg config.OutputConfig, report *pipeline.Report, result *OutputResult, log logger.Logger) error {
	store, err := storage.New(cfg.Dir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	previous, err := store.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if previous.ArticleURL != "" && previous.ArticleURL != report.ArticleURL {
		log.Info("Previous snapshot is for another article; comparing from scratch", logger.Fields{
			"previous": previous.ArticleURL,
		})
		previous = venue.NewSnapshot()
	}
	diff := venue.Diff(previous, report.Rows)
	for _, r := range diff.Added {
		result.NewVenues = append(result.NewVenues, r.Name)
	}
	for _, r := range diff.Removed {
		result.Removed = append(result.Removed, r.Name)
	}

	csvPath, err := store.WriteCSV(cfg.CSVName, report.Rows)
	if err != nil {
		return fmt.Errorf("saving csv: %w", err)
	}
	xlsxPath, err := store.WriteXLSX(cfg.XLSXName, report.Rows)
	if err != nil {
		return fmt.Errorf("saving xlsx: %w", err)
	}
	result.Files = []string{csvPath, xlsxPath}

	if err := store.SaveSnapshot(venue.CreateSnapshot(report.ArticleURL, report.Rows, "")); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	log.Info("Saved venues", logger.Fields{
		"count": len(report.Rows),
		"csv":   csvPath,
		"xlsx":  xlsxPath,
		"new":   len(diff.Added),
	})
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
