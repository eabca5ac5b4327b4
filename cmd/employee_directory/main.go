// Package main provides the employee directory CLI and API server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/employee-directory/internal/config"
	"github.com/jonathan/employee-directory/internal/directory"
	"github.com/jonathan/employee-directory/internal/logging"
	"github.com/jonathan/employee-directory/internal/metrics"
	"github.com/jonathan/employee-directory/internal/observability"
	"github.com/jonathan/employee-directory/internal/records"
)

// app carries what every command needs once the root flags are parsed.
type app struct {
	configPath string
	backendURL string
	perPage    int
	logLevel   string
	timeout    time.Duration
	debounce   time.Duration
	jsonOutput bool

	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
	service *directory.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "employee_directory",
		Short:         "Employee directory CLI and API server",
		Long:          "Browse, search, create, edit and export employee records kept in the record store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to a JSON config file")
	pf.StringVar(&a.backendURL, "backend-url", "", "Record store API root (overrides BACKEND_API_URL_BASE)")
	pf.IntVar(&a.perPage, "per-page", 0, "Page size for listings (overrides EMPLOYEES_PER_PAGE)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pf.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout, 0 for none (overrides HTTP_TIMEOUT)")
	pf.DurationVar(&a.debounce, "debounce", 0, "Quiet period before an interactive search runs (overrides SEARCH_DEBOUNCE)")
	pf.BoolVar(&a.jsonOutput, "json", false, "Print JSON instead of formatted text")

	root.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newSearchCmd(a),
		newDashboardCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup layers configuration (environment, then config file, then flags) and
// builds the logger, metrics and directory service.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if a.configPath != "" {
		fileCfg, err := config.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		cfg = &merged
	}

	flags := cmd.Flags()
	if flags.Changed("backend-url") {
		cfg.BackendURL = a.backendURL
	}
	if flags.Changed("per-page") {
		cfg.PerPage = a.perPage
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("timeout") {
		cfg.HTTPTimeout = a.timeout
	}
	if flags.Changed("debounce") {
		cfg.SearchDebounce = a.debounce
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, !cfg.IsProduction())
	if err != nil {
		return err
	}

	rec := metrics.New()
	client, err := records.New(&records.Options{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  logger,
		Metrics: rec,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.metrics = rec
	a.service = directory.New(client, directory.Options{
		Logger:      logger,
		Metrics:     rec,
		SearchDelay: cfg.SearchDebounce,
	})
	return nil
}

func (a *app) printer(cmd *cobra.Command) *observability.Printer {
	return observability.NewPrinter(cmd.OutOrStdout())
}

// emit prints v as indented JSON when --json is set, otherwise calls text.
func (a *app) emit(cmd *cobra.Command, v any, text func(p *observability.Printer)) error {
	if a.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	text(a.printer(cmd))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func main() {
	if _, err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
