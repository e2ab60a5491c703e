package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/index"
	"github.com/pfrederiksen/spielplan/internal/logger"
	"github.com/pfrederiksen/spielplan/internal/pipeline"
	"github.com/pfrederiksen/spielplan/internal/scraper"
	"github.com/pfrederiksen/spielplan/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// NewRootCmd creates the root command. The version is shown in the help text.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spielplan",
		Short: "Export football match schedules as CSV, XLSX, ICS and Jira CSV",
		Long: `Fetches the match schedule of every configured team from the federation
API and writes CSV, XLSX, iCalendar and Jira import files plus an index.html
into the output directory.

Configuration is read from spielplan.yaml (or the file named by
SPIELPLAN_CONFIG), an optional .env file and SPIELPLAN_* environment variables.

Version: ` + version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExport,
	}

	cmd.AddCommand(newIndexCmd())

	return cmd
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Regenerate index.html from the files in the output directory",
		Args:  cobra.NoArgs,
		RunE:  runIndex,
	}
}

// setup loads the configuration through load and installs the configured logger.
func setup(load func() (*config.Config, error)) (*config.Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return cfg, nil
}

// runExport is the main command logic
func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := setup(config.Load)
	if err != nil {
		return err
	}

	logger.Info("Starting export", logger.Fields{
		"teams":      len(cfg.Teams),
		"output_dir": cfg.OutputDir,
		"source":     cfg.API.Source,
	})

	src := scraper.New(scraper.Options{
		BaseURL:           cfg.API.BaseURL,
		Source:            cfg.API.Source,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})

	summary, err := pipeline.New(cfg, src).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if err := WriteSummary(cmd.OutOrStdout(), summary); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// runIndex only reads the output directory, so teams are not required.
func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := setup(config.LoadOutput)
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return err
	}

	page, err := index.Generate(store, time.Now())
	if err != nil {
		return fmt.Errorf("generating index: %w", err)
	}

	logger.Info("Index regenerated", logger.Fields{
		"files":      page.Total,
		"output_dir": store.Dir(),
	})
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files listed\n", store.Path(storage.IndexFile), page.Total)
	return nil
}

// Execute runs the CLI
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd(version)
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error("Command failed", nil, err)
		stop()
		os.Exit(ExitError)
	}
}
