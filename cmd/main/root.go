package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lovelybooks/collector/internal/config"
	"lovelybooks/collector/internal/container"
	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/logger"

	log "github.com/sirupsen/logrus"
)

// newRootCmd wires flags into v so that flag > env > file > default.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "collector",
		Short: "Collect lovelybooks catalog records into one JSON document",
		Long: `collector walks the recommendation listing of every requested genre,
merges the books by identifier, enriches them with tags and community
statistics and writes a single {"books": [...]} document per run.

Examples:
  collector
  collector --genres romantasy,fantasy --max-pages 5
  collector --output-dir s3://my-bucket/books --metrics-address :9090`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, cfgFile)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or ./configs/config.yaml)")
	flags.StringSlice("genres", nil, "comma-delimited genres to collect")
	flags.Int("max-pages", 0, "cap the number of pages per genre (0 collects every page)")
	flags.String("output-dir", "", "output directory or bucket URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("metrics-address", "", "serve prometheus metrics on this address during the run")

	bindings := map[string]string{
		"scrape.categories": "genres",
		"scrape.max_pages":  "max-pages",
		"output.dir":        "output-dir",
		"log.level":         "log-level",
		"metrics.address":   "metrics-address",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func run(ctx context.Context, v *viper.Viper, cfgFile string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	log.Info("Configuration loaded successfully")

	categories := domain.ParseCategories(cfg.Scrape.Categories)

	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	summary, err := app.Run(ctx, categories)
	if err != nil {
		return fmt.Errorf("application exited with error: %w", err)
	}

	log.WithField("run_id", summary.Run.ID).Infof(
		"🏁 Finished: %d of %d categories ranged, %d books written to %s (tags %d/%d, community %d/%d)",
		summary.Categories-len(summary.CategoriesFailed), summary.Categories,
		summary.Written, summary.Output,
		summary.Tags.Succeeded, summary.Books,
		summary.Community.Succeeded, summary.Books,
	)
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(config.New()).ExecuteContext(ctx)
	stop()

	if err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
}
