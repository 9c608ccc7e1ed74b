package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"lovelybooks/collector/internal/client"
	"lovelybooks/collector/internal/config"
	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/metrics"
	"lovelybooks/collector/internal/output"
	"lovelybooks/collector/internal/proxy"
	"lovelybooks/collector/internal/service"
	"lovelybooks/collector/internal/textclean"

	log "github.com/sirupsen/logrus"
)

const metricsShutdownTimeout = 5 * time.Second

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Client  client.LovelyBooksClient
	Metrics *metrics.Metrics
	Service *service.Service

	metricsServer *http.Server
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(cfg.Metrics.Namespace),
	}

	proxySupplier, err := proxy.NewProxySupplier(ctx, cfg.Source.Proxies, cfg.Source.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	container.Client = client.NewLovelyBooksClient(cfg.Source, proxySupplier, container.Metrics)

	summaries := textclean.NewPipeline(cfg.Text.StripMarkup, cfg.Text.RemoveStopwords, cfg.Text.Language)
	parser := client.NewBookParser(summaries.Markup(), summaries)

	container.Service = service.NewService(
		container.Client,
		parser,
		output.NewOpener(cfg.Output),
		container.Metrics,
		service.Options{
			PageSize:      cfg.Source.PageSize,
			MaxPages:      cfg.Scrape.MaxPages,
			MaxWorkers:    cfg.Source.MaxWorkers,
			ProgressEvery: cfg.Scrape.ProgressEvery,
		},
	)

	if cfg.Metrics.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", container.Metrics.Handler())
		container.metricsServer = &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return container, nil
}

// Run collects the given categories once and writes the run document.
// The metrics endpoint, when configured, is served for the duration of the run.
func (c *Container) Run(ctx context.Context, categories []domain.Category) (*service.RunSummary, error) {
	run := domain.NewRun(time.Now())
	log.WithField("run_id", run.ID).Infof("🚀 Starting run for %d categories", len(categories))

	if c.metricsServer == nil {
		return c.Service.Run(ctx, run, categories)
	}

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		log.Infof("📈 Serving metrics on %s", c.metricsServer.Addr)
		if err := c.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-done:
		case <-gctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return c.metricsServer.Shutdown(shutdownCtx)
	})

	summary, runErr := c.Service.Run(ctx, run, categories)
	close(done)

	if err := g.Wait(); err != nil {
		log.Warnf("⚠️ Metrics endpoint stopped with error: %v", err)
	}

	return summary, runErr
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if err := c.Client.Close(); err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}

	log.Info("Container shut down successfully")
	return nil
}
