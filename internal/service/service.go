package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lovelybooks/collector/internal/client"
	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/metrics"
	"lovelybooks/collector/internal/output"
	"lovelybooks/collector/internal/pool"

	log "github.com/sirupsen/logrus"
)

// ErrFatal marks a failure that aborted the whole run.
var ErrFatal = errors.New("run aborted")

type Options struct {
	PageSize      int
	MaxPages      int // 0 means every page
	MaxWorkers    int
	ProgressEvery int
}

// RunSummary reports what a run gathered.
type RunSummary struct {
	Run              domain.Run
	Categories       int
	CategoriesFailed []domain.Category
	Collect          CollectStats
	Books            int
	Tags             EnrichStats
	Community        EnrichStats
	Written          int
	Output           string
	Elapsed          time.Duration
}

type Service struct {
	client  client.LovelyBooksClient
	parser  *client.BookParser
	opener  output.Opener
	metrics *metrics.Metrics
	opts    Options
}

func NewService(
	client client.LovelyBooksClient,
	parser *client.BookParser,
	opener output.Opener,
	metrics *metrics.Metrics,
	opts Options,
) *Service {
	return &Service{
		client:  client,
		parser:  parser,
		opener:  opener,
		metrics: metrics,
		opts:    opts,
	}
}

// Run collects every category, enriches the merged set with tags and then
// community statistics, and writes the run document. Per-page and per-book
// failures are absorbed; only errors wrapping ErrFatal end the run early.
// A cancelled context ends the run after the current phase without a document.
func (s *Service) Run(ctx context.Context, run domain.Run, categories []domain.Category) (summary *RunSummary, err error) {
	logger := log.WithField("run_id", run.ID)
	summary = &RunSummary{Run: run, Categories: len(categories)}

	workers := pool.New(s.opts.MaxWorkers)
	defer func() {
		if closeErr := workers.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: worker pool: %w", ErrFatal, closeErr)
		}
		summary.Elapsed = time.Since(run.StartedAt)
		logger.Infof("🧹 Cleaned up. Running took %v", summary.Elapsed.Round(time.Millisecond))
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrFatal, r)
		}
	}()

	books := s.collectAll(ctx, logger, workers, categories, summary)
	if err := interrupted(ctx, "collection"); err != nil {
		return summary, err
	}
	summary.Books = books.Len()
	s.metrics.BooksCollected.Set(float64(books.Len()))

	if len(categories) == 0 || len(summary.CategoriesFailed) == len(categories) {
		logger.Warnf("⚠️ No category could be ranged, the document will be empty")
	}
	logger.Infof("✅ Finished getting basic book data for %d books", books.Len())

	list := books.Books()

	enricher := NewEnricher(workers, s.metrics)
	list, summary.Tags = enricher.Enrich(ctx, list, NewTagsEnrichment(s.client))
	if err := interrupted(ctx, "tags"); err != nil {
		return summary, err
	}
	list, summary.Community = enricher.Enrich(ctx, list, NewCommunityEnrichment(s.client))
	if err := interrupted(ctx, "community"); err != nil {
		return summary, err
	}

	if err := s.write(ctx, run, list, summary); err != nil {
		return summary, err
	}

	logger.Infof("✅ No. of books: %d written to %s", summary.Written, summary.Output)
	return summary, nil
}

func (s *Service) collectAll(
	ctx context.Context,
	logger *log.Entry,
	workers *pool.Pool,
	categories []domain.Category,
	summary *RunSummary,
) *domain.BookSet {
	books := domain.NewBookSet()
	estimator := NewEstimator(s.client)
	collector := NewCollector(s.client, s.parser, workers, s.metrics, s.opts.ProgressEvery)

	for i, category := range categories {
		if ctx.Err() != nil {
			break
		}
		logger.Infof("🔄 Scraping category %d of %d: %s", i+1, len(categories), category)

		pages, err := estimator.Estimate(ctx, category, s.opts.PageSize, s.opts.MaxPages)
		if err != nil {
			logger.Errorf("❌ Skipping category %s: %v", category, err)
			summary.CategoriesFailed = append(summary.CategoriesFailed, category)
			continue
		}

		found, stats := collector.Collect(ctx, domain.PageRange(category, s.opts.PageSize, pages))
		books.Merge(found)

		summary.Collect.Pages += stats.Pages
		summary.Collect.PagesEmpty += stats.PagesEmpty
		summary.Collect.PagesUnavailable += stats.PagesUnavailable
		summary.Collect.Entries += stats.Entries
		summary.Collect.ExtractionLosses += stats.ExtractionLosses
		summary.Collect.Books += stats.Books

		logger.Infof("✅ Completed %s: %d pages, %d books, %d unavailable pages, %d dropped entries",
			category, stats.Pages, stats.Books, stats.PagesUnavailable, stats.ExtractionLosses)
	}

	return books
}

func (s *Service) write(ctx context.Context, run domain.Run, books []*domain.Book, summary *RunSummary) error {
	sink, err := s.opener.Open(ctx, run)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFatal, err)
	}
	summary.Output = sink.Name()

	written, writeErr := output.WriteAll(sink, books)
	summary.Written = written
	s.metrics.BooksWritten.Add(float64(written))

	closeErr := sink.Close()
	if writeErr != nil {
		return fmt.Errorf("%w: %w", ErrFatal, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %w", ErrFatal, closeErr)
	}
	return nil
}

// interrupted reports a cancelled run. No document is written for it, so a
// document on disk always belongs to a run that finished.
func interrupted(ctx context.Context, phase string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: interrupted during %s: %w", ErrFatal, phase, err)
	}
	return nil
}
