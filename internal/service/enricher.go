package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"lovelybooks/collector/internal/client"
	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/metrics"
	"lovelybooks/collector/internal/pool"

	log "github.com/sirupsen/logrus"
)

// Enrichment attaches one attribute group to a book.
type Enrichment interface {
	Name() string
	// Apply must leave book unchanged when it returns an error
	Apply(ctx context.Context, book *domain.Book) error
}

// TagsEnrichment attaches the tag list of a book.
type TagsEnrichment struct {
	client client.LovelyBooksClient
}

func NewTagsEnrichment(client client.LovelyBooksClient) *TagsEnrichment {
	return &TagsEnrichment{client: client}
}

func (e *TagsEnrichment) Name() string { return "tags" }

func (e *TagsEnrichment) Apply(ctx context.Context, book *domain.Book) error {
	tags, err := e.client.GetTags(ctx, book.Identifier)
	if err != nil {
		return err
	}
	book.SetTags(tags)
	return nil
}

// CommunityEnrichment attaches readers, owners and wishlist counters.
type CommunityEnrichment struct {
	client client.LovelyBooksClient
}

func NewCommunityEnrichment(client client.LovelyBooksClient) *CommunityEnrichment {
	return &CommunityEnrichment{client: client}
}

func (e *CommunityEnrichment) Name() string { return "community" }

func (e *CommunityEnrichment) Apply(ctx context.Context, book *domain.Book) error {
	info, err := e.client.GetCommunityInfo(ctx, book.Identifier)
	if err != nil {
		return err
	}
	book.SetCommunityInfo(*info)
	return nil
}

// EnrichStats summarizes one stage
type EnrichStats struct {
	Stage     string
	Succeeded int
	Failed    int
}

// Enricher applies an enrichment to every book on the worker pool, one task
// per book, so no two workers ever touch the same book.
type Enricher struct {
	workers *pool.Pool
	metrics *metrics.Metrics
}

func NewEnricher(workers *pool.Pool, metrics *metrics.Metrics) *Enricher {
	return &Enricher{
		workers: workers,
		metrics: metrics,
	}
}

// Enrich returns books once every book has been processed. Failed books
// keep their previous values.
func (e *Enricher) Enrich(ctx context.Context, books []*domain.Book, op Enrichment) ([]*domain.Book, EnrichStats) {
	stage := op.Name()
	var succeeded, failed atomic.Int32

	log.Infof("🔄 Enriching %d books with %s", len(books), stage)

	group := e.workers.Group()
	for _, book := range books {
		err := group.Go(func() {
			if err := applyIsolated(ctx, op, book); err != nil {
				failed.Add(1)
				e.metrics.EnrichmentFailed.WithLabelValues(stage).Inc()
				log.Warnf("⚠️ Could not attach %s to book %s: %v", stage, book.Identifier, err)
				return
			}
			succeeded.Add(1)
			e.metrics.EnrichmentSucceeded.WithLabelValues(stage).Inc()
		})
		if err != nil {
			failed.Add(1)
			e.metrics.EnrichmentFailed.WithLabelValues(stage).Inc()
			log.Errorf("❌ Failed to schedule %s for book %s: %v", stage, book.Identifier, err)
		}
	}
	group.Wait()

	stats := EnrichStats{
		Stage:     stage,
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
	log.Infof("✅ Finished %s: %d enriched, %d failed", stage, stats.Succeeded, stats.Failed)
	return books, stats
}

// applyIsolated turns a panicking enrichment into an error for that book only.
func applyIsolated(ctx context.Context, op Enrichment, book *domain.Book) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return op.Apply(ctx, book)
}
