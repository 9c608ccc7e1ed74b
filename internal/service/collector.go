package service

import (
	"context"
	"sync/atomic"

	"lovelybooks/collector/internal/client"
	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/metrics"
	"lovelybooks/collector/internal/pool"

	log "github.com/sirupsen/logrus"
)

// CollectStats summarizes one Collect call
type CollectStats struct {
	Pages            int
	PagesEmpty       int
	PagesUnavailable int
	Entries          int
	ExtractionLosses int
	Books            int
}

func (s *CollectStats) add(r pageResult) {
	s.Pages++
	s.Entries += r.entries
	s.ExtractionLosses += r.losses
	switch {
	case r.unavailable:
		s.PagesUnavailable++
	case r.empty:
		s.PagesEmpty++
	}
}

type pageResult struct {
	page        domain.PageDescriptor
	books       []*domain.Book
	entries     int
	losses      int
	empty       bool
	unavailable bool
}

// Collector fans listing pages out over the worker pool and merges the
// extracted books by identifier.
type Collector struct {
	client        client.LovelyBooksClient
	parser        *client.BookParser
	workers       *pool.Pool
	metrics       *metrics.Metrics
	progressEvery int
}

func NewCollector(
	client client.LovelyBooksClient,
	parser *client.BookParser,
	workers *pool.Pool,
	metrics *metrics.Metrics,
	progressEvery int,
) *Collector {
	return &Collector{
		client:        client,
		parser:        parser,
		workers:       workers,
		metrics:       metrics,
		progressEvery: progressEvery,
	}
}

// Collect fetches every page and returns a fresh set of the books found.
// Workers only fetch and extract; the calling goroutine is the single owner
// of the set and merges results as they arrive.
func (c *Collector) Collect(ctx context.Context, pages []domain.PageDescriptor) (*domain.BookSet, CollectStats) {
	books := domain.NewBookSet()
	var stats CollectStats

	if len(pages) == 0 {
		return books, stats
	}

	results := make(chan pageResult)
	var completed atomic.Int32

	go func() {
		defer close(results)

		group := c.workers.Group()
		for _, page := range pages {
			err := group.Go(func() {
				results <- c.fetchPage(ctx, page)
			})
			if err != nil {
				log.Errorf("❌ Failed to schedule page %d of %s: %v", page.PageNumber, page.Category, err)
				results <- pageResult{page: page, unavailable: true}
			}
		}
		group.Wait()
	}()

	for result := range results {
		stats.add(result)
		for _, book := range result.books {
			books.Put(book)
		}

		done := completed.Add(1)
		if c.progressEvery > 0 && int(done)%c.progressEvery == 0 {
			log.Infof("Fetched %d pages out of %d for category %s", done, len(pages), result.page.Category)
		}
	}

	stats.Books = books.Len()
	return books, stats
}

func (c *Collector) fetchPage(ctx context.Context, page domain.PageDescriptor) pageResult {
	result := pageResult{page: page}
	category := page.Category.String()

	fetched, err := c.client.GetBooksPage(ctx, page)
	if err != nil {
		log.Warnf("⚠️ No data for page %d of %s: %v", page.PageNumber, page.Category, err)
		result.unavailable = true
		c.metrics.PagesCompleted.WithLabelValues(category, "unavailable").Inc()
		return result
	}

	if fetched.Empty {
		result.empty = true
		c.metrics.PagesCompleted.WithLabelValues(category, "empty").Inc()
		return result
	}

	result.entries = len(fetched.Entries)
	result.books = make([]*domain.Book, 0, len(fetched.Entries))
	for _, entry := range fetched.Entries {
		book, err := c.parser.ParseBook(entry)
		if err != nil {
			log.Debugf("Dropping entry on page %d of %s: %v", page.PageNumber, page.Category, err)
			result.losses++
			continue
		}
		result.books = append(result.books, book)
	}

	if result.losses > 0 {
		c.metrics.ExtractionLosses.WithLabelValues(category).Add(float64(result.losses))
	}
	c.metrics.PagesCompleted.WithLabelValues(category, "data").Inc()
	return result
}
