package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/metrics"
	"lovelybooks/collector/internal/pool"
)

func newTestEnricher(t *testing.T) (*Enricher, *metrics.Metrics) {
	t.Helper()

	workers := pool.New(3)
	t.Cleanup(func() { _ = workers.Close() })

	m := metrics.New("test")
	return NewEnricher(workers, m), m
}

func booksWithIDs(ids ...string) []*domain.Book {
	books := make([]*domain.Book, 0, len(ids))
	for _, id := range ids {
		books = append(books, &domain.Book{Identifier: id})
	}
	return books
}

func TestCommunityFailureIsIsolated(t *testing.T) {
	fake := newFakeClient()
	fake.community["1"] = domain.CommunityInfo{NumberOfReaders: 10, NumberOfOwners: 5, NumberOfWishlist: 2}
	fake.community["3"] = domain.CommunityInfo{NumberOfReaders: 1, NumberOfOwners: 1, NumberOfWishlist: 1}
	fake.failCommunity["2"] = true

	enricher, m := newTestEnricher(t)
	books := booksWithIDs("1", "2", "3")

	out, stats := enricher.Enrich(context.Background(), books, NewCommunityEnrichment(fake))

	require.Len(t, out, 3)
	assert.True(t, out[0].HasCommunityInfo())
	assert.Equal(t, 10, *out[0].NumberOfReaders)
	assert.Nil(t, out[1].NumberOfReaders)
	assert.Nil(t, out[1].NumberOfOwners)
	assert.Nil(t, out[1].NumberOfWishlist)
	assert.True(t, out[2].HasCommunityInfo())

	assert.Equal(t, EnrichStats{Stage: "community", Succeeded: 2, Failed: 1}, stats)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentFailed.WithLabelValues("community")))
}

func TestTagsEnrichment(t *testing.T) {
	fake := newFakeClient()
	fake.tags["1"] = []string{"Fantasy", "Liebe"}
	fake.tags["2"] = []string{}
	fake.failTags["3"] = true

	enricher, _ := newTestEnricher(t)
	books := booksWithIDs("1", "2", "3")
	books[2].Tags = []string{"vorher"}

	out, stats := enricher.Enrich(context.Background(), books, NewTagsEnrichment(fake))

	assert.Equal(t, []string{"Fantasy", "Liebe"}, out[0].Tags)
	assert.Equal(t, []string{}, out[1].Tags)
	assert.Equal(t, []string{"vorher"}, out[2].Tags)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
}

type panickingEnrichment struct{}

func (panickingEnrichment) Name() string { return "panic" }

func (panickingEnrichment) Apply(_ context.Context, book *domain.Book) error {
	if book.Identifier == "bad" {
		panic("broken record")
	}
	book.SetTags([]string{"ok"})
	return nil
}

func TestPanickingBookDoesNotAbortStage(t *testing.T) {
	enricher, _ := newTestEnricher(t)

	out, stats := enricher.Enrich(context.Background(), booksWithIDs("good", "bad"), panickingEnrichment{})

	assert.Equal(t, []string{"ok"}, out[0].Tags)
	assert.Nil(t, out[1].Tags)
	assert.Equal(t, 1, stats.Failed)
}
