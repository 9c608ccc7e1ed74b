package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"lovelybooks/collector/internal/client"
	"lovelybooks/collector/internal/domain"
)

// fakeClient serves listing pages, tags and community info from memory.
type fakeClient struct {
	mu sync.Mutex

	// totals per category; a missing category fails like an exhausted fetch
	totals map[domain.Category]int
	// entries per category and page number
	pages map[domain.Category]map[int][]string
	// pages that always fail
	failPages map[domain.Category]map[int]bool

	tags          map[string][]string
	failTags      map[string]bool
	community     map[string]domain.CommunityInfo
	failCommunity map[string]bool

	pageCalls atomic.Int32

	// onTags runs before every tags lookup
	onTags func()
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		totals:        map[domain.Category]int{},
		pages:         map[domain.Category]map[int][]string{},
		failPages:     map[domain.Category]map[int]bool{},
		tags:          map[string][]string{},
		failTags:      map[string]bool{},
		community:     map[string]domain.CommunityInfo{},
		failCommunity: map[string]bool{},
	}
}

func (f *fakeClient) addPage(category domain.Category, page int, entries ...string) {
	if f.pages[category] == nil {
		f.pages[category] = map[int][]string{}
	}
	f.pages[category][page] = entries
}

func (f *fakeClient) GetBooksPage(ctx context.Context, page domain.PageDescriptor) (*domain.BooksPage, error) {
	f.pageCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("page %d of %s: %w: %w", page.PageNumber, page.Category, client.ErrUnavailable, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	total, ok := f.totals[page.Category]
	if !ok || f.failPages[page.Category][page.PageNumber] {
		return nil, fmt.Errorf("page %d of %s: %w", page.PageNumber, page.Category, client.ErrUnavailable)
	}

	entries := f.pages[page.Category][page.PageNumber]
	result := &domain.BooksPage{Page: page, TotalElements: total, Empty: len(entries) == 0}
	for _, entry := range entries {
		result.Entries = append(result.Entries, json.RawMessage(entry))
	}
	return result, nil
}

func (f *fakeClient) GetTags(ctx context.Context, bookID string) ([]string, error) {
	if f.onTags != nil {
		f.onTags()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tags for %s: %w: %w", bookID, client.ErrUnavailable, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failTags[bookID] {
		return nil, fmt.Errorf("tags for %s: %w", bookID, client.ErrUnavailable)
	}
	return f.tags[bookID], nil
}

func (f *fakeClient) GetCommunityInfo(ctx context.Context, bookID string) (*domain.CommunityInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("community for %s: %w: %w", bookID, client.ErrUnavailable, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCommunity[bookID] {
		return nil, fmt.Errorf("community for %s: %w", bookID, client.ErrUnavailable)
	}
	info := f.community[bookID]
	return &info, nil
}

func (f *fakeClient) Close() error { return nil }

func entry(id, title string) string {
	return fmt.Sprintf(`{"book": {"id": %q, "title": %q}}`, id, title)
}
