package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lovelybooks/collector/internal/config"
	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/metrics"
	"lovelybooks/collector/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

var (
	// ErrUnavailable is returned once an address exhausted its retry budget.
	// It means "no data could be fetched", never "the source has no data".
	ErrUnavailable = errors.New("resource unavailable")

	// ErrMissingField marks a response without a field the caller relies on.
	ErrMissingField = errors.New("missing field in response")
)

const (
	endpointBooks     = "books"
	endpointTags      = "tags"
	endpointCommunity = "community"
)

type LovelyBooksClient interface {
	GetBooksPage(ctx context.Context, page domain.PageDescriptor) (*domain.BooksPage, error)
	GetTags(ctx context.Context, bookID string) ([]string, error)
	GetCommunityInfo(ctx context.Context, bookID string) (*domain.CommunityInfo, error)
	Close() error
}

type lovelyBooksClient struct {
	rl          ratelimit.Limiter
	baseURL     string
	httpClient  *resty.Client
	metrics     *metrics.Metrics
	maxAttempts int
	retryWait   time.Duration

	// sleep waits out a backoff delay; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewLovelyBooksClient(cfg config.SourceConfig, proxySupplier proxy.ProxySupplier, m *metrics.Metrics) LovelyBooksClient {
	return newLovelyBooksClient(cfg, proxySupplier, m)
}

func newLovelyBooksClient(cfg config.SourceConfig, proxySupplier proxy.ProxySupplier, m *metrics.Metrics) *lovelyBooksClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxySupplier != nil && proxySupplier.Len() > 0 {
		transport.Proxy = proxySupplier.ProxyFunc()
		log.Infof("🔗 Rotating requests over %d proxies", proxySupplier.Len())
	}

	httpClient := resty.NewWithClient(&http.Client{Transport: transport}).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	if m == nil {
		m = metrics.New("")
	}

	// max_retries counts attempts; the last failed attempt is not followed by a wait,
	// so three attempts wait 2s and 4s rather than 2s, 4s and 8s
	maxAttempts := cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &lovelyBooksClient{
		rl:          rl,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  httpClient,
		metrics:     m,
		maxAttempts: maxAttempts,
		retryWait:   cfg.RetryWait,
		sleep:       sleepContext,
	}
}

func (c *lovelyBooksClient) GetBooksPage(ctx context.Context, page domain.PageDescriptor) (*domain.BooksPage, error) {
	u := fmt.Sprintf("%s/mapi/books/recommendations?tag=%s&size=%d&page=%d",
		c.baseURL, url.QueryEscape(page.Category.String()), page.PageSize, page.PageNumber)

	resp, err := fetchJSON[booksPageResponse](ctx, c, endpointBooks, u, "empty", "totalElements")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d of %s: %w", page.PageNumber, page.Category, err)
	}

	result := &domain.BooksPage{
		Page:          page,
		TotalElements: resp.TotalElements,
		Empty:         resp.Empty,
	}
	if !resp.Empty {
		result.Entries = resp.Content
	}

	log.Debugf("Fetched page %d of %s with %d entries", page.PageNumber, page.Category, len(result.Entries))
	return result, nil
}

func (c *lovelyBooksClient) GetTags(ctx context.Context, bookID string) ([]string, error) {
	u := fmt.Sprintf("%s/mapi/targeting/data?page=BOOK&identifier=%s", c.baseURL, url.QueryEscape(bookID))

	resp, err := fetchJSON[tagsResponse](ctx, c, endpointTags, u, "tags")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags for book %s: %w", bookID, err)
	}

	tags := resp.Tags
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (c *lovelyBooksClient) GetCommunityInfo(ctx context.Context, bookID string) (*domain.CommunityInfo, error) {
	u := fmt.Sprintf("%s/mapi/books/%s/communityInfo", c.baseURL, url.PathEscape(bookID))

	info, err := fetchJSON[domain.CommunityInfo](ctx, c, endpointCommunity, u,
		"numberOfReaders", "numberOfOwners", "numberOfWishlist")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community info for book %s: %w", bookID, err)
	}
	return info, nil
}

func (c *lovelyBooksClient) Close() error {
	return c.httpClient.Close()
}

type booksPageResponse struct {
	TotalElements int               `json:"totalElements"`
	Empty         bool              `json:"empty"`
	Content       []json.RawMessage `json:"content"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}
