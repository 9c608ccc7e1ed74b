package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// fetchJSON GETs url and decodes the body into a fresh T, retrying transient
// failures with exponential backoff. The wait after failed attempt k is
// retryWait * 2^(k-1); there is no wait after the last attempt.
func fetchJSON[T any](ctx context.Context, c *lovelyBooksClient, endpoint, url string, required ...string) (*T, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.metrics.FetchAttempts.WithLabelValues(endpoint).Inc()

		value, err := fetchOnce[T](ctx, c, url, required)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == c.maxAttempts {
			break
		}

		delay := c.retryWait << (attempt - 1)
		c.metrics.FetchRetries.WithLabelValues(endpoint).Inc()
		log.Debugf("🔄 %s attempt %d/%d failed, retrying in %v: %v", url, attempt, c.maxAttempts, delay, err)

		if err := c.sleep(ctx, delay); err != nil {
			lastErr = fmt.Errorf("backoff interrupted: %w", err)
			break
		}
	}

	c.metrics.FetchUnavailable.WithLabelValues(endpoint).Inc()
	return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, url, lastErr)
}

func fetchOnce[T any](ctx context.Context, c *lovelyBooksClient, url string, required []string) (*T, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return decodeJSON[T]([]byte(resp.String()), required)
}

// decodeJSON never returns a partially decoded value.
func decodeJSON[T any](body []byte, required []string) (*T, error) {
	if len(required) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
		for _, name := range required {
			if _, ok := fields[name]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
			}
		}
	}

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return &value, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
