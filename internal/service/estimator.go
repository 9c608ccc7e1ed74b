package service

import (
	"context"
	"errors"
	"fmt"

	"lovelybooks/collector/internal/client"
	"lovelybooks/collector/internal/domain"
)

// ErrCategory marks a category that has to be skipped for this run.
var ErrCategory = errors.New("category failed")

// Estimator bounds the page fan-out of a category.
type Estimator struct {
	client client.LovelyBooksClient
}

func NewEstimator(client client.LovelyBooksClient) *Estimator {
	return &Estimator{client: client}
}

// Estimate reads the total element count from page 1 and returns
// ceil(total/pageSize), capped by maxPages when maxPages > 0.
func (e *Estimator) Estimate(ctx context.Context, category domain.Category, pageSize, maxPages int) (int, error) {
	if pageSize <= 0 {
		return 0, fmt.Errorf("%w: %s: page size must be positive, got %d", ErrCategory, category, pageSize)
	}

	first, err := e.client.GetBooksPage(ctx, domain.PageDescriptor{
		Category:   category,
		PageSize:   pageSize,
		PageNumber: 1,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCategory, category, err)
	}

	pages := PageCount(first.TotalElements, pageSize)
	if maxPages > 0 && maxPages < pages {
		pages = maxPages
	}
	return pages, nil
}

// PageCount is ceil(total/pageSize) for non-negative totals.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
