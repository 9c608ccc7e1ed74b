package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovelybooks/collector/internal/client"
)

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, PageCount(125, 60))
	assert.Equal(t, 2, PageCount(120, 60))
	assert.Equal(t, 1, PageCount(1, 60))
	assert.Equal(t, 0, PageCount(0, 60))
	assert.Equal(t, 0, PageCount(10, 0))
}

func TestEstimate(t *testing.T) {
	fake := newFakeClient()
	fake.totals["fantasy"] = 125
	estimator := NewEstimator(fake)

	tests := []struct {
		name     string
		maxPages int
		want     int
	}{
		{"uncapped", 0, 3},
		{"cap below estimate", 2, 2},
		{"cap above estimate", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := estimator.Estimate(context.Background(), "fantasy", 60, tt.maxPages)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pages)
		})
	}
}

func TestEstimateFailureIsCategoryFailure(t *testing.T) {
	estimator := NewEstimator(newFakeClient())

	_, err := estimator.Estimate(context.Background(), "unknown", 60, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCategory))
	assert.True(t, errors.Is(err, client.ErrUnavailable))

	_, err = estimator.Estimate(context.Background(), "unknown", 0, 0)
	assert.True(t, errors.Is(err, ErrCategory))
}
