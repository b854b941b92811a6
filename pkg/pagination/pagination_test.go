package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/recipebook/pkg/pagination"
)

func TestRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.Request
		expectedPage int
		expectedSize int
	}{
		{
			name:         "zero values get defaults",
			req:          pagination.Request{},
			expectedPage: 1,
			expectedSize: 20,
		},
		{
			name:         "negative values get defaults",
			req:          pagination.Request{PageNumber: -3, PageSize: -1},
			expectedPage: 1,
			expectedSize: 20,
		},
		{
			name:         "valid values untouched",
			req:          pagination.Request{PageNumber: 4, PageSize: 50},
			expectedPage: 4,
			expectedSize: 50,
		},
		{
			name:         "oversized page clamped to max",
			req:          pagination.Request{PageNumber: 1, PageSize: 100000},
			expectedPage: 1,
			expectedSize: 100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.Normalize()
			assert.Equal(t, tc.expectedPage, tc.req.PageNumber)
			assert.Equal(t, tc.expectedSize, tc.req.PageSize)
		})
	}
}

func TestRequestOffsetLimit(t *testing.T) {
	req := pagination.Request{PageNumber: 3, PageSize: 10}

	assert.Equal(t, 20, req.Offset())
	assert.Equal(t, 10, req.Limit())
}

func TestNewResponse(t *testing.T) {
	req := pagination.Request{PageNumber: 2, PageSize: 10}

	resp := pagination.NewResponse([]string{"a", "b"}, 25, req)

	assert.Equal(t, 2, resp.PageNumber)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, 3, resp.PageCount)
	assert.Equal(t, int64(25), resp.TotalCount)
	assert.Equal(t, []string{"a", "b"}, resp.PageContent)
}

func TestNewResponseExactPages(t *testing.T) {
	req := pagination.Request{PageNumber: 1, PageSize: 10}

	resp := pagination.NewResponse([]int{1, 2, 3}, 30, req)

	assert.Equal(t, 3, resp.PageCount)
}
