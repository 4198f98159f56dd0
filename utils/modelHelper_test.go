package utils

import (
	"testing"

	"bitbucket.org/mmdatafocus/balances_backend/config"
)

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{"defaults", 0, 0, 0, config.SearchLimit},
		{"first page explicit", 1, 25, 0, 25},
		{"second page", 2, 25, 25, 25},
		{"default limit later page", 3, 0, 2 * config.SearchLimit, config.SearchLimit},
		{"negative page", -4, 5, 0, 5},
		{"negative limit", 2, -1, config.SearchLimit, config.SearchLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := NormalizePagination(tc.page, tc.limit)
			if offset != tc.wantOffset || limit != tc.wantLimit {
				t.Errorf("NormalizePagination(%d, %d) = (%d, %d), want (%d, %d)",
					tc.page, tc.limit, offset, limit, tc.wantOffset, tc.wantLimit)
			}
		})
	}
}
