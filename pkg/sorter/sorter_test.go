// Package sorter_test contains tests for the sorter package.
package sorter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/recipebook/pkg/sorter"
)

func TestMakeFromStr(t *testing.T) {
	tests := []struct {
		name          string
		sortString    string
		allowedFields []string
		expected      sorter.SortOpts
	}{
		{
			name:          "empty string",
			sortString:    "",
			allowedFields: []string{"name", "created_at"},
			expected:      nil,
		},
		{
			name:          "valid single sort option",
			sortString:    "name:asc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
			),
		},
		{
			name:          "valid multiple sort options",
			sortString:    "name:asc,created_at:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "invalid field not in allowed list",
			sortString:    "name:asc,age:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
			),
		},
		{
			name:          "invalid direction",
			sortString:    "name:ascending,created_at:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "invalid format missing colon",
			sortString:    "name_asc,created_at:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "with spaces to trim",
			sortString:    " name : asc , created_at : desc ",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "mixed case direction",
			sortString:    "name:ASC,created_at:DESC",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "empty parts after splitting",
			sortString:    ",,name:asc,,created_at:desc,,",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual := sorter.MakeFromStr(tc.sortString, tc.allowedFields...)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestOptToSQL(t *testing.T) {
	tests := []struct {
		name     string
		opt      sorter.Opt
		expected string
	}{
		{
			name:     "ascending order",
			opt:      sorter.Opt{F: "name", D: "asc"},
			expected: "name asc",
		},
		{
			name:     "descending order",
			opt:      sorter.Opt{F: "created_at", D: "desc"},
			expected: "created_at desc",
		},
		{
			name:     "with table alias",
			opt:      sorter.Opt{F: "p.name", D: "asc"},
			expected: "p.name asc",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual := tc.opt.ToSQL()
			assert.Equal(t, tc.expected, actual)
		})
	}
}
