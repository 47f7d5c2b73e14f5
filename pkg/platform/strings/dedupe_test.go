package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil slice", nil, nil},
		{"empty slice", []string{}, []string{}},
		{"trims whitespace", []string{"  1|2|m  ", "3|4|m"}, []string{"1|2|m", "3|4|m"}},
		{"keeps first occurrence", []string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}},
		{"drops blanks", []string{"a", "", "  ", "b"}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimN(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		limit    int
		expected []string
	}{
		{"limit below distinct count", []string{"a", "b", "a", "c"}, 2, []string{"a", "b"}},
		{"duplicates do not count toward limit", []string{"a", "a", "a", "b"}, 2, []string{"a", "b"}},
		{"limit above distinct count", []string{"a", "b"}, 5, []string{"a", "b"}},
		{"zero limit", []string{"a"}, 0, []string{}},
		{"negative limit is unbounded", []string{"a", "b", "c"}, -1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimN(tt.input, tt.limit))
		})
	}
}
