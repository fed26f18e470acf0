package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBadLines(t *testing.T) {
	tests := []struct {
		name     string
		badLines map[string]int
		want     string
	}{
		{
			name:     "none",
			badLines: map[string]int{},
			want:     "0",
		},
		{
			name:     "single kind",
			badLines: map[string]int{"line_too_short": 3},
			want:     "3 (line_too_short: 3)",
		},
		{
			name:     "kinds sorted",
			badLines: map[string]int{"field": 2, "encoding": 1},
			want:     "3 (encoding: 1, field: 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatBadLines(tt.badLines))
		})
	}
}
