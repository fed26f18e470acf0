package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

func TestFormatJulian(t *testing.T) {
	assert.Equal(t, "2025-06-06", formatJulian(domain.JulianDate{Year: 2025, Day: 157}))
	assert.Equal(t, "2024-12-31", formatJulian(domain.JulianDate{Year: 2024, Day: 366}))

	// An out-of-range day falls back to the raw published form.
	assert.Equal(t, "2025366", formatJulian(domain.JulianDate{Year: 2025, Day: 366}))
}
