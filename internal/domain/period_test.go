package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriod_Valid(t *testing.T) {
	assert.True(t, NewPeriod(1, 2026).Valid())
	assert.True(t, NewPeriod(12, 2026).Valid())
	assert.False(t, NewPeriod(0, 2026).Valid())
	assert.False(t, NewPeriod(13, 2026).Valid())
	assert.False(t, NewPeriod(6, 1999).Valid())
}

func TestPeriod_Contains(t *testing.T) {
	period := NewPeriod(3, 2026)

	assert.True(t, period.Contains(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestPeriod_Next(t *testing.T) {
	assert.Equal(t, NewPeriod(4, 2026), NewPeriod(3, 2026).Next())
	assert.Equal(t, NewPeriod(1, 2027), NewPeriod(12, 2026).Next())
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "2026-03", NewPeriod(3, 2026).String())
}
