package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, 3, 5, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))
	c := NewFixed(at)

	assert.Equal(t, at.UTC(), c.Now())
	assert.Equal(t, time.UTC, c.Now().Location())
}

func TestManualClock_Advance(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	c := NewManual(start)

	c.Advance(5 * time.Minute)
	assert.Equal(t, start.Add(5*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}
