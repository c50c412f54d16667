package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockRandomQueues(t *testing.T) {
	r := NewMockRandom()
	r.QueueIntn(3, 9)
	r.QueueString("ABCDEF")

	assert.Equal(t, 3, r.Intn(10))
	assert.Equal(t, 4, r.Intn(5), "values past the bound are clamped")
	assert.Equal(t, 0, r.Intn(10))
	assert.Equal(t, "ABCDEF", r.String(6, "X"))
	assert.Equal(t, "", r.String(6, "X"))

	r.Reset()
	r.QueueIntn(1)
	assert.Equal(t, 1, r.Intn(10))
}

func TestQueueSecretDraws(t *testing.T) {
	r := NewMockRandom()
	r.QueueSecret("1234")
	assert.Equal(t, []int{1, 1, 1, 1}, r.intnResults)

	r.Reset()
	r.QueueSecret("9081")
	assert.Equal(t, []int{9, 0, 7, 0}, r.intnResults)
}

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.Advance(time.Minute)
	assert.Equal(t, start.Add(time.Minute), c.Now())
	c.Set(start)
	assert.Equal(t, start, c.Now())
}
