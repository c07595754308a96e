package testutils

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_UUID(t *testing.T) {
	s := NewSequence()

	assert.Equal(t, "00000001-0000-4000-8000-000000000001", s.UUID())
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", s.UUID())

	s.Reset()
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", s.UUID())
}

func TestSequence_ValidUUIDv4(t *testing.T) {
	s := NewSequence()
	for i := 0; i < 20; i++ {
		id, err := uuid.Parse(s.UUID())
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())
		assert.Equal(t, uuid.RFC4122, id.Variant())
	}
}

func TestSequence_Concurrent(t *testing.T) {
	s := NewSequence()
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := s.UUID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 500)
}

func TestClock(t *testing.T) {
	c := NewClock()

	first := c.Now()
	second := c.Now()
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC), first)
	assert.Equal(t, time.Second, second.Sub(first))

	c.Reset()
	assert.Equal(t, first, c.Now())
}
