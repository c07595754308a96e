package render

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetPut(t *testing.T) {
	c := newCache(2)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", "A")
	c.put("b", "B")
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	c.put("a", "A2")
	v, _ = c.get("a")
	assert.Equal(t, "A2", v)
	assert.Equal(t, 2, c.len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newCache(2)
	c.put("a", "A")
	c.put("b", "B")

	// touch a so b becomes the eviction candidate
	c.get("a")
	c.put("c", "C")

	_, ok := c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestCache_DefaultSize(t *testing.T) {
	c := newCache(0)
	for i := 0; i < DefaultCacheSize+10; i++ {
		c.put(fmt.Sprintf("k%d", i), "v")
	}
	assert.Equal(t, DefaultCacheSize, c.len())
}

func TestCache_Concurrent(t *testing.T) {
	c := newCache(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i*j)%32)
				c.put(key, key)
				c.get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.len(), 16)
}
