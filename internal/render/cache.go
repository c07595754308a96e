package render

import "sync"

// DefaultCacheSize is the number of rendered messages kept by a Markdown renderer.
const DefaultCacheSize = 256

// cache is an LRU of rendered output keyed by markdown source. Resumed
// conversations re-render their whole history on every load, so repeated
// sources are common.
type cache struct {
	maxSize int
	entries map[string]*cacheNode
	head    *cacheNode
	tail    *cacheNode
	mu      sync.Mutex
}

// cacheNode is an element of the recency list, most recent after head.
type cacheNode struct {
	key   string
	value string
	prev  *cacheNode
	next  *cacheNode
}

func newCache(maxSize int) *cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	// Sentinel nodes
	head := &cacheNode{}
	tail := &cacheNode{}
	head.next = tail
	tail.prev = head

	return &cache{
		maxSize: maxSize,
		entries: make(map[string]*cacheNode),
		head:    head,
		tail:    tail,
	}
}

func (c *cache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.moveToHead(node)
	return node.value, true
}

func (c *cache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[key]; ok {
		node.value = value
		c.moveToHead(node)
		return
	}

	node := &cacheNode{key: key, value: value}
	c.entries[key] = node
	c.addToHead(node)

	if len(c.entries) > c.maxSize {
		lru := c.tail.prev
		c.removeNode(lru)
		delete(c.entries, lru.key)
	}
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// moveToHead, addToHead and removeNode expect c.mu to be held.
func (c *cache) moveToHead(node *cacheNode) {
	c.removeNode(node)
	c.addToHead(node)
}

func (c *cache) addToHead(node *cacheNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *cache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
