package sentiment

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/pulsesift/pulsesift/internal/platform/observability"
	"github.com/pulsesift/pulsesift/internal/signal"
)

const (
	cacheEventHit      = "hit"
	cacheEventMiss     = "miss"
	cacheEventEviction = "eviction"
)

// cachedClassifier wraps a Classifier with a bounded, time-expiring LRU
// keyed by canonical content hash. Capacity eviction and TTL expiry keep
// memory bounded; the cache is never allowed to grow without limit.
type cachedClassifier struct {
	inner    Classifier
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	order   *list.List // most recently used at front
	entries map[string]*list.Element
}

type cacheEntry struct {
	key       string
	label     string
	expiresAt time.Time
}

// Cached wraps a classifier with a bounded TTL LRU cache.
func Cached(inner Classifier, capacity int, ttl time.Duration) Classifier {
	if capacity <= 0 {
		capacity = 1
	}

	return &cachedClassifier{
		inner:    inner,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *cachedClassifier) Classify(ctx context.Context, content string) (string, error) {
	key := signal.CanonicalHash(content)

	if label, ok := c.get(key); ok {
		observability.SentimentCacheEvents.WithLabelValues(cacheEventHit).Inc()

		return label, nil
	}

	observability.SentimentCacheEvents.WithLabelValues(cacheEventMiss).Inc()

	label, err := c.inner.Classify(ctx, content)
	if err != nil {
		return "", err
	}

	c.put(key, label)

	return label, nil
}

func (c *cachedClassifier) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.removeLocked(elem)

		return "", false
	}

	c.order.MoveToFront(elem)

	return entry.label, true
}

func (c *cachedClassifier) put(key, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.label = label
		entry.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(elem)

		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}

		c.removeLocked(oldest)
		observability.SentimentCacheEvents.WithLabelValues(cacheEventEviction).Inc()
	}

	elem := c.order.PushFront(&cacheEntry{
		key:       key,
		label:     label,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[key] = elem
}

func (c *cachedClassifier) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.order.Remove(elem)
	delete(c.entries, entry.key)
}
