package viewcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/observability/metrics"
)

// Subscriber is told about every key that was invalidated.
type Subscriber func(ctx context.Context, key string)

type Invalidator struct {
	store Store
	log   *logger.Logger

	mu          sync.RWMutex
	subscribers []Subscriber

	// genMu orders Invalidate against StoreIfCurrent so that a value read
	// before an invalidation is never written back after it.
	genMu       sync.Mutex
	generations map[string]uint64
}

func NewInvalidator(store Store, log *logger.Logger) *Invalidator {
	return &Invalidator{
		store:       store,
		log:         log,
		generations: make(map[string]uint64),
	}
}

// Generation returns the number of invalidations seen for key. Take it
// before computing a value that will be passed to StoreIfCurrent.
func (i *Invalidator) Generation(key string) uint64 {
	i.genMu.Lock()
	defer i.genMu.Unlock()
	return i.generations[key]
}

// StoreIfCurrent caches value unless key was invalidated after gen was read.
// It reports whether the value was stored.
func (i *Invalidator) StoreIfCurrent(ctx context.Context, key string, gen uint64, value []byte, ttl time.Duration) (bool, error) {
	i.genMu.Lock()
	defer i.genMu.Unlock()

	if i.generations[key] != gen {
		metrics.ViewCacheStaleWritesTotal.WithLabelValues(key).Inc()
		return false, nil
	}
	if err := i.store.Set(ctx, key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (i *Invalidator) Subscribe(fn Subscriber) {
	i.mu.Lock()
	i.subscribers = append(i.subscribers, fn)
	i.mu.Unlock()
}

// Invalidate drops key from the store, then notifies subscribers. They are
// not notified when the delete fails.
func (i *Invalidator) Invalidate(ctx context.Context, key string) error {
	i.genMu.Lock()
	i.generations[key]++
	err := i.store.Delete(ctx, key)
	i.genMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}

	metrics.ViewCacheInvalidationsTotal.WithLabelValues(key).Inc()
	i.log.WithFields(ctx, logger.Fields{
		"action": "view_invalidated",
		"key":    key,
	}).Debug("view cache entry invalidated")

	i.mu.RLock()
	subs := make([]Subscriber, len(i.subscribers))
	copy(subs, i.subscribers)
	i.mu.RUnlock()

	for _, fn := range subs {
		fn(ctx, key)
	}
	return nil
}
