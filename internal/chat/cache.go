package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"samarkand-dashboard/internal/common/logger"
	"samarkand-dashboard/internal/common/metrics"
)

var ErrContextUnavailable = errors.New("CONTEXT_UNAVAILABLE")

// DefaultContextTTL is how long a built context stays valid.
const DefaultContextTTL = 600 * time.Second

// Snapshot is one built context blob.
type Snapshot struct {
	Text    string    `json:"text"`
	BuiltAt time.Time `json:"built_at"`
}

// Backend stores the current snapshot. Expiry is decided by ContextCache.
type Backend interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Store(ctx context.Context, snap Snapshot, ttl time.Duration) error
	Name() string
}

// BuildFunc produces a fresh context blob.
type BuildFunc func(ctx context.Context) (string, error)

// ContextCache serves the context blob, rebuilding it lazily once it is
// older than the TTL. Concurrent rebuilds may race; the last one wins.
type ContextCache struct {
	backend Backend
	build   BuildFunc
	ttl     time.Duration
	now     func() time.Time
	logger  logger.Logger
}

type CacheOption func(*ContextCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ContextCache) { c.now = now }
}

func NewContextCache(backend Backend, build BuildFunc, ttl time.Duration, log logger.Logger, opts ...CacheOption) *ContextCache {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	c := &ContextCache{
		backend: backend,
		build:   build,
		ttl:     ttl,
		now:     time.Now,
		logger:  log.WithFields(map[string]interface{}{"component": "context-cache", "backend": backend.Name()}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot while it is fresh, otherwise rebuilds it.
// A failed build is returned as ErrContextUnavailable and never stored.
func (c *ContextCache) Get(ctx context.Context) (Snapshot, error) {
	snap, ok, err := c.backend.Load(ctx)
	switch {
	case err != nil:
		metrics.ContextCacheLookups.WithLabelValues(c.backend.Name(), "error").Inc()
		c.logger.Warn("context cache read failed, rebuilding", map[string]interface{}{"error": err.Error()})
	case ok && c.fresh(snap):
		metrics.ContextCacheLookups.WithLabelValues(c.backend.Name(), "hit").Inc()
		return snap, nil
	default:
		metrics.ContextCacheLookups.WithLabelValues(c.backend.Name(), "miss").Inc()
	}

	text, err := c.build(ctx)
	if err != nil {
		c.logger.Error("context build failed", map[string]interface{}{"error": err.Error()})
		return Snapshot{}, fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}

	snap = Snapshot{Text: text, BuiltAt: c.now()}
	if err := c.backend.Store(ctx, snap, c.ttl); err != nil {
		c.logger.Warn("context cache write failed", map[string]interface{}{"error": err.Error()})
	}

	c.logger.Debug("context rebuilt", map[string]interface{}{"bytes": len(text)})
	return snap, nil
}

func (c *ContextCache) fresh(snap Snapshot) bool {
	return c.now().Sub(snap.BuiltAt) < c.ttl
}

// MemoryBackend keeps the snapshot in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Load(_ context.Context) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return Snapshot{}, false, nil
	}
	return *m.snap, true, nil
}

func (m *MemoryBackend) Store(_ context.Context, snap Snapshot, _ time.Duration) error {
	m.mu.Lock()
	m.snap = &snap
	m.mu.Unlock()
	return nil
}
