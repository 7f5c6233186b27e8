package insightvm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Cache errors.
var (
	ErrCacheKeyNotFound   = errors.New("key not found")
	ErrCacheEntryExpired  = errors.New("entry expired")
	ErrCacheValueTooLarge = errors.New("value exceeds maximum cache size")
)

// CacheEntry is one cached response payload with its expiry.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry's TTL has elapsed.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Cache is a pluggable backend for the read-through response cache. It
// is used only for slow-changing lookups such as report templates; bulk
// dry-run previews always fetch fresh and never consult a cache.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheOptions holds options common to all backends.
type CacheOptions struct {
	// DefaultTTL applies when an entry is stored with a zero ExpiresAt.
	DefaultTTL time.Duration

	// MaxValueSize rejects oversized values. Zero means 1MB.
	MaxValueSize int
}

// DefaultCacheOptions returns sensible cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		DefaultTTL:   5 * time.Minute,
		MaxValueSize: 1024 * 1024,
	}
}

// MemoryCache is an in-process Cache with a bounded entry count. Expired
// entries are dropped lazily on read and evicted first on overflow.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
	opts    *CacheOptions
}

// NewMemoryCache creates a memory cache holding at most maxSize entries,
// with default options.
func NewMemoryCache(maxSize int) *MemoryCache {
	return NewMemoryCacheWithOptions(maxSize, nil)
}

// NewMemoryCacheWithOptions creates a memory cache with explicit options.
// Nil options use DefaultCacheOptions.
func NewMemoryCacheWithOptions(maxSize int, opts *CacheOptions) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1000
	}

	if opts == nil {
		opts = DefaultCacheOptions()
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		opts:    opts,
	}
}

// Get returns the entry for key, or an error if absent or expired.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.Expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting to stay within the size bound. Values
// above the configured MaxValueSize are rejected.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if c.opts.MaxValueSize > 0 && len(entry.Data) > c.opts.MaxValueSize {
		return fmt.Errorf("%w: %d bytes", ErrCacheValueTooLarge, len(entry.Data))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if entry.ExpiresAt.IsZero() && c.opts.DefaultTTL > 0 {
		entry.ExpiresAt = entry.CreatedAt.Add(c.opts.DefaultTTL)
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mu.Unlock()

	return nil
}

// Has reports whether key holds an unexpired entry.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// evictLocked removes expired entries, and if none were expired, one
// arbitrary entry. Callers must hold the write lock.
func (c *MemoryCache) evictLocked() {
	removed := false

	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)

			removed = true
		}
	}

	if removed {
		return
	}

	for key := range c.entries {
		delete(c.entries, key)

		return
	}
}

// NATSKVConfig configures the NATS JetStream key-value cache backend.
type NATSKVConfig struct {
	// URL is the NATS server URL, e.g. nats://localhost:4222.
	URL string

	// Bucket is the KV bucket name; created with TTL if absent.
	Bucket string

	// CredsFile is an optional NATS credentials file.
	CredsFile string

	// TTL is the bucket-level entry TTL.
	TTL time.Duration
}

// NATSKVCache is a Cache backed by a NATS JetStream key-value bucket,
// shared across processes pointing at the same bucket.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	opts := []nats.Option{nats.Name("insightvm-go-cache")}
	if config.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(config.CredsFile))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("getting JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    config.TTL,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding KV bucket %q: %w", config.Bucket, err)
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// natsKeyReplacer maps characters NATS KV keys disallow.
var natsKeyReplacer = strings.NewReplacer("/", ".", " ", "_", "?", "_", "&", "_")

// Get returns the entry for key, or an error if absent or expired.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(natsKeyReplacer.Replace(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
		}

		return nil, fmt.Errorf("reading KV entry: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding KV entry: %w", err)
	}

	if entry.Expired() {
		_ = c.kv.Delete(natsKeyReplacer.Replace(key))

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return &entry, nil
}

// Set stores an entry.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding KV entry: %w", err)
	}

	_, err = c.kv.Put(natsKeyReplacer.Replace(key), data)
	if err != nil {
		return fmt.Errorf("writing KV entry: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(natsKeyReplacer.Replace(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting KV entry: %w", err)
	}

	return nil
}

// Clear removes every entry in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing KV keys: %w", err)
	}

	for _, key := range keys {
		err := c.kv.Delete(key)
		if err != nil {
			return fmt.Errorf("deleting KV entry %q: %w", key, err)
		}
	}

	return nil
}

// Has reports whether key holds an unexpired entry.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close drains the underlying NATS connection.
func (c *NATSKVCache) Close() error {
	if err := c.conn.Drain(); err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// CachedJSON is a generic read-through helper: return the cached value
// under key if fresh, otherwise call fetch, cache the result for ttl,
// and return it. A cache write failure does not fail the lookup.
func CachedJSON[T any](ctx context.Context, cache Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if cache != nil {
		if entry, err := cache.Get(ctx, key); err == nil {
			var value T
			if err := json.Unmarshal(entry.Data, &value); err == nil {
				return value, nil
			}
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if cache != nil {
		if data, err := json.Marshal(value); err == nil {
			_ = cache.Set(ctx, key, &CacheEntry{
				Data:      data,
				CreatedAt: time.Now(),
				ExpiresAt: time.Now().Add(ttl),
			})
		}
	}

	return value, nil
}
