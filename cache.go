package p2p

import (
	"net/http"
	"sync"
	"time"
)

// Entry is one cached response. StoredAt is set by the dispatcher when the
// entry is written; LastModified comes from the response headers when present
// and drives conditional refreshes on force-update.
type Entry struct {
	Body         []byte
	StatusCode   int
	Header       http.Header
	ETag         string
	LastModified time.Time
	StoredAt     time.Time
}

// Cache maps request signatures to previously fetched values. A miss is a
// normal return, never an error. Implementations must tolerate concurrent
// reads and serialize concurrent writes to the same signature
// (last-writer-wins is acceptable). Expiry policy is delegate-defined: the
// in-memory cache never expires entries, other backends may apply TTLs.
type Cache interface {
	Get(sig Signature) (*Entry, bool)
	Set(sig Signature, entry *Entry)
	Delete(sig Signature)
	Clear()
}

// MemoryCache is a map-backed Cache. Entries never expire; callers refresh
// them with force-update or drop them with Delete.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[Signature]*Entry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[Signature]*Entry)}
}

// Get retrieves a cached entry.
func (c *MemoryCache) Get(sig Signature) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.store[sig]
	return entry, ok
}

// Set stores or overwrites an entry.
func (c *MemoryCache) Set(sig Signature, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[sig] = entry
}

// Delete removes an entry.
func (c *MemoryCache) Delete(sig Signature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, sig)
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[Signature]*Entry)
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// NoCache is the no-op Cache. Every read misses and writes are discarded.
// Useful for testing and for callers that want every call to hit the network.
type NoCache struct{}

func (NoCache) Get(Signature) (*Entry, bool) { return nil, false }
func (NoCache) Set(Signature, *Entry)        {}
func (NoCache) Delete(Signature)             {}
func (NoCache) Clear()                       {}
