package fetch

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one cached response.
type Entry struct {
	Status    int
	Header    http.Header
	Body      []byte
	ExpiresAt time.Time
}

func (e Entry) Fresh(now time.Time) bool {
	return e.ExpiresAt.After(now)
}

// Cache is the process-wide response cache shared by every call through the
// fetch client. It is deliberately in-memory: catalog responses are
// ephemeral per-session data and never persisted. Instantiate one per
// process (or per test) and inject it; there is no package-level singleton.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for key. stale entries are still returned, with
// fresh=false, so the client can fall back to them when the network fails.
func (c *Cache) Get(key string, now time.Time) (entry Entry, ok, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok = c.entries[key]
	return entry, ok, ok && entry.Fresh(now)
}

func (c *Cache) Set(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheKey derives the cache key from method, URL and normalized headers.
// Header names are lowercased and sorted so equivalent requests collide.
func CacheKey(method, url string, header http.Header) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(url)

	if len(header) > 0 {
		names := make([]string, 0, len(header))
		for name := range header {
			names = append(names, strings.ToLower(name))
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteByte('\n')
			b.WriteString(name)
			b.WriteByte(':')
			b.WriteString(strings.Join(header.Values(name), ","))
		}
	}
	return b.String()
}
