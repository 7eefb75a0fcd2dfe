package animation

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Library resolves configured animation names to their documents. Fetch
// results, misses included, are cached for ttl. Concurrent lookups of an
// uncached animation share one download.
type Library struct {
	fetcher *Fetcher
	urls    map[string]string
	cache   *expirable.LRU[string, json.RawMessage]
	group   singleflight.Group
}

// Get returns the animation document for name, or nil when the name is not
// configured or the download failed.
func (l *Library) Get(ctx context.Context, name string) json.RawMessage {
	url, ok := l.urls[name]
	if !ok {
		return nil
	}
	if doc, ok := l.cache.Get(name); ok {
		return doc
	}
	// The download outlives a cancelled caller, other callers may share it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := l.group.Do(name, func() (any, error) {
		if doc, ok := l.cache.Get(name); ok {
			return doc, nil
		}
		doc := l.fetcher.Fetch(shared, url)
		l.cache.Add(name, doc)
		return doc, nil
	})
	return v.(json.RawMessage)
}

// Warm downloads every uncached animation. Call it in a goroutine at startup
// so the first page render does not wait for downloads.
func (l *Library) Warm(ctx context.Context) {
	var wg sync.WaitGroup
	for _, name := range l.Names() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Get(ctx, name)
		}()
	}
	wg.Wait()
	slog.Debug("Animations warmed", "available", len(l.All(ctx)), "configured", len(l.urls))
}

// All returns every available animation keyed by name. Failed downloads are
// omitted.
func (l *Library) All(ctx context.Context) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(l.urls))
	for _, name := range l.Names() {
		if doc := l.Get(ctx, name); doc != nil {
			out[name] = doc
		}
	}
	return out
}

// Names returns the configured animation names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.urls))
	for name := range l.urls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewLibrary creates a library for the name → URL mapping.
func NewLibrary(fetcher *Fetcher, urls map[string]string, ttl time.Duration) *Library {
	copied := make(map[string]string, len(urls))
	for name, url := range urls {
		copied[name] = url
	}
	size := len(copied)
	if size == 0 {
		size = 1
	}
	return &Library{
		fetcher: fetcher,
		urls:    copied,
		cache:   expirable.NewLRU[string, json.RawMessage](size, nil, ttl),
	}
}
