package api

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"

	"github.com/sevscope/sevscope/pkg/feed"
)

// DocumentCache is a thread-safe LRU cache for parsed feed documents,
// keyed by document ref.
type DocumentCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
}

type cacheEntry struct {
	doc *feed.Document
}

// NewDocumentCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 20.
func NewDocumentCache(maxSize int) *DocumentCache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &DocumentCache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
	}
}

// NewDocumentCacheFromEnv creates a cache with size from the
// DOCUMENT_CACHE_SIZE env var.
func NewDocumentCacheFromEnv() *DocumentCache {
	size := 20
	if v := os.Getenv("DOCUMENT_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewDocumentCache(size)
}

// Get retrieves a document from the cache, or nil if not found.
func (c *DocumentCache) Get(ref string) *feed.Document {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[ref]
	if !ok {
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(ref)
	return entry.doc
}

// Put adds a document to the cache, evicting the oldest if full.
func (c *DocumentCache) Put(ref string, doc *feed.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[ref]; ok {
		c.entries[ref] = &cacheEntry{doc: doc}
		c.moveToEnd(ref)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[ref] = &cacheEntry{doc: doc}
	c.order = append(c.order, ref)
}

func (c *DocumentCache) moveToEnd(ref string) {
	for i, k := range c.order {
		if k == ref {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, ref)
			return
		}
	}
}

// loadDocument loads an archived feed document by ref, checking the cache
// first, then falling back to the storage client.
func (h *Handler) loadDocument(ctx context.Context, tenantID, ref string) (*feed.Document, error) {
	if ref == "" {
		return nil, fmt.Errorf("advisory has no document ref")
	}

	if doc := h.cache.Get(ref); doc != nil {
		return doc, nil
	}

	data, err := h.ingestionSvc.Storage().GetDocument(ctx, tenantID, storageIDFromRef(ref))
	if err != nil {
		return nil, fmt.Errorf("load document blob: %w", err)
	}

	doc, err := feed.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse archived document: %w", err)
	}

	h.cache.Put(ref, doc)
	return doc, nil
}

// storageIDFromRef extracts the object ID from a document ref like
// "documents/{tenant_id}/{id}.json" → "{id}".
func storageIDFromRef(ref string) string {
	base := path.Base(ref)           // "{id}.json"
	ext := path.Ext(base)            // ".json"
	return base[:len(base)-len(ext)] // "{id}"
}
