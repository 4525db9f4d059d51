package services

import (
	"context"
	"log"
	"sync"

	"emarket/entities"
)

// AllProductsCache lazily memoizes the entire catalog so search and filters
// can see items that have not been paged in yet. A failed fetch leaves the
// cache cold; callers fall back to the paged list and the next EnsureCached
// retries.
type AllProductsCache struct {
	client CatalogClient

	mu         sync.Mutex
	generation uint64
	cached     bool
	loading    bool
	products   []entities.Product
	waiters    []func(products []entities.Product, ok bool)
}

func NewAllProductsCache(client CatalogClient) *AllProductsCache {
	return &AllProductsCache{client: client}
}

// EnsureCached invokes completion with the full catalog once it is available.
// Idempotent: a cached catalog is handed back immediately without re-fetching,
// concurrent callers share one in-flight fetch.
func (c *AllProductsCache) EnsureCached(completion func(products []entities.Product, ok bool)) {
	c.mu.Lock()
	if c.cached {
		products := copyProducts(c.products)
		c.mu.Unlock()
		completion(products, true)
		return
	}
	c.waiters = append(c.waiters, completion)
	if c.loading {
		c.mu.Unlock()
		return
	}
	c.loading = true
	gen := c.generation
	c.mu.Unlock()

	go func() {
		products, err := c.client.FetchAll(context.Background())
		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			return
		}
		c.loading = false
		ok := err == nil
		if ok {
			c.cached = true
			c.products = products
		} else {
			log.Printf("EnsureCached: %v", err)
		}
		waiters := c.waiters
		c.waiters = nil
		c.mu.Unlock()
		for _, waiter := range waiters {
			waiter(copyProducts(products), ok)
		}
	}()
}

// Snapshot returns a copy of the cached catalog and whether caching has
// completed.
func (c *AllProductsCache) Snapshot() (products []entities.Product, isCached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyProducts(c.products), c.cached
}

// Invalidate clears the cache and discards any in-flight fetch result.
func (c *AllProductsCache) Invalidate() {
	c.mu.Lock()
	c.generation++
	c.cached = false
	c.loading = false
	c.products = nil
	c.waiters = nil
	c.mu.Unlock()
}

func copyProducts(products []entities.Product) []entities.Product {
	if products == nil {
		return nil
	}
	cp := make([]entities.Product, len(products))
	copy(cp, products)
	return cp
}
