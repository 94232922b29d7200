package synth

import (
	"fmt"
	"sync"

	"custlens/domain/customer"
	"custlens/internal"

	"golang.org/x/sync/singleflight"
)

// cacheKey identifies a dataset by its generation parameters. Unseeded
// requests share one entry per row count.
type cacheKey struct {
	numRows int
	seed    int64
}

func (k cacheKey) String() string { return fmt.Sprintf("%d/%d", k.numRows, k.seed) }

// Cache memoizes synthesized datasets. Datasets are immutable, so a cached
// pointer is shared freely between concurrent readers.
type Cache struct {
	mu       sync.RWMutex
	datasets map[cacheKey]*customer.Dataset
	group    singleflight.Group
	logger   *internal.Logger

	// generate is swapped in tests to count syntheses.
	generate func(GeneratorConfig) (*customer.Dataset, error)
}

// NewCache creates an empty dataset cache.
func NewCache(logger *internal.Logger) *Cache {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Cache{
		datasets: make(map[cacheKey]*customer.Dataset),
		logger:   logger.With("Synth"),
		generate: Synthesize,
	}
}

// Get returns the cached dataset for config, synthesizing it on first use.
// Concurrent misses for the same key share one synthesis.
func (c *Cache) Get(config GeneratorConfig) (*customer.Dataset, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	key := cacheKey{numRows: config.NumRows, seed: config.Seed}

	c.mu.RLock()
	ds, ok := c.datasets[key]
	c.mu.RUnlock()
	if ok {
		c.logger.Trace("cache hit for %s", key)
		return ds, nil
	}

	v, err, shared := c.group.Do(key.String(), func() (interface{}, error) {
		c.mu.RLock()
		if ds, ok := c.datasets[key]; ok {
			c.mu.RUnlock()
			return ds, nil
		}
		c.mu.RUnlock()

		ds, err := c.generate(config)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.datasets[key] = ds
		c.mu.Unlock()
		c.logger.Info("synthesized %d rows (seed %d)", ds.Len(), ds.Params().Seed)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("shared in-flight synthesis for %s", key)
	}
	return v.(*customer.Dataset), nil
}

// Put registers an externally produced dataset (e.g. a file import) under config.
func (c *Cache) Put(config GeneratorConfig, ds *customer.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets[cacheKey{numRows: config.NumRows, seed: config.Seed}] = ds
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.datasets)
}

// Invalidate drops every cached dataset.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets = make(map[cacheKey]*customer.Dataset)
	c.logger.Info("dataset cache cleared")
}

// Source returns a dataset source bound to config.
func (c *Cache) Source(config GeneratorConfig) *CachedSource {
	return &CachedSource{cache: c, config: config}
}

// CachedSource serves one generation config from a Cache.
type CachedSource struct {
	cache  *Cache
	config GeneratorConfig
}

// Dataset implements ports.DatasetSource.
func (s *CachedSource) Dataset() (*customer.Dataset, error) {
	return s.cache.Get(s.config)
}
