package service

import (
	"sync"

	"levsim/internal/domain"
)

// ResultCache memoizes completed simulation results by key hash. Entries live
// until the caller explicitly evicts them; there is no automatic expiry.
type ResultCache interface {
	Get(hash string) (*domain.SimulationResult, bool)
	Set(hash string, result *domain.SimulationResult)
	Has(hash string) bool
	Delete(hash string)
}

type memoryResultCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.SimulationResult
}

func NewMemoryResultCache() ResultCache {
	return &memoryResultCache{
		entries: map[string]*domain.SimulationResult{},
	}
}

func (c *memoryResultCache) Get(hash string) (*domain.SimulationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[hash]
	return result, ok
}

func (c *memoryResultCache) Set(hash string, result *domain.SimulationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = result
}

func (c *memoryResultCache) Has(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[hash]
	return ok
}

func (c *memoryResultCache) Delete(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, hash)
}
