// AngelaMos | 2026
// cache.go

package auth

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type IdentityCache interface {
	Get(id string) (*Identity, bool)
	Add(id string, identity *Identity)
	Remove(id string)
}

// LRUIdentityCache bounds both entry count and entry age.
type LRUIdentityCache struct {
	lru *expirable.LRU[string, *Identity]
}

func NewLRUIdentityCache(size int, ttl time.Duration) *LRUIdentityCache {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LRUIdentityCache{
		lru: expirable.NewLRU[string, *Identity](size, nil, ttl),
	}
}

func (c *LRUIdentityCache) Get(id string) (*Identity, bool) {
	return c.lru.Get(id)
}

func (c *LRUIdentityCache) Add(id string, identity *Identity) {
	c.lru.Add(id, identity)
}

func (c *LRUIdentityCache) Remove(id string) {
	c.lru.Remove(id)
}

func (c *LRUIdentityCache) Len() int {
	return c.lru.Len()
}

type NoopIdentityCache struct{}

func (NoopIdentityCache) Get(string) (*Identity, bool) { return nil, false }
func (NoopIdentityCache) Add(string, *Identity)        {}
func (NoopIdentityCache) Remove(string)                {}
