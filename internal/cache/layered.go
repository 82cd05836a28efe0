package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Layered keeps recent lookups in process memory in front of the disk store.
// Disk hits are promoted to memory for at most the memory TTL.
type Layered struct {
	memory    *gocache.Cache
	memoryTTL time.Duration
	disk      *DiskCache
}

// NewLayered creates a layered cache. A non-positive memoryTTL keeps memory
// entries until the process exits.
func NewLayered(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *Layered {
	if memoryTTL <= 0 {
		memoryTTL = gocache.NoExpiration
	}
	cleanup := 10 * time.Minute
	if memoryTTL > 0 && memoryTTL < cleanup {
		cleanup = memoryTTL
	}
	return &Layered{
		memory:    gocache.New(memoryTTL, cleanup),
		memoryTTL: memoryTTL,
		disk:      NewDiskCache(diskDir, diskTTL),
	}
}

func (c *Layered) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		data, ok := val.([]byte)
		return data, ok
	}

	data, found := c.disk.Get(key)
	if !found {
		return nil, false
	}
	c.memory.Set(key, data, gocache.DefaultExpiration)
	return data, true
}

// Set stores value in both layers. The memory copy never outlives ttl.
func (c *Layered) Set(key string, value []byte, ttl time.Duration) error {
	memTTL := time.Duration(gocache.DefaultExpiration)
	if ttl > 0 && (c.memoryTTL <= 0 || ttl < c.memoryTTL) {
		memTTL = ttl
	}
	c.memory.Set(key, value, memTTL)
	return c.disk.Set(key, value, ttl)
}

func (c *Layered) Clear() error {
	c.memory.Flush()
	return c.disk.Clear()
}

// inMemory reports whether key is held by the memory layer
func (c *Layered) inMemory(key string) bool {
	_, ok := c.memory.Get(key)
	return ok
}
