package providers

import (
	"dashgate/internal/structures"
	"unsafe"

	"github.com/coocood/freecache"
)

// CacheProviderInterface is the raw byte medium behind tab storage.
// Implementations never report errors: a failing medium behaves as empty.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
	// Touch restarts the expiry of an existing key. Missing keys are ignored.
	Touch(key string)
}

type CacheProvider struct {
	cache *freecache.Cache
	ttl   int
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if conf.Storage.Size <= 0 {
		logger.Infof(TypeApp, "Tab storage disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Storage.Size * 1024 * 1024
	ttl := int(conf.Storage.TabTTL.Seconds())
	if ttl < 0 {
		ttl = 0
	}

	logger.Infof(TypeApp, "Tab storage initialized: %dMB, tab TTL=%ds", conf.Storage.Size, ttl)
	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
		ttl:   ttl,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is only read.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set drops the value silently when freecache rejects it (e.g. entry too large).
func (c *CacheProvider) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del(unsafeStringToBytes(key))
}

func (c *CacheProvider) Touch(key string) {
	_ = c.cache.Touch(unsafeStringToBytes(key), c.ttl)
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Del(_ string)                {}
func (n *noopCache) Touch(_ string)              {}
