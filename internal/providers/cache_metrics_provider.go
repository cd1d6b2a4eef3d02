package providers

import "dashgate/internal/structures"

// MetricsCacheProvider wraps a CacheProviderInterface and increments
// hit/miss counters on every Get call.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Del(key string) {
	c.inner.Del(key)
}

func (c *MetricsCacheProvider) Touch(key string) {
	c.inner.Touch(key)
}

// NewInstrumentedCacheProvider builds the tab storage medium selected by
// config, optionally compressed, wrapped with metrics instrumentation.
// A disabled medium returns the plain noopCache so no phantom misses are counted.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	var inner CacheProviderInterface
	if conf.Storage.Driver == "redis" {
		inner = NewRedisCacheProvider(conf, logger)
	} else {
		inner = NewCacheProvider(conf, logger)
	}
	if _, disabled := inner.(*noopCache); disabled {
		return inner
	}

	if conf.Storage.Compress {
		compressor, err := NewZstdCompressor()
		if err != nil {
			logger.Errorf(TypeApp, "Tab storage compression disabled: %s", err)
		} else {
			inner = NewCompressedCacheProvider(inner, compressor, logger)
		}
	}

	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
