package cache

import (
	"bytes"
	"dashgate/internal/models"
	"dashgate/internal/providers"
	"dashgate/internal/storage"
	"time"

	json "github.com/goccy/go-json"
)

const keyPrefix = "cache:"

type entry struct {
	ParamsKey string          `json:"paramsKey"`
	Response  json.RawMessage `json:"response"`
	Timestamp int64           `json:"timestamp"`
}

// ParamCache keeps one response per endpoint per tab, valid only for the
// exact parameter set it was fetched with. Writing for an endpoint replaces
// whatever was stored for it before.
type ParamCache struct {
	store  storage.Storage
	logger providers.Logger
	now    func() time.Time
}

type Option func(*ParamCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *ParamCache) { c.now = now }
}

func NewParamCache(store storage.Storage, logger providers.Logger, opts ...Option) *ParamCache {
	if store == nil {
		store = storage.Unavailable{}
	}
	c := &ParamCache{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Canonicalize serializes params with object keys sorted at every level.
// Arrays keep their order. A nil mapping canonicalizes as "{}".
func Canonicalize(params any) (string, error) {
	if params == nil {
		return "{}", nil
	}
	if p, ok := params.(models.QueryParams); ok && p == nil {
		return "{}", nil
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return "", err
	}

	// Re-decode into generic values so struct field order and number
	// formatting cannot leak into the key.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", err
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ReadCached returns the stored response for endpoint when it was written
// for an equivalent params set no longer than ttl ago.
func (c *ParamCache) ReadCached(endpoint string, params models.QueryParams, ttl time.Duration) (json.RawMessage, bool) {
	raw, ok := c.store.Get(keyPrefix + endpoint)
	if !ok {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warnf(providers.TypeCache, "discarding unreadable cache entry for %s: %s", endpoint, err)
		return nil, false
	}

	key, err := Canonicalize(params)
	if err != nil {
		return nil, false
	}
	if e.ParamsKey != key {
		c.logger.Debugf(providers.TypeCache, "cache miss %s: params changed", endpoint)
		return nil, false
	}

	// timestamps are stored in milliseconds, so compare at that precision
	ageMs := c.now().UnixMilli() - e.Timestamp
	if ageMs > ttl.Milliseconds() {
		c.logger.Debugf(providers.TypeCache, "cache miss %s: entry is %dms old", endpoint, ageMs)
		return nil, false
	}

	c.logger.Debugf(providers.TypeCache, "cache hit %s", endpoint)
	return e.Response, true
}

// WriteCached stores response for endpoint. Callers only write responses
// the backend reported as successful.
func (c *ParamCache) WriteCached(endpoint string, params models.QueryParams, response json.RawMessage) {
	key, err := Canonicalize(params)
	if err != nil {
		c.logger.Warnf(providers.TypeCache, "not caching %s: %s", endpoint, err)
		return
	}

	raw, err := json.Marshal(entry{
		ParamsKey: key,
		Response:  response,
		Timestamp: c.now().UnixMilli(),
	})
	if err != nil {
		c.logger.Warnf(providers.TypeCache, "not caching %s: %s", endpoint, err)
		return
	}
	c.store.Set(keyPrefix+endpoint, raw)
}
