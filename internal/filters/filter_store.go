package filters

import (
	"dashgate/internal/models"
	"dashgate/internal/providers"
	"dashgate/internal/storage"

	json "github.com/goccy/go-json"
)

const filterKey = "filter:last"

// Store remembers the last query filter a user applied so that every
// dashboard page opened in the same tab starts from it.
type Store struct {
	store  storage.Storage
	logger providers.Logger
}

func NewStore(store storage.Storage, logger providers.Logger) *Store {
	if store == nil {
		store = storage.Unavailable{}
	}
	return &Store{store: store, logger: logger}
}

// Save keeps params when it is a non-nil mapping; anything else is ignored.
func (s *Store) Save(params any) {
	var m map[string]any
	switch p := params.(type) {
	case models.QueryParams:
		m = p
	case map[string]any:
		m = p
	}
	if m == nil {
		return
	}

	raw, err := json.Marshal(m)
	if err != nil {
		s.logger.Warnf(providers.TypeCache, "filter not saved: %s", err)
		return
	}
	s.store.Set(filterKey, raw)
}

// Load returns the last saved filter. Empty storage and values that are not
// a JSON object read as absent.
func (s *Store) Load() (models.QueryParams, bool) {
	raw, ok := s.store.Get(filterKey)
	if !ok || len(raw) == 0 {
		return nil, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warnf(providers.TypeCache, "stored filter is not valid JSON: %s", err)
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return models.QueryParams(obj), true
}
