package session

import (
	"dashgate/internal/cache"
	"dashgate/internal/filters"
	"dashgate/internal/gateway"
	"dashgate/internal/pagination"
	"dashgate/internal/providers"
	"dashgate/internal/storage"
	"dashgate/internal/structures"
	"sync"
	"time"
)

// touchInterval bounds how often an active tab refreshes its storage expiry.
const touchInterval = time.Minute

// Tab is the state one browser tab owns. Nothing in it is shared with other
// tabs.
type Tab struct {
	ID      string
	Storage *storage.TabStorage
	Cache   *cache.ParamCache
	Filters *filters.Store
	Pages   *pagination.Controller

	lastUsed time.Time
	touched  time.Time
}

// Registry creates tabs on first use and drops them when closed or idle.
type Registry struct {
	mu   sync.Mutex
	tabs map[string]*Tab

	medium  providers.CacheProviderInterface
	fetcher pagination.Fetcher
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewRegistry(conf *structures.Config, medium providers.CacheProviderInterface, fetcher pagination.Fetcher, logger providers.Logger, metrics providers.MetricsProviderInterface) *Registry {
	r := &Registry{
		tabs:    make(map[string]*Tab),
		medium:  medium,
		fetcher: fetcher,
		conf:    conf,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	metrics.ObserveTabs(r)
	return r
}

// Get returns the tab with id, creating it when unknown.
func (r *Registry) Get(id string) *Tab {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	tab, ok := r.tabs[id]
	if !ok {
		tab = r.newTab(id)
		r.tabs[id] = tab
		tab.touched = now
		r.logger.Debugf(providers.TypeApp, "tab %s opened", id)
	} else if now.Sub(tab.touched) >= touchInterval {
		tab.Storage.Touch()
		tab.touched = now
	}
	tab.lastUsed = now
	return tab
}

func (r *Registry) newTab(id string) *Tab {
	store := storage.NewTabStorage(r.medium, id)
	opts := []pagination.Option{pagination.WithErrorText(gateway.Describe)}
	if r.conf.Pagination.WindowSize > 0 {
		opts = append(opts, pagination.WithWindowSize(r.conf.Pagination.WindowSize))
	}
	return &Tab{
		ID:      id,
		Storage: store,
		Cache:   cache.NewParamCache(store, r.logger, cache.WithClock(r.now)),
		Filters: filters.NewStore(store, r.logger),
		Pages:   pagination.NewController(r.fetcher, r.conf.Pagination.PageSize, r.logger, r.metrics, opts...),
	}
}

// Close forgets the tab and removes everything it stored. It reports
// whether the tab existed.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	tab, ok := r.tabs[id]
	delete(r.tabs, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	tab.Storage.Clear()
	r.logger.Debugf(providers.TypeApp, "tab %s closed", id)
	return true
}

// Cleanup drops tabs idle for longer than maxAge and returns how many went.
func (r *Registry) Cleanup(maxAge time.Duration) int {
	r.mu.Lock()
	now := r.now()
	var stale []*Tab
	for id, tab := range r.tabs {
		if now.Sub(tab.lastUsed) > maxAge {
			stale = append(stale, tab)
			delete(r.tabs, id)
		}
	}
	r.mu.Unlock()

	for _, tab := range stale {
		tab.Storage.Clear()
	}
	if len(stale) > 0 {
		r.logger.Infof(providers.TypeApp, "dropped %d idle tabs", len(stale))
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tabs)
}
