package pagination

import (
	"context"
	"dashgate/internal/cache"
	"dashgate/internal/models"
	"dashgate/internal/providers"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
)

// Fetcher loads one slice of the list. params already carries offset and
// limit on top of the active filter.
type Fetcher interface {
	FetchPage(ctx context.Context, params models.QueryParams) (Result, error)
}

type View struct {
	Status       Status            `json:"status"`
	Rows         []json.RawMessage `json:"rows"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
	TotalCount   int               `json:"totalCount"`
	Buttons      []int             `json:"buttons"`
	PrevDisabled bool              `json:"prevDisabled"`
	NextDisabled bool              `json:"nextDisabled"`
	Indicator    string            `json:"indicator"`
	Error        string            `json:"error,omitempty"`
}

type Option func(*Controller)

// WithErrorText sets how fetch errors are rendered in the view.
func WithErrorText(describe func(error) string) Option {
	return func(c *Controller) { c.describe = describe }
}

func WithWindowSize(size int) Option {
	return func(c *Controller) { c.windowSize = size }
}

// Controller drives one tab's paged list. A newer RequestPage supersedes an
// older one still in flight: results are applied by request order, not by
// arrival order.
type Controller struct {
	mu         sync.Mutex
	fetcher    Fetcher
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	windowSize int
	describe   func(error) string

	snap    Snapshot
	filter  models.QueryParams
	loading bool
	seq     uint64
}

func NewController(fetcher Fetcher, pageSize int, logger providers.Logger, metrics providers.MetricsProviderInterface, opts ...Option) *Controller {
	c := &Controller{
		fetcher:    fetcher,
		logger:     logger,
		metrics:    metrics,
		windowSize: DefaultWindowSize,
		describe:   func(err error) string { return err.Error() },
		snap:       Initial(pageSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestPage loads page n with filter applied. Asking for a page below 1,
// or for the page already on display with the same filter, changes nothing.
func (c *Controller) RequestPage(ctx context.Context, n int, filter models.QueryParams) View {
	c.mu.Lock()
	if n < 1 || (!c.loading && c.snap.Loaded && n == c.snap.Page.CurrentPage && sameFilter(filter, c.filter)) {
		v := c.viewLocked()
		c.mu.Unlock()
		return v
	}

	c.seq++
	mine := c.seq
	c.loading = true
	c.snap.Status = StatusLoading
	pageSize := c.snap.Page.PageSize
	c.mu.Unlock()

	params := filter.With(models.QueryParams{
		"offset": (n - 1) * pageSize,
		"limit":  pageSize,
	})
	res, err := c.fetcher.FetchPage(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if mine != c.seq {
		c.metrics.IncSupersededPages()
		c.logger.Debugf(providers.TypeApp, "discarding page %d result, page request %d is newer", n, c.seq)
		return c.viewLocked()
	}

	if err != nil {
		c.logger.Warnf(providers.TypeApp, "page %d failed: %s", n, err)
	}
	c.loading = false
	c.snap = Complete(c.snap, n, res, err)
	if err == nil {
		c.filter = filter.Clone()
	}
	return c.viewLocked()
}

func sameFilter(a, b models.QueryParams) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ka, err := cache.Canonicalize(a)
	if err != nil {
		return false
	}
	kb, err := cache.Canonicalize(b)
	if err != nil {
		return false
	}
	return ka == kb
}

// View returns the current state without fetching.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) State() models.PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Page
}

func (c *Controller) viewLocked() View {
	s := c.snap
	totalPages := max(s.Page.TotalPages(), 1)

	v := View{
		Status:     s.Status,
		Page:       s.Page.CurrentPage,
		TotalPages: totalPages,
		TotalCount: s.Page.TotalCount,
	}
	if c.loading {
		v.Status = StatusLoading
	}

	switch v.Status {
	case StatusError:
		v.Indicator = "error"
		v.Error = c.describe(s.Err)
		v.PrevDisabled = true
		v.NextDisabled = true
		return v
	case StatusIdle:
		v.Indicator = fmt.Sprintf("%d of %d", v.Page, totalPages)
		v.PrevDisabled = true
		v.NextDisabled = true
		return v
	}

	v.Rows = s.Rows
	if v.Rows == nil {
		v.Rows = []json.RawMessage{}
	}
	v.Buttons = Window(s.Page.CurrentPage, totalPages, c.windowSize)
	v.PrevDisabled = s.Page.CurrentPage <= 1
	v.NextDisabled = s.Page.CurrentPage >= totalPages
	v.Indicator = fmt.Sprintf("%d of %d", s.Page.CurrentPage, totalPages)
	return v
}
