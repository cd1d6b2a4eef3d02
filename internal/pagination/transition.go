package pagination

import (
	"dashgate/internal/models"

	json "github.com/goccy/go-json"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusOK      Status = "ok"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// Result is one fetched page. HasTotal is false when the payload carried
// no total count.
type Result struct {
	Rows     []json.RawMessage
	Total    int
	HasTotal bool
}

// Snapshot is everything the view is derived from.
type Snapshot struct {
	Page   models.PageState
	Rows   []json.RawMessage
	Status Status
	Err    error
	// Loaded is true while the rows on display came from a successful fetch.
	Loaded bool
}

func Initial(pageSize int) Snapshot {
	return Snapshot{
		Page:   models.PageState{CurrentPage: 1, PageSize: pageSize},
		Status: StatusIdle,
	}
}

// Complete applies the outcome of the fetch for page n to s. It is pure:
// s is not modified.
func Complete(s Snapshot, n int, res Result, err error) Snapshot {
	next := s
	if err != nil {
		next.Status = StatusError
		next.Err = err
		next.Loaded = false
		return next
	}

	next.Err = nil
	next.Loaded = true
	if len(res.Rows) == 0 {
		next.Rows = nil
		next.Page.TotalCount = 0
		next.Page.CurrentPage = 1
		next.Status = StatusEmpty
		return next
	}

	total := len(res.Rows)
	if res.HasTotal && res.Total >= 0 {
		total = res.Total
	}
	next.Rows = res.Rows
	next.Page.TotalCount = total
	next.Page.CurrentPage = n
	next.Status = StatusOK
	return next
}
