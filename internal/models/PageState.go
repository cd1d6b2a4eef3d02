package models

type PageState struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalCount  int `json:"total_count"`
}

func (s PageState) TotalPages() int {
	if s.PageSize <= 0 || s.TotalCount <= 0 {
		return 0
	}
	return (s.TotalCount + s.PageSize - 1) / s.PageSize
}

// Offset of the first row of page n.
func (s PageState) Offset(n int) int {
	return (n - 1) * s.PageSize
}
