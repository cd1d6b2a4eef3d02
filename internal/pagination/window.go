package pagination

const DefaultWindowSize = 5

// Window returns the page numbers to show as buttons: at most size
// consecutive pages centred on current and clamped to [1, totalPages].
// When totalPages >= size the run is always exactly size long. With no
// pages at all it returns [1].
func Window(current, totalPages, size int) []int {
	if size < 1 {
		size = DefaultWindowSize
	}
	if totalPages < 1 {
		return []int{1}
	}

	count := min(size, totalPages)
	start := current - size/2
	start = max(1, min(start, totalPages-count+1))

	out := make([]int, count)
	for i := range out {
		out[i] = start + i
	}
	return out
}
