package models

// QueryParams is the loosely typed parameter set sent to the backend:
// a time window (interval, start_time, end_time) and/or a pagination cursor.
type QueryParams map[string]any

func (p QueryParams) Clone() QueryParams {
	if p == nil {
		return nil
	}
	out := make(QueryParams, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of p with extra written over it.
func (p QueryParams) With(extra QueryParams) QueryParams {
	out := make(QueryParams, len(p)+len(extra))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
