package conversation

import (
	"bytes"

	json "github.com/goccy/go-json"
)

type variant int

const (
	variantNone variant = iota
	variantContents
	variantArray
	variantMessages
)

func (v variant) String() string {
	switch v {
	case variantContents:
		return "contents"
	case variantArray:
		return "array"
	case variantMessages:
		return "messages"
	default:
		return "none"
	}
}

// detect resolves which of the known payload shapes data has. Precedence:
// a contents array, then data itself being an array, then a messages array.
func detect(data json.RawMessage) (variant, []json.RawMessage) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return variantNone, nil
	}

	if trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return variantNone, nil
		}
		if records, ok := asArray(obj["contents"]); ok {
			return variantContents, records
		}
		if records, ok := asArray(obj["messages"]); ok {
			return variantMessages, records
		}
		return variantNone, nil
	}

	if records, ok := asArray(trimmed); ok {
		return variantArray, records
	}
	return variantNone, nil
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	return records, true
}
