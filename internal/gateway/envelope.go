package gateway

import (
	"bytes"
	"dashgate/internal/models"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// DecodeEnvelope unwraps {code, message, data}. The code may arrive as a
// number or a numeric string.
func DecodeEnvelope(raw json.RawMessage) (*models.Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, &ShapeMismatchError{Field: "envelope"}
	}

	codeRaw, ok := fields["code"]
	if !ok {
		return nil, &ShapeMismatchError{Field: "code"}
	}
	var code any
	if err := json.Unmarshal(codeRaw, &code); err != nil {
		return nil, &ShapeMismatchError{Field: "code"}
	}
	codeInt, err := cast.ToIntE(code)
	if err != nil {
		return nil, &ShapeMismatchError{Field: "code"}
	}

	env := &models.Envelope{Code: codeInt}
	if msg, ok := fields["message"]; ok {
		var m any
		if json.Unmarshal(msg, &m) == nil && m != nil {
			env.Message = cast.ToString(m)
		}
	}

	if env.Code != models.EnvelopeSuccess {
		return env, &ApplicationError{Code: env.Code, Message: env.Message}
	}

	data, ok := fields["data"]
	if !ok || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return env, &ShapeMismatchError{Field: "data"}
	}
	env.Data = data
	return env, nil
}
