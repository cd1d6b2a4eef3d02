package models

import json "github.com/goccy/go-json"

// Envelope is the {code, message, data} wrapper of every backend response.
// Code 0 is application-level success.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const EnvelopeSuccess = 0
