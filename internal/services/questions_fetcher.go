package services

import (
	"bytes"
	"context"
	"dashgate/internal/gateway"
	"dashgate/internal/models"
	"dashgate/internal/pagination"
	"dashgate/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const EndpointQuestions = "/rate/questions"

// Poster is the slice of the gateway client the services need.
type Poster interface {
	Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error)
}

// QuestionsFetcher loads one page of the question list for the pagination
// controller.
type QuestionsFetcher struct {
	client     Poster
	listField  string
	totalField string
}

func NewQuestionsFetcher(conf *structures.Config, client *gateway.Client) pagination.Fetcher {
	return newQuestionsFetcher(conf, client)
}

func newQuestionsFetcher(conf *structures.Config, client Poster) *QuestionsFetcher {
	f := &QuestionsFetcher{
		client:     client,
		listField:  conf.Pagination.ListField,
		totalField: conf.Pagination.TotalField,
	}
	if f.listField == "" {
		f.listField = "list"
	}
	if f.totalField == "" {
		f.totalField = "total"
	}
	return f
}

func (f *QuestionsFetcher) FetchPage(ctx context.Context, params models.QueryParams) (pagination.Result, error) {
	raw, err := f.client.Post(ctx, EndpointQuestions, params)
	if err != nil {
		return pagination.Result{}, err
	}
	env, err := gateway.DecodeEnvelope(raw)
	if err != nil {
		return pagination.Result{}, err
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &data); err != nil || data == nil {
		return pagination.Result{}, &gateway.ShapeMismatchError{Field: "data"}
	}

	list := bytes.TrimSpace(data[f.listField])
	if len(list) == 0 || list[0] != '[' {
		return pagination.Result{}, &gateway.ShapeMismatchError{Field: f.listField}
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(list, &rows); err != nil {
		return pagination.Result{}, &gateway.ShapeMismatchError{Field: f.listField}
	}

	res := pagination.Result{Rows: rows}
	if totalRaw, ok := data[f.totalField]; ok {
		var v any
		if json.Unmarshal(totalRaw, &v) == nil && v != nil {
			if total, err := cast.ToIntE(v); err == nil {
				res.Total = total
				res.HasTotal = true
			}
		}
	}
	return res, nil
}
