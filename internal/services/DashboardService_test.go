package services

import (
	"context"
	"dashgate/internal/conversation"
	"dashgate/internal/gateway"
	"dashgate/internal/models"
	"dashgate/internal/pagination"
	"dashgate/internal/session"
	"dashgate/internal/structures"
	"dashgate/internal/testutil"
	"errors"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postCall struct {
	endpoint string
	body     any
}

type fakePoster struct {
	mu      sync.Mutex
	calls   []postCall
	replies map[string]string
	errs    map[string]error
}

func newFakePoster() *fakePoster {
	return &fakePoster{replies: map[string]string{}, errs: map[string]error{}}
}

func (p *fakePoster) Post(_ context.Context, endpoint string, body any) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, postCall{endpoint: endpoint, body: body})
	if err := p.errs[endpoint]; err != nil {
		return nil, err
	}
	return json.RawMessage(p.replies[endpoint]), nil
}

func (p *fakePoster) count(endpoint string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.endpoint == endpoint {
			n++
		}
	}
	return n
}

func testConfig() *structures.Config {
	return &structures.Config{
		Cache:      structures.CacheConfig{Enabled: true, TTL: 5 * time.Minute},
		Pagination: structures.PaginationConfig{PageSize: 10, WindowSize: 5, ListField: "list", TotalField: "total"},
		Conversation: structures.ConversationConfig{
			SellerIndicators: []string{"旗舰店"},
		},
	}
}

func newTestService(t *testing.T) (*DashboardService, *session.Tab, *fakePoster) {
	t.Helper()
	conf := testConfig()
	poster := newFakePoster()
	logger := &testutil.MockLogger{}
	registry := session.NewRegistry(conf, testutil.NewMockCache(), newQuestionsFetcher(conf, poster), logger, testutil.NewMockMetrics())
	svc := newDashboardService(conf, poster, conversation.NewNormalizer(conf, logger), logger)
	return svc, registry.Get("tab-1"), poster
}

func TestSummary_CachedForSameParams(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointSummary] = `{"code":0,"data":{"all_num":42}}`

	first, err := svc.Summary(context.Background(), tab, models.QueryParams{"interval": 7})
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), tab, models.QueryParams{"interval": 7})
	require.NoError(t, err)

	assert.JSONEq(t, `{"all_num":42}`, string(first))
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, poster.count(EndpointSummary))

	_, err = svc.Summary(context.Background(), tab, models.QueryParams{"interval": 30})
	require.NoError(t, err)
	assert.Equal(t, 2, poster.count(EndpointSummary))
}

func TestSummary_ApplicationErrorNotCached(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointSummary] = `{"code":500,"message":"db timeout"}`

	_, err := svc.Summary(context.Background(), tab, models.QueryParams{"interval": 7})
	var appErr *gateway.ApplicationError
	require.True(t, errors.As(err, &appErr))

	poster.replies[EndpointSummary] = `{"code":0,"data":{"all_num":1}}`
	data, err := svc.Summary(context.Background(), tab, models.QueryParams{"interval": 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"all_num":1}`, string(data))
	assert.Equal(t, 2, poster.count(EndpointSummary))
}

func TestSummary_GatewayErrorPropagates(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.errs[EndpointSummary] = &gateway.RequestFailedError{Status: 502, Body: "bad gateway"}

	_, err := svc.Summary(context.Background(), tab, nil)
	var reqErr *gateway.RequestFailedError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 502, reqErr.Status)
}

func TestTokenCost_UsesSavedFilterAcrossPages(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointSummary] = `{"code":0,"data":{}}`
	poster.replies[EndpointTokenCost] = `{"code":0,"data":{"cost":1.5}}`

	_, err := svc.Summary(context.Background(), tab, models.QueryParams{"interval": 30})
	require.NoError(t, err)
	data, err := svc.TokenCost(context.Background(), tab, nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"cost":1.5}`, string(data))
	last := poster.calls[len(poster.calls)-1]
	assert.Equal(t, EndpointTokenCost, last.endpoint)
	assert.Equal(t, models.QueryParams{"interval": float64(30)}, last.body)
}

func TestNoParamsNoFilterSendsEmptyObject(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointTokenCost] = `{"code":0,"data":{}}`

	_, err := svc.TokenCost(context.Background(), tab, nil)
	require.NoError(t, err)
	assert.Equal(t, models.QueryParams{}, poster.calls[0].body)
}

func TestCacheDisabledAlwaysCalls(t *testing.T) {
	conf := testConfig()
	conf.Cache.Enabled = false
	poster := newFakePoster()
	poster.replies[EndpointSummary] = `{"code":0,"data":{}}`
	logger := &testutil.MockLogger{}
	registry := session.NewRegistry(conf, testutil.NewMockCache(), newQuestionsFetcher(conf, poster), logger, testutil.NewMockMetrics())
	svc := newDashboardService(conf, poster, conversation.NewNormalizer(conf, logger), logger)
	tab := registry.Get("t")

	_, _ = svc.Summary(context.Background(), tab, models.QueryParams{"interval": 7})
	_, _ = svc.Summary(context.Background(), tab, models.QueryParams{"interval": 7})
	assert.Equal(t, 2, poster.count(EndpointSummary))
}

func TestQuestions_PagesThroughList(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointQuestions] = `{"code":0,"data":{"list":[{"q":"发货时间"},{"q":"退货"}],"total":"23"}}`

	v := svc.Questions(context.Background(), tab, 2, models.QueryParams{"interval": 7})

	assert.Equal(t, pagination.StatusOK, v.Status)
	assert.Len(t, v.Rows, 2)
	assert.Equal(t, 23, v.TotalCount)
	assert.Equal(t, 3, v.TotalPages)
	assert.Equal(t, "2 of 3", v.Indicator)
	assert.Equal(t, models.QueryParams{"interval": 7, "offset": 10, "limit": 10}, poster.calls[0].body)
}

func TestQuestions_SavedFilterDoesNotRefetchSamePage(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointQuestions] = `{"code":0,"data":{"list":[{"q":"发货时间"}],"total":1}}`

	first := svc.Questions(context.Background(), tab, 1, models.QueryParams{"interval": 7})
	second := svc.Questions(context.Background(), tab, 1, nil)

	assert.Equal(t, 1, poster.count(EndpointQuestions))
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, pagination.StatusOK, second.Status)
}

func TestQuestions_MissingListIsError(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointQuestions] = `{"code":0,"data":{"rows":[]}}`

	v := svc.Questions(context.Background(), tab, 1, nil)

	assert.Equal(t, pagination.StatusError, v.Status)
	assert.Equal(t, "backend returned data in an unexpected format", v.Error)
}

func TestQuestions_RequestFailedIsError(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.errs[EndpointQuestions] = &gateway.RequestFailedError{Status: 500}

	v := svc.Questions(context.Background(), tab, 1, nil)

	assert.Equal(t, pagination.StatusError, v.Status)
	assert.Equal(t, "request failed (500)", v.Error)
}

func TestQuestionsFetcher_TotalFallback(t *testing.T) {
	conf := testConfig()
	poster := newFakePoster()
	poster.replies[EndpointQuestions] = `{"code":0,"data":{"list":[{},{}],"total":null}}`

	res, err := newQuestionsFetcher(conf, poster).FetchPage(context.Background(), models.QueryParams{})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.False(t, res.HasTotal)
}

func TestQuestionsFetcher_CustomFields(t *testing.T) {
	conf := testConfig()
	conf.Pagination.ListField = "questions"
	conf.Pagination.TotalField = "count"
	poster := newFakePoster()
	poster.replies[EndpointQuestions] = `{"code":0,"data":{"questions":[{}],"count":31}}`

	res, err := newQuestionsFetcher(conf, poster).FetchPage(context.Background(), models.QueryParams{})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, 31, res.Total)
	assert.True(t, res.HasTotal)
}

func TestConversation_Normalized(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointDetail] = `{"code":0,"data":{"contents":[
		{"msg":"在吗","userNickFrom":"tb_buyer","gmtCreated":"2024-05-01 10:00:00"},
		{"msg":"您好","userNickFrom":"某某旗舰店"}
	]}}`

	msgs, err := svc.Conversation(context.Background(), tab, "c-1")
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleBuyer, msgs[0].Role)
	assert.Equal(t, models.RoleSeller, msgs[1].Role)
	assert.Nil(t, msgs[1].Timestamp)
	assert.Equal(t, map[string]any{"conversation_id": "c-1"}, poster.calls[0].body)
}

func TestConversation_NullDataIsEmptyTranscript(t *testing.T) {
	for _, reply := range []string{`{"code":0,"data":null}`, `{"code":0}`} {
		svc, tab, poster := newTestService(t)
		poster.replies[EndpointDetail] = reply

		msgs, err := svc.Conversation(context.Background(), tab, "c-2")
		require.NoError(t, err, reply)
		assert.NotNil(t, msgs, reply)
		assert.Empty(t, msgs, reply)
	}
}

func TestConversation_ApplicationError(t *testing.T) {
	svc, tab, poster := newTestService(t)
	poster.replies[EndpointDetail] = `{"code":404,"message":"conversation not found"}`

	_, err := svc.Conversation(context.Background(), tab, "missing")
	var appErr *gateway.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "conversation not found", gateway.Describe(err))
}

func TestFilterRoundTrip(t *testing.T) {
	svc, tab, _ := newTestService(t)

	_, ok := svc.LoadFilter(tab)
	assert.False(t, ok)

	svc.SaveFilter(tab, models.QueryParams{"start_time": "2024-05-01 00:00:00", "end_time": "2024-05-07 23:59:59"})
	got, ok := svc.LoadFilter(tab)
	require.True(t, ok)
	assert.Equal(t, "2024-05-01 00:00:00", got["start_time"])
}
