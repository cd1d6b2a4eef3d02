package controllers

import (
	"context"
	"dashgate/internal/gateway"
	"dashgate/internal/models"
	"dashgate/internal/providers"
	"dashgate/internal/services"
	"dashgate/internal/session"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	maxTabIDLength     = 128

	TabHeader = "X-Tab-ID"
)

var errNotObject = errors.New("request body must be a JSON object")

type ApiController struct {
	logger  providers.Logger
	service services.DashboardServiceInterface
	tabs    *session.Registry
}

func NewApiController(logger providers.Logger, service services.DashboardServiceInterface, tabs *session.Registry) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		tabs:    tabs,
	}
}

type okResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, text string) {
	writeJSON(w, status, errorResponse{Status: "error", Error: text})
}

// tabID returns the caller's tab id, issuing a new one when the header is
// missing or unusable. The id is echoed back so the page can keep it.
func tabID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(TabHeader)
	if id == "" || len(id) > maxTabIDLength {
		id = uuid.NewString()
	}
	w.Header().Set(TabHeader, id)
	return id
}

// requestContext carries the browser's bearer token to the gateway.
func requestContext(r *http.Request) context.Context {
	token := gateway.BearerFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		return r.Context()
	}
	return gateway.WithForwardedToken(r.Context(), token)
}

// decodeParams reads an optional JSON object body. An empty body yields nil.
func decodeParams(w http.ResponseWriter, r *http.Request) (models.QueryParams, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch p := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return models.QueryParams(p), nil
	default:
		return nil, errNotObject
	}
}

// queryFilter turns query string values other than page into params.
// Integer-looking values are sent as numbers.
func queryFilter(r *http.Request) models.QueryParams {
	var params models.QueryParams
	for key, values := range r.URL.Query() {
		if key == "page" || len(values) == 0 {
			continue
		}
		if params == nil {
			params = models.QueryParams{}
		}
		if n, err := strconv.Atoi(values[0]); err == nil {
			params[key] = n
		} else {
			params[key] = values[0]
		}
	}
	return params
}

func (ac *ApiController) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	ac.logger.Warnf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
	writeError(w, http.StatusBadGateway, gateway.Describe(err))
}

func (ac *ApiController) Summary(w http.ResponseWriter, r *http.Request) {
	ac.cachedEndpoint(w, r, ac.service.Summary)
}

func (ac *ApiController) TokenCost(w http.ResponseWriter, r *http.Request) {
	ac.cachedEndpoint(w, r, ac.service.TokenCost)
}

type paramsCall func(ctx context.Context, tab *session.Tab, params models.QueryParams) (json.RawMessage, error)

func (ac *ApiController) cachedEndpoint(w http.ResponseWriter, r *http.Request, call paramsCall) {
	tab := ac.tabs.Get(tabID(w, r))
	params, err := decodeParams(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	data, err := call(requestContext(r), tab, params)
	if err != nil {
		ac.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok", Data: data})
}

func (ac *ApiController) Questions(w http.ResponseWriter, r *http.Request) {
	tab := ac.tabs.Get(tabID(w, r))

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page must be a number")
			return
		}
		page = n
	}

	view := ac.service.Questions(requestContext(r), tab, page, queryFilter(r))
	writeJSON(w, http.StatusOK, view)
}

func (ac *ApiController) Conversation(w http.ResponseWriter, r *http.Request) {
	tab := ac.tabs.Get(tabID(w, r))
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	messages, err := ac.service.Conversation(requestContext(r), tab, id)
	if err != nil {
		ac.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok", Data: messages})
}

func (ac *ApiController) GetFilter(w http.ResponseWriter, r *http.Request) {
	tab := ac.tabs.Get(tabID(w, r))
	filter, ok := ac.service.LoadFilter(tab)
	if !ok {
		writeJSON(w, http.StatusOK, okResponse{Status: "ok", Data: nil})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok", Data: filter})
}

func (ac *ApiController) PutFilter(w http.ResponseWriter, r *http.Request) {
	tab := ac.tabs.Get(tabID(w, r))
	params, err := decodeParams(w, r)
	if err != nil || params == nil {
		writeError(w, http.StatusBadRequest, errNotObject.Error())
		return
	}
	ac.service.SaveFilter(tab, params)
	writeJSON(w, http.StatusOK, okResponse{Status: "ok", Data: params})
}

func (ac *ApiController) CloseTab(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(TabHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, TabHeader+" header is required")
		return
	}
	ac.tabs.Close(id)
	w.WriteHeader(http.StatusNoContent)
}
