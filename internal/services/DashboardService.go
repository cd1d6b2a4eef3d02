package services

import (
	"context"
	"dashgate/internal/conversation"
	"dashgate/internal/gateway"
	"dashgate/internal/models"
	"dashgate/internal/pagination"
	"dashgate/internal/providers"
	"dashgate/internal/session"
	"dashgate/internal/structures"
	"errors"
	"time"

	json "github.com/goccy/go-json"
)

const (
	EndpointSummary   = "/rate/all_num"
	EndpointTokenCost = "/token/cost"
	EndpointDetail    = "/detail"
)

type DashboardServiceInterface interface {
	Summary(ctx context.Context, tab *session.Tab, params models.QueryParams) (json.RawMessage, error)
	TokenCost(ctx context.Context, tab *session.Tab, params models.QueryParams) (json.RawMessage, error)
	Questions(ctx context.Context, tab *session.Tab, page int, params models.QueryParams) pagination.View
	Conversation(ctx context.Context, tab *session.Tab, id string) ([]models.ChatMessage, error)
	SaveFilter(tab *session.Tab, params models.QueryParams)
	LoadFilter(tab *session.Tab) (models.QueryParams, bool)
}

type DashboardService struct {
	client     Poster
	normalizer *conversation.Normalizer
	logger     providers.Logger
	cacheOn    bool
	cacheTTL   time.Duration
}

func NewDashboardService(conf *structures.Config, client *gateway.Client, normalizer *conversation.Normalizer, logger providers.Logger) DashboardServiceInterface {
	return newDashboardService(conf, client, normalizer, logger)
}

func newDashboardService(conf *structures.Config, client Poster, normalizer *conversation.Normalizer, logger providers.Logger) *DashboardService {
	return &DashboardService{
		client:     client,
		normalizer: normalizer,
		logger:     logger,
		cacheOn:    conf.Cache.Enabled,
		cacheTTL:   conf.Cache.TTL,
	}
}

func (ds *DashboardService) Summary(ctx context.Context, tab *session.Tab, params models.QueryParams) (json.RawMessage, error) {
	return ds.cachedCall(ctx, tab, EndpointSummary, ds.effectiveParams(tab, params))
}

func (ds *DashboardService) TokenCost(ctx context.Context, tab *session.Tab, params models.QueryParams) (json.RawMessage, error) {
	return ds.cachedCall(ctx, tab, EndpointTokenCost, ds.effectiveParams(tab, params))
}

// Questions returns the view for page of the question list filtered by
// params, or by the tab's saved filter when params is empty.
func (ds *DashboardService) Questions(ctx context.Context, tab *session.Tab, page int, params models.QueryParams) pagination.View {
	return tab.Pages.RequestPage(ctx, page, ds.effectiveParams(tab, params))
}

func (ds *DashboardService) Conversation(ctx context.Context, tab *session.Tab, id string) ([]models.ChatMessage, error) {
	raw, err := ds.client.Post(ctx, EndpointDetail, map[string]any{"conversation_id": id})
	if err != nil {
		return nil, err
	}
	env, err := gateway.DecodeEnvelope(raw)
	var shapeErr *gateway.ShapeMismatchError
	if errors.As(err, &shapeErr) && shapeErr.Field == "data" {
		// no transcript body is an empty conversation
		ds.logger.Debugf(providers.TypeApp, "conversation %s has no data", id)
		return ds.normalizer.Normalize(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return ds.normalizer.Normalize(env.Data), nil
}

func (ds *DashboardService) SaveFilter(tab *session.Tab, params models.QueryParams) {
	tab.Filters.Save(params)
}

func (ds *DashboardService) LoadFilter(tab *session.Tab) (models.QueryParams, bool) {
	return tab.Filters.Load()
}

// effectiveParams remembers explicit params as the tab's filter and falls
// back to the saved filter when none are given.
func (ds *DashboardService) effectiveParams(tab *session.Tab, params models.QueryParams) models.QueryParams {
	if len(params) > 0 {
		tab.Filters.Save(params)
		return params
	}
	if saved, ok := tab.Filters.Load(); ok {
		return saved
	}
	return models.QueryParams{}
}

// cachedCall serves endpoint from the tab's cache when an entry for the same
// params is fresh. Only responses with a success code are cached.
func (ds *DashboardService) cachedCall(ctx context.Context, tab *session.Tab, endpoint string, params models.QueryParams) (json.RawMessage, error) {
	if ds.cacheOn {
		if raw, ok := tab.Cache.ReadCached(endpoint, params, ds.cacheTTL); ok {
			if env, err := gateway.DecodeEnvelope(raw); err == nil {
				return env.Data, nil
			}
		}
	}

	raw, err := ds.client.Post(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	env, err := gateway.DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	if ds.cacheOn {
		tab.Cache.WriteCached(endpoint, params, raw)
	}
	return env.Data, nil
}
