package gateway

import (
	"bytes"
	"context"
	"dashgate/internal/providers"
	"dashgate/internal/structures"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Client sends authenticated JSON calls to the metrics backend. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, tokens TokenSource, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	// a zero timeout leaves the transport's own behaviour in place
	return &Client{
		baseURL:    strings.TrimRight(conf.Gateway.BaseURL, "/"),
		httpClient: &http.Client{Timeout: max(conf.Gateway.Timeout, 0)},
		tokens:     tokens,
		logger:     logger,
		metrics:    metrics,
	}
}

// NewTokenSource prefers the token forwarded by the browser and falls back
// to the configured service token.
func NewTokenSource(conf *structures.Config) TokenSource {
	return ChainToken{ForwardedToken{}, StaticToken(conf.Gateway.Token)}
}

// Post is Call with method POST and no extra headers.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.Call(ctx, endpoint, http.MethodPost, body, nil)
}

// Call performs one request. A nil body sends no body at all. Responses
// outside 2xx fail with *RequestFailedError and unparsable 2xx bodies fail
// with *MalformedResponseError.
func (c *Client) Call(ctx context.Context, endpoint, method string, body any, headers http.Header) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for name, values := range headers {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warnf(providers.TypeGateway, "token lookup failed, calling %s unauthenticated: %s", endpoint, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveUpstreamDuration(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncUpstreamTotal(endpoint, 0)
		c.logger.Errorf(providers.TypeGateway, "%s %s: %s", method, endpoint, err)
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.IncUpstreamTotal(endpoint, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warnf(providers.TypeGateway, "%s %s returned %d", method, endpoint, resp.StatusCode)
		return nil, &RequestFailedError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(raw)}
	}

	if !json.Valid(raw) {
		c.logger.Warnf(providers.TypeGateway, "%s %s returned a body that is not JSON", method, endpoint)
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: fmt.Errorf("invalid JSON (%d bytes)", len(raw))}
	}

	c.logger.Debugf(providers.TypeGateway, "%s %s %d in %s", method, endpoint, resp.StatusCode, time.Since(start))
	return raw, nil
}
