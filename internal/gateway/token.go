package gateway

import (
	"context"
	"strings"
)

// TokenSource yields the bearer token for a call. An empty string means the
// call goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

type forwardedTokenKey struct{}

// WithForwardedToken stores the bearer token the browser sent so calls made
// on its behalf reuse it.
func WithForwardedToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, forwardedTokenKey{}, token)
}

// BearerFromHeader extracts the token from an Authorization header value.
func BearerFromHeader(value string) string {
	const prefix = "bearer "
	if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
		return strings.TrimSpace(value[len(prefix):])
	}
	return ""
}

type ForwardedToken struct{}

func (ForwardedToken) Token(ctx context.Context) (string, error) {
	token, _ := ctx.Value(forwardedTokenKey{}).(string)
	return token, nil
}

// ChainToken returns the first non-empty token.
type ChainToken []TokenSource

func (c ChainToken) Token(ctx context.Context) (string, error) {
	var firstErr error
	for _, src := range c {
		token, err := src.Token(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if token != "" {
			return token, nil
		}
	}
	return "", firstErr
}
