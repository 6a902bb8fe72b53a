package api

import (
	"context"
	"net/http"

	"allowance-client/internal/cache"
	"allowance-client/internal/domain"
)

// AuthClient cubre auth/register/ y auth/login/. Ambos son publicos.
type AuthClient struct {
	t     *Transport
	cache *cache.Cache
}

func NewAuthClient(t *Transport, c *cache.Cache) *AuthClient {
	return &AuthClient{t: t, cache: c}
}

// Register rechaza confirmaciones distintas sin tocar la red.
func (c *AuthClient) Register(ctx context.Context, in domain.RegisterInput) (domain.AuthResponse, error) {
	if in.Password != in.PasswordConfirm {
		return domain.AuthResponse{}, ErrPasswordMismatch
	}
	var out domain.AuthResponse
	err := c.t.do(ctx, request{
		op:     "auth.register",
		method: http.MethodPost,
		path:   "auth/register/",
		body:   in,
	}, &out)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	c.cache.Invalidate(TagAuth)
	return out, nil
}

func (c *AuthClient) Login(ctx context.Context, in domain.LoginInput) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.t.do(ctx, request{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "auth/login/",
		body:   in,
	}, &out)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	c.cache.Invalidate(TagAuth)
	return out, nil
}
