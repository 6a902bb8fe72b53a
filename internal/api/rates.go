package api

import (
	"context"
	"net/http"

	"allowance-client/internal/cache"
	"allowance-client/internal/domain"
)

type RatesClient struct {
	t     *Transport
	cache *cache.Cache
}

func NewRatesClient(t *Transport, c *cache.Cache) *RatesClient {
	return &RatesClient{t: t, cache: c}
}

// List adjunta el bearer si hay sesion.
func (c *RatesClient) List(ctx context.Context) ([]domain.Rate, error) {
	return cache.Query(ctx, c.cache, RatesKey(), []cache.Tag{TagRates}, func(ctx context.Context) ([]domain.Rate, error) {
		var out []domain.Rate
		err := c.t.do(ctx, request{
			op:     "rates.list",
			method: http.MethodGet,
			path:   "exchange-rates/",
			auth:   true,
		}, &out)
		return out, err
	})
}

func RatesKey() cache.Key {
	return cache.NewKey("exchange-rates")
}
