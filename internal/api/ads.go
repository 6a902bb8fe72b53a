package api

import (
	"context"
	"net/http"

	"allowance-client/internal/cache"
	"allowance-client/internal/domain"
)

type AdsClient struct {
	t     *Transport
	cache *cache.Cache
}

func NewAdsClient(t *Transport, c *cache.Cache) *AdsClient {
	return &AdsClient{t: t, cache: c}
}

func (c *AdsClient) List(ctx context.Context) ([]domain.Advertisement, error) {
	return cache.Query(ctx, c.cache, AdsKey(), []cache.Tag{TagAds}, func(ctx context.Context) ([]domain.Advertisement, error) {
		var out []domain.Advertisement
		err := c.t.do(ctx, request{
			op:     "ads.list",
			method: http.MethodGet,
			path:   "advertisements/",
		}, &out)
		return out, err
	})
}

func AdsKey() cache.Key {
	return cache.NewKey("advertisements")
}
