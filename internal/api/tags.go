package api

import "allowance-client/internal/cache"

const (
	TagAuth        cache.Tag = "Auth"
	TagRates       cache.Tag = "Rates"
	TagTransaction cache.Tag = "Transaction"
	TagAds         cache.Tag = "Ads"
)
