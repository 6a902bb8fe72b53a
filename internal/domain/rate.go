package domain

type Rate struct {
	ID           string `json:"id,omitempty"`
	CurrencyCode string `json:"currency_code"`
	RateToUSD    Amount `json:"rate_to_usd"`
	LastUpdated  string `json:"last_updated,omitempty"`
}
