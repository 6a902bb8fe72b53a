package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"allowance-client/internal/cache"
	"allowance-client/internal/domain"
)

// ErrInvalidTransactionID se devuelve si el id no es un UUID.
const ErrInvalidTransactionID = GuardError("Invalid transaction id.")

// TransactionsClient cubre calculate/send (mutaciones) e history/detail (queries).
type TransactionsClient struct {
	t     *Transport
	cache *cache.Cache
}

func NewTransactionsClient(t *Transport, c *cache.Cache) *TransactionsClient {
	return &TransactionsClient{t: t, cache: c}
}

func (c *TransactionsClient) Calculate(ctx context.Context, in domain.TransferInput) (domain.Calculation, error) {
	var out domain.Calculation
	err := c.t.do(ctx, request{
		op:     "transactions.calculate",
		method: http.MethodPost,
		path:   "transactions/calculate/",
		body:   in,
		auth:   true,
	}, &out)
	if err != nil {
		return domain.Calculation{}, err
	}
	c.cache.Invalidate(TagTransaction)
	return out, nil
}

// Send invalida todo el grupo Transaction: el historial se vuelve a pedir entero.
func (c *TransactionsClient) Send(ctx context.Context, in domain.TransferInput) (domain.Transaction, error) {
	var out domain.Transaction
	err := c.t.do(ctx, request{
		op:     "transactions.send",
		method: http.MethodPost,
		path:   "transactions/send/",
		body:   in,
		auth:   true,
	}, &out)
	if err != nil {
		return domain.Transaction{}, err
	}
	c.cache.Invalidate(TagTransaction)
	return out, nil
}

func (c *TransactionsClient) History(ctx context.Context, page int) (domain.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	return cache.Query(ctx, c.cache, HistoryKey(page), []cache.Tag{TagTransaction}, func(ctx context.Context) (domain.HistoryPage, error) {
		var out domain.HistoryPage
		err := c.t.do(ctx, request{
			op:     "transactions.history",
			method: http.MethodGet,
			path:   "transactions/history/",
			query:  url.Values{"page": []string{strconv.Itoa(page)}},
			auth:   true,
		}, &out)
		return out, err
	})
}

func (c *TransactionsClient) Detail(ctx context.Context, id string) (domain.Transaction, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Transaction{}, ErrInvalidTransactionID
	}
	id = parsed.String()
	return cache.Query(ctx, c.cache, DetailKey(id), []cache.Tag{TagTransaction}, func(ctx context.Context) (domain.Transaction, error) {
		var out domain.Transaction
		err := c.t.do(ctx, request{
			op:     "transactions.detail",
			method: http.MethodGet,
			path:   "transactions/" + id + "/",
			auth:   true,
		}, &out)
		return out, err
	})
}

func HistoryKey(page int) cache.Key {
	return cache.NewKey("transactions/history", page)
}

func DetailKey(id string) cache.Key {
	return cache.NewKey("transactions/detail", id)
}
