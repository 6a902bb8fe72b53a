package fakeapi

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"allowance-client/internal/domain"
)

const historyPageSize = 10

var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateUnavailable    = errors.New("rate unavailable")
	ErrTransactionMissing = errors.New("transaction not found")
)

type account struct {
	user         domain.User
	passwordHash []byte
}

type record struct {
	tx        domain.Transaction
	userID    int64
	createdAt time.Time
}

type rateEntry struct {
	value decimal.Decimal
	rate  domain.Rate
}

// Backend guarda usuarios, tasas, anuncios y transacciones en memoria.
type Backend struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[string]*account
	rates    map[string]rateEntry
	ads      []domain.Advertisement
	records  []record
	now      func() time.Time
}

// NewBackend siembra las tasas GBP/ZAR y un par de promociones.
func NewBackend(rateGBP, rateZAR float64) *Backend {
	b := &Backend{
		accounts: make(map[string]*account),
		rates:    make(map[string]rateEntry),
		now:      time.Now,
	}
	b.SetRate("GBP", rateGBP)
	b.SetRate("ZAR", rateZAR)

	created := b.now().UTC().Format(time.RFC3339)
	b.ads = []domain.Advertisement{
		{ID: uuid.NewString(), Title: "Zero fees on your first transfer", Description: "Send up to $100 to the UK without fees this month.", LinkURL: "https://example.com/promo/first-transfer", IsActive: true, Order: 1, CreatedAt: created},
		{ID: uuid.NewString(), Title: "Refer a friend", Description: "Invite a friend and both get $5 credit.", LinkURL: "https://example.com/promo/refer", IsActive: true, Order: 2, CreatedAt: created},
		{ID: uuid.NewString(), Title: "Expired promotion", Description: "Not shown.", IsActive: false, Order: 3, CreatedAt: created},
	}
	return b
}

func (b *Backend) SetRate(code string, value float64) {
	r := rateFromFloat(value)
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.NewString()
	if prev, ok := b.rates[code]; ok {
		id = prev.rate.ID
	}
	b.rates[code] = rateEntry{
		value: r,
		rate: domain.Rate{
			ID:           id,
			CurrencyCode: code,
			RateToUSD:    fixed(r, 4),
			LastUpdated:  b.now().UTC().Format(time.RFC3339),
		},
	}
}

func (b *Backend) CreateUser(in domain.RegisterInput) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[in.Username]; ok {
		return domain.User{}, ErrUsernameTaken
	}
	b.nextID++
	user := domain.User{
		ID:        b.nextID,
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	b.accounts[in.Username] = &account{user: user, passwordHash: hash}
	return user, nil
}

func (b *Backend) Authenticate(username, password string) (domain.User, error) {
	b.mu.RLock()
	acc, ok := b.accounts[username]
	b.mu.RUnlock()
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}

// Rates lista GBP y ZAR ordenadas por codigo.
func (b *Backend) Rates() []domain.Rate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Rate, 0, len(b.rates))
	for _, e := range b.rates {
		out = append(out, e.rate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out
}

func (b *Backend) rate(code string) (decimal.Decimal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.rates[code]
	if !ok {
		return decimal.Decimal{}, ErrRateUnavailable
	}
	return e.value, nil
}

// Ads devuelve los anuncios activos por orden.
func (b *Backend) Ads() []domain.Advertisement {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Advertisement, 0, len(b.ads))
	for _, ad := range b.ads {
		if ad.IsActive {
			out = append(out, ad)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (b *Backend) Calculate(amount decimal.Decimal, currency string) (domain.Calculation, error) {
	r, err := b.rate(currency)
	if err != nil {
		return domain.Calculation{}, err
	}
	return calculate(amount, currency, r), nil
}

// Send registra la transaccion como COMPLETED.
func (b *Backend) Send(userID int64, amount decimal.Decimal, currency, recipient string) (domain.Transaction, domain.Calculation, error) {
	calc, err := b.Calculate(amount, currency)
	if err != nil {
		return domain.Transaction{}, domain.Calculation{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now().UTC()
	tx := domain.Transaction{
		ID:             uuid.NewString(),
		TransactionID:  uuid.NewString(),
		CreatedAt:      now.Format(time.RFC3339Nano),
		RecipientName:  recipient,
		AmountUSD:      calc.AmountUSD,
		TargetCurrency: currency,
		ExchangeRate:   calc.ExchangeRate,
		FeePercentage:  calc.FeePercentage,
		FeeAmount:      calc.FeeAmount,
		FinalAmount:    calc.FinalAmount,
		Status:         domain.StatusCompleted,
	}
	b.records = append(b.records, record{tx: tx, userID: userID, createdAt: now})
	return tx, calc, nil
}

// History pagina de a 10, mas recientes primero. Una pagina fuera de rango
// devuelve la ultima.
func (b *Backend) History(userID int64, page int) domain.HistoryPage {
	b.mu.RLock()
	var own []record
	for i := len(b.records) - 1; i >= 0; i-- {
		if b.records[i].userID == userID {
			own = append(own, b.records[i])
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(own, func(i, j int) bool { return own[i].createdAt.After(own[j].createdAt) })

	totalPages := (len(own) + historyPageSize - 1) / historyPageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * historyPageSize
	end := start + historyPageSize
	if end > len(own) {
		end = len(own)
	}
	txs := make([]domain.Transaction, 0, end-start)
	for _, r := range own[start:end] {
		txs = append(txs, r.tx)
	}
	return domain.HistoryPage{
		Transactions: txs,
		TotalPages:   totalPages,
		CurrentPage:  page,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1,
	}
}

func (b *Backend) Transaction(userID int64, id string) (domain.Transaction, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.records {
		if r.userID == userID && r.tx.ID == id {
			return r.tx, nil
		}
	}
	return domain.Transaction{}, ErrTransactionMissing
}
