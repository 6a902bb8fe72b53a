package domain

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// TransferInput es el cuerpo de transactions/calculate/ y transactions/send/.
type TransferInput struct {
	AmountUSD      Amount `json:"amount_usd"`
	TargetCurrency string `json:"target_currency"`
	RecipientName  string `json:"recipient_name"`
}

type Calculation struct {
	AmountUSD      Amount `json:"amount_usd"`
	TargetCurrency string `json:"target_currency"`
	ExchangeRate   Amount `json:"exchange_rate"`
	FeePercentage  Amount `json:"fee_percentage"`
	FeeAmount      Amount `json:"fee_amount"`
	AmountAfterFee Amount `json:"amount_after_fee"`
	FinalAmount    Amount `json:"final_amount"`
}

type Transaction struct {
	ID             string `json:"id,omitempty"`
	TransactionID  string `json:"transaction_id,omitempty"`
	DateField      string `json:"date,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	RecipientName  string `json:"recipient_name"`
	AmountUSD      Amount `json:"amount_usd"`
	TargetCurrency string `json:"target_currency"`
	ExchangeRate   Amount `json:"exchange_rate"`
	FeePercentage  Amount `json:"fee_percentage,omitempty"`
	FeeAmount      Amount `json:"fee_amount,omitempty"`
	FinalAmount    Amount `json:"final_amount"`
	Status         string `json:"status"`
}

// Date devuelve "date" y si falta "created_at".
func (t Transaction) Date() string {
	if t.DateField != "" {
		return t.DateField
	}
	return t.CreatedAt
}

// Ref identifica la transaccion; send/ solo devuelve transaction_id.
func (t Transaction) Ref() string {
	if t.ID != "" {
		return t.ID
	}
	return t.TransactionID
}

type HistoryPage struct {
	Transactions []Transaction `json:"transactions"`
	TotalPages   int           `json:"total_pages"`
	CurrentPage  int           `json:"current_page"`
	HasNext      bool          `json:"has_next"`
	HasPrevious  bool          `json:"has_previous"`
}
