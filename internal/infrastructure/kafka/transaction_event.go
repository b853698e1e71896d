package kafka

type TransactionEvent struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	FromCurrency  string  `json:"from_currency"`
	ToCurrency    string  `json:"to_currency"`
	Amount        float64 `json:"amount"`
}
