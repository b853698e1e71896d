package request

type CreateTransactionRequest struct {
	FromCurrency string   `json:"from_currency"`
	ToCurrency   string   `json:"to_currency"`
	ToAddress    string   `json:"to_address"`
	Amount       *float64 `json:"amount,omitempty"`
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	Channel      string   `json:"channel"`
	CallbackURL  string   `json:"callback_url"`
	ReturnURL    string   `json:"return_url"`
}
