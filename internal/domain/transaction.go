package domain

import "time"

type TransactionStatus string

const (
	StatusNew            TransactionStatus = "new"
	StatusCreateInvoice  TransactionStatus = "create_invoice"
	StatusWaitInvoice    TransactionStatus = "wait_invoice"
	StatusCreateWithdraw TransactionStatus = "create_withdraw"
	StatusWaitWithdraw   TransactionStatus = "wait_withdraw"
	StatusDone           TransactionStatus = "done"
	StatusError          TransactionStatus = "error"
)

// Terminal reports whether no further processing is allowed for the status.
func (s TransactionStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Transaction is a single exchange: collect fromCurrency through a gateway
// invoice, then send toCurrency to the destination address.
type Transaction struct {
	ID             string
	FromCurrency   string
	ToCurrency     string
	ToAddress      string
	Amount         *float64 // nil until observed from the invoice in the reverse direction
	Status         TransactionStatus
	PreviousStatus TransactionStatus
	Rate           *RateInfo
	LastError      *TxError
	Invoice        *GatewayTx
	Deposit        *GatewayTx
	Withdraw       *GatewayTx
	Owner          Owner
	Channel        Channel
	Deleted        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FinishedAt     *time.Time
}

// Owner identifies who requested the exchange.
type Owner struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Channel carries the credential set and callback endpoints of the intake
// channel a transaction was created through. Empty keys fall back to the
// service-wide gateway credentials.
type Channel struct {
	Name        string `json:"name"`
	APIKey      string `json:"api_key"`
	SecretKey   string `json:"secret_key"`
	ReturnURL   string `json:"return_url"`
	CallbackURL string `json:"callback_url"`
}

// GatewayTx is an opaque snapshot of a gateway-issued sub-resource
// (invoice, deposit or withdraw). Snapshots are replaced wholesale on every
// successful poll, never merged field by field.
type GatewayTx struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"externalid"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Address    string  `json:"address,omitempty"`
	Memo       string  `json:"memo,omitempty"`
	FlowAction string  `json:"flow_action,omitempty"`
	Nonce      uint32  `json:"nonce,omitempty"`
}

// RateInfo is the pair rate snapshotted onto a transaction at the moment the
// payout amount is computed.
type RateInfo struct {
	Rate          float64 `json:"rate"`
	Multiplier    float64 `json:"multiplier"`
	QuoteCurrency string  `json:"quote_currency"`
}

// Route is one viable exchange direction with positive balance on the
// destination side. Computed on demand, never persisted.
type Route struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	MaxAmount float64  `json:"max_amount"`
	Rate      RateInfo `json:"rate"`
}

// TxError is the last business or transport error recorded on a transaction.
type TxError struct {
	Code        int    `json:"err_code,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Description string `json:"err_description"`
}
