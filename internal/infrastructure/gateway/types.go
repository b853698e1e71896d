package gateway

import "github.com/humanistic-tech/exchange-service/internal/domain"

// Terminal statuses the gateway reports on invoices, deposits and payouts.
const (
	TxStatusDone   = "done"
	TxStatusFail   = "fail"
	TxStatusReject = "reject"
)

// RateRecord is one tradable pair as reported by /v2/rate.
type RateRecord struct {
	CurrencyFrom string  `json:"currency_from"`
	CurrencyTo   string  `json:"currency_to"`
	CurrencyRate string  `json:"currency_rate"`
	RateBuy      float64 `json:"rate_buy"`
	RateSell     float64 `json:"rate_sell"`
}

// BalanceInfo is one account balance as reported by /v2/balance. The gateway
// sends balances as decimal strings.
type BalanceInfo struct {
	CurrencyType string  `json:"currency_type"`
	Balance      float64 `json:"balance,string"`
	Alpha3       string  `json:"alpha3"`
}

// Transaction is the gateway's representation of an invoice, deposit or
// withdraw operation.
type Transaction struct {
	ID         string   `json:"id"`
	ExternalID string   `json:"externalid"`
	Status     string   `json:"status"`
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	Address    string   `json:"address"`
	Memo       string   `json:"memo"`
	FlowData   *FlowData `json:"flow_data,omitempty"`
}

type FlowData struct {
	Action string `json:"action"`
}

// Domain converts a gateway snapshot into its persisted form. The nonce is
// the one sent with the create call that produced the resource.
func (t *Transaction) Domain(nonce uint32) *domain.GatewayTx {
	tx := &domain.GatewayTx{
		ID:         t.ID,
		ExternalID: t.ExternalID,
		Status:     t.Status,
		Amount:     t.Amount,
		Currency:   t.Currency,
		Address:    t.Address,
		Memo:       t.Memo,
		Nonce:      nonce,
	}
	if t.FlowData != nil {
		tx.FlowAction = t.FlowData.Action
	}
	return tx
}

type InvoiceCreateRequest struct {
	ExternalID  string   `json:"externalid"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    string   `json:"currency"`
	ReturnURL   string   `json:"return_url"`
	Nonce       uint32   `json:"nonce"`
	LimitMinute int      `json:"limit_minute"`
}

type DepositCreateRequest struct {
	ExternalID string `json:"externalid"`
	Currency   string `json:"currency"`
	Nonce      uint32 `json:"nonce"`
}

type WithdrawCreateRequest struct {
	ExternalID string       `json:"externalid"`
	Amount     float64      `json:"amount"`
	Currency   string       `json:"currency"`
	Nonce      uint32       `json:"nonce"`
	UserData   WithdrawUser `json:"userdata"`
}

type WithdrawUser struct {
	Payee string `json:"payee"`
	Memo  string `json:"memo"`
}

type statusRequest struct {
	ExternalID string `json:"externalid"`
	Nonce      uint32 `json:"nonce"`
}

type nonceRequest struct {
	Nonce uint32 `json:"nonce"`
}
