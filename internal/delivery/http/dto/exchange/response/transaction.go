package response

import (
	"time"

	"github.com/humanistic-tech/exchange-service/internal/domain"
)

type TransactionResponse struct {
	ID             string           `json:"id"`
	FromCurrency   string           `json:"from_currency"`
	ToCurrency     string           `json:"to_currency"`
	ToAddress      string           `json:"to_address"`
	Amount         *float64         `json:"amount,omitempty"`
	Status         string           `json:"status"`
	PreviousStatus string           `json:"previous_status,omitempty"`
	Rate           *domain.RateInfo `json:"rate,omitempty"`
	LastError      *domain.TxError  `json:"last_error,omitempty"`
	InvoiceAddress string           `json:"invoice_address,omitempty"`
	InvoiceAction  string           `json:"invoice_action,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	FinishedAt     *time.Time       `json:"finished_at,omitempty"`
}

func FromDomainTransaction(tx *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:             tx.ID,
		FromCurrency:   tx.FromCurrency,
		ToCurrency:     tx.ToCurrency,
		ToAddress:      tx.ToAddress,
		Amount:         tx.Amount,
		Status:         string(tx.Status),
		PreviousStatus: string(tx.PreviousStatus),
		Rate:           tx.Rate,
		LastError:      tx.LastError,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
		FinishedAt:     tx.FinishedAt,
	}
	if tx.Invoice != nil {
		resp.InvoiceAddress = tx.Invoice.Address
		resp.InvoiceAction = tx.Invoice.FlowAction
	}
	return resp
}

type ErrorResponse struct {
	Error string `json:"error"`
}
