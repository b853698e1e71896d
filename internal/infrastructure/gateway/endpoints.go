package gateway

import (
	"context"
	"encoding/json"
	"fmt"
)

func (c *Client) Rates(ctx context.Context) ([]RateRecord, error) {
	raw, err := c.Call(ctx, "/v2/rate", nonceRequest{Nonce: NewNonce()})
	if err != nil {
		return nil, err
	}
	var rates []RateRecord
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, &TransportError{Kind: "decode", Message: err.Error(), Err: err}
	}
	return rates, nil
}

func (c *Client) Balances(ctx context.Context) (map[string]BalanceInfo, error) {
	raw, err := c.Call(ctx, "/v2/balance", nonceRequest{Nonce: NewNonce()})
	if err != nil {
		return nil, err
	}
	var balances map[string]BalanceInfo
	if err := json.Unmarshal(raw, &balances); err != nil {
		return nil, &TransportError{Kind: "decode", Message: err.Error(), Err: err}
	}
	return balances, nil
}

// Calculate is a passthrough to the gateway's outcome calculation endpoint.
func (c *Client) Calculate(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "/v2/outcome/calc", struct{}{})
}

func (c *Client) CreateInvoice(ctx context.Context, req InvoiceCreateRequest) (*Transaction, error) {
	return c.callTransaction(ctx, "/v2/invoice/create", req)
}

func (c *Client) CreateDeposit(ctx context.Context, req DepositCreateRequest) (*Transaction, error) {
	return c.callTransaction(ctx, "/v2/deposit/create", req)
}

func (c *Client) SendWithdraw(ctx context.Context, req WithdrawCreateRequest) (*Transaction, error) {
	return c.callTransaction(ctx, "/v2/outcome/send", req)
}

// TransactionStatus polls the current state of an invoice or deposit by its
// external id.
func (c *Client) TransactionStatus(ctx context.Context, externalID string) (*Transaction, error) {
	return c.callTransaction(ctx, "/v2/transaction/status", statusRequest{
		ExternalID: externalID,
		Nonce:      NewNonce(),
	})
}

// WithdrawStatus polls the current state of a payout by its external id.
func (c *Client) WithdrawStatus(ctx context.Context, externalID string) (*Transaction, error) {
	return c.callTransaction(ctx, "/v2/transaction/outcome/status", statusRequest{
		ExternalID: externalID,
		Nonce:      NewNonce(),
	})
}

func (c *Client) callTransaction(ctx context.Context, path string, payload any) (*Transaction, error) {
	raw, err := c.Call(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, &TransportError{Kind: "decode", Message: err.Error(), Err: err}
	}
	return &tx, nil
}

// ExternalID builds the deterministic idempotency key the gateway uses to
// recognize a retried create-call as the same operation. Role is a single
// letter: d for deposit, i for invoice, w for withdraw.
func ExternalID(role string, transactionID string) string {
	return fmt.Sprintf("%s%s", role, transactionID)
}
