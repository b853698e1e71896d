package domain

import (
	"encoding/json"
	"time"
)

type TransactionRepository interface {
	Create(tx *Transaction) error
	// Save performs a full-document replace keyed by transaction id.
	Save(tx *Transaction) error
	GetByID(id string) (*Transaction, error)
	// GetPending returns transactions that are neither terminal nor deleted.
	GetPending() ([]*Transaction, error)
}

// RequestLogEntry is an append-only audit record of one gateway call.
type RequestLogEntry struct {
	ID        string
	URL       string
	Payload   json.RawMessage
	Headers   map[string]string
	Response  json.RawMessage
	Error     *TxError
	CreatedAt time.Time
}

type RequestLogRepository interface {
	Append(entry *RequestLogEntry) error
}
