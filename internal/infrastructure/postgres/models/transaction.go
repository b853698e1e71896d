package models

import (
	"time"

	"github.com/humanistic-tech/exchange-service/internal/domain"
)

type TransactionModel struct {
	ID             string                   `gorm:"primaryKey;type:uuid"`
	FromCurrency   string
	ToCurrency     string
	ToAddress      string
	Amount         *float64
	Status         domain.TransactionStatus `gorm:"index:idx_tx_status_deleted"`
	PreviousStatus domain.TransactionStatus
	Rate           []byte                   `gorm:"type:jsonb"`
	LastError      []byte                   `gorm:"type:jsonb"`
	Invoice        []byte                   `gorm:"type:jsonb"`
	Deposit        []byte                   `gorm:"type:jsonb"`
	Withdraw       []byte                   `gorm:"type:jsonb"`
	Owner          []byte                   `gorm:"type:jsonb"`
	Channel        []byte                   `gorm:"type:jsonb"`
	Deleted        bool                     `gorm:"index:idx_tx_status_deleted"`
	CreatedAt      time.Time                `gorm:"index:idx_tx_created_at"`
	UpdatedAt      time.Time
	FinishedAt     *time.Time
}

type RequestLogModel struct {
	ID        string    `gorm:"primaryKey"`
	URL       string
	Payload   []byte    `gorm:"type:jsonb"`
	Headers   []byte    `gorm:"type:jsonb"`
	Response  []byte    `gorm:"type:jsonb"`
	Error     []byte    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"index:idx_request_created_at"`
}
