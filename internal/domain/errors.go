package domain

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionFinished = errors.New("transaction already finished")
	ErrNotProcessable      = errors.New("transaction is missing data required for processing")
	ErrRateNotFound        = errors.New("no rate for currency pair")
	ErrInvalidTransaction  = errors.New("invalid transaction request")
)
