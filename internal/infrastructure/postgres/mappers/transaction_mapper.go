package mappers

import (
	"encoding/json"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/postgres/models"
)

func ToTransactionModel(tx *domain.Transaction) (*models.TransactionModel, error) {
	model := &models.TransactionModel{
		ID:             tx.ID,
		FromCurrency:   tx.FromCurrency,
		ToCurrency:     tx.ToCurrency,
		ToAddress:      tx.ToAddress,
		Amount:         tx.Amount,
		Status:         tx.Status,
		PreviousStatus: tx.PreviousStatus,
		Deleted:        tx.Deleted,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
		FinishedAt:     tx.FinishedAt,
	}

	var err error
	if model.Rate, err = marshalField(tx.Rate); err != nil {
		return nil, err
	}
	if model.LastError, err = marshalField(tx.LastError); err != nil {
		return nil, err
	}
	if model.Invoice, err = marshalField(tx.Invoice); err != nil {
		return nil, err
	}
	if model.Deposit, err = marshalField(tx.Deposit); err != nil {
		return nil, err
	}
	if model.Withdraw, err = marshalField(tx.Withdraw); err != nil {
		return nil, err
	}
	if model.Owner, err = json.Marshal(tx.Owner); err != nil {
		return nil, err
	}
	if model.Channel, err = json.Marshal(tx.Channel); err != nil {
		return nil, err
	}

	return model, nil
}

func ToDomainTransaction(model *models.TransactionModel) (*domain.Transaction, error) {
	tx := &domain.Transaction{
		ID:             model.ID,
		FromCurrency:   model.FromCurrency,
		ToCurrency:     model.ToCurrency,
		ToAddress:      model.ToAddress,
		Amount:         model.Amount,
		Status:         model.Status,
		PreviousStatus: model.PreviousStatus,
		Deleted:        model.Deleted,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
		FinishedAt:     model.FinishedAt,
	}

	if err := unmarshalField(model.Rate, &tx.Rate); err != nil {
		return nil, err
	}
	if err := unmarshalField(model.LastError, &tx.LastError); err != nil {
		return nil, err
	}
	if err := unmarshalField(model.Invoice, &tx.Invoice); err != nil {
		return nil, err
	}
	if err := unmarshalField(model.Deposit, &tx.Deposit); err != nil {
		return nil, err
	}
	if err := unmarshalField(model.Withdraw, &tx.Withdraw); err != nil {
		return nil, err
	}
	if len(model.Owner) > 0 {
		if err := json.Unmarshal(model.Owner, &tx.Owner); err != nil {
			return nil, err
		}
	}
	if len(model.Channel) > 0 {
		if err := json.Unmarshal(model.Channel, &tx.Channel); err != nil {
			return nil, err
		}
	}

	return tx, nil
}

func marshalField[T any](value *T) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func unmarshalField(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
