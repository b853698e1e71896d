package repository

import (
	"errors"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/postgres/mappers"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) Create(tx *domain.Transaction) error {
	model, err := mappers.ToTransactionModel(tx)
	if err != nil {
		return err
	}
	return r.DB.Create(model).Error
}

// Save replaces the whole stored document keyed by the transaction id.
func (r *DefaultTransactionRepository) Save(tx *domain.Transaction) error {
	model, err := mappers.ToTransactionModel(tx)
	if err != nil {
		return err
	}
	return r.DB.Save(model).Error
}

func (r *DefaultTransactionRepository) GetByID(id string) (*domain.Transaction, error) {
	var model models.TransactionModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&model)
}

func (r *DefaultTransactionRepository) GetPending() ([]*domain.Transaction, error) {
	var txModels []models.TransactionModel
	err := r.DB.
		Where("status NOT IN ?", []domain.TransactionStatus{domain.StatusDone, domain.StatusError}).
		Where("deleted = ?", false).
		Order("created_at ASC").
		Find(&txModels).Error
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(txModels))
	for i := range txModels {
		tx, err := mappers.ToDomainTransaction(&txModels[i])
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
