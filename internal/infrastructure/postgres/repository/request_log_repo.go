package repository

import (
	"encoding/json"
	"time"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/postgres/models"
	"github.com/jaevor/go-nanoid"
	"gorm.io/gorm"
)

// DefaultRequestLogRepository is the append-only audit log of gateway calls.
// Entries are never updated or deleted.
type DefaultRequestLogRepository struct {
	DB    *gorm.DB
	newID func() string
}

func NewDefaultRequestLogRepository(db *gorm.DB) (*DefaultRequestLogRepository, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}
	return &DefaultRequestLogRepository{DB: db, newID: idGenerator}, nil
}

func (r *DefaultRequestLogRepository) Append(entry *domain.RequestLogEntry) error {
	headers, err := json.Marshal(entry.Headers)
	if err != nil {
		return err
	}

	var errJSON []byte
	if entry.Error != nil {
		if errJSON, err = json.Marshal(entry.Error); err != nil {
			return err
		}
	}

	model := models.RequestLogModel{
		ID:        r.newID(),
		URL:       entry.URL,
		Payload:   entry.Payload,
		Headers:   headers,
		Response:  entry.Response,
		Error:     errJSON,
		CreatedAt: time.Now(),
	}
	return r.DB.Create(&model).Error
}
