package exchange

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/humanistic-tech/exchange-service/internal/config"
	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/gateway"
	publisher "github.com/humanistic-tech/exchange-service/internal/infrastructure/kafka"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/metrics"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/notifier"
	exchangedto "github.com/humanistic-tech/exchange-service/internal/usecase/dto/exchange"
)

type ExchangeUsecase interface {
	CreateTransaction(input *exchangedto.CreateTransactionInput) (*domain.Transaction, error)
	GetTransactionByID(id string) (*domain.Transaction, error)
	GetRoutes(ctx context.Context) ([]domain.Route, error)
	ProcessPending(ctx context.Context) error
}

type DefaultExchangeUsecase struct {
	TxRepo    domain.TransactionRepository
	LogRepo   domain.RequestLogRepository
	Gateway   config.Gateway
	Publisher *publisher.KafkaPublisher
	Metrics   *metrics.ExchangeMetrics
}

func NewDefaultExchangeUsecase(
	txRepo domain.TransactionRepository,
	logRepo domain.RequestLogRepository,
	gatewayCfg config.Gateway,
	kafkaPublisher *publisher.KafkaPublisher,
	exchangeMetrics *metrics.ExchangeMetrics,
) *DefaultExchangeUsecase {
	return &DefaultExchangeUsecase{
		TxRepo:    txRepo,
		LogRepo:   logRepo,
		Gateway:   gatewayCfg,
		Publisher: kafkaPublisher,
		Metrics:   exchangeMetrics,
	}
}

func (uc *DefaultExchangeUsecase) CreateTransaction(input *exchangedto.CreateTransactionInput) (*domain.Transaction, error) {
	if input.FromCurrency == "" || input.ToCurrency == "" || input.ToAddress == "" {
		return nil, domain.ErrInvalidTransaction
	}
	if input.Amount != nil && *input.Amount <= 0 {
		return nil, domain.ErrInvalidTransaction
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:           uuid.New().String(),
		FromCurrency: input.FromCurrency,
		ToCurrency:   input.ToCurrency,
		ToAddress:    input.ToAddress,
		Amount:       input.Amount,
		Status:       domain.StatusNew,
		Owner:        input.Owner,
		Channel:      input.Channel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.TxRepo.Create(tx); err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordCreated(tx.FromCurrency, tx.ToCurrency)
	}
	uc.statusChanged(tx.Status, tx)

	return tx, nil
}

func (uc *DefaultExchangeUsecase) GetTransactionByID(id string) (*domain.Transaction, error) {
	return uc.TxRepo.GetByID(id)
}

// GetRoutes computes the currently viable exchange directions using the
// service-wide gateway credentials.
func (uc *DefaultExchangeUsecase) GetRoutes(ctx context.Context) ([]domain.Route, error) {
	rates := NewRateService(uc.clientFor(domain.Channel{}))
	return rates.ComputeRoutes(ctx)
}

// ProcessPending runs one poll pass: every non-terminal transaction is
// advanced by a single Process call, strictly sequentially. Sequential
// processing keeps exactly one in-flight mutation path per pass and avoids
// concurrent credential usage against the gateway's nonce scheme.
func (uc *DefaultExchangeUsecase) ProcessPending(ctx context.Context) error {
	pending, err := uc.TxRepo.GetPending()
	if err != nil {
		return err
	}
	if uc.Metrics != nil {
		uc.Metrics.SetPending(len(pending))
	}

	for _, tx := range pending {
		started := time.Now()
		if err := uc.processOne(ctx, tx); err != nil {
			slog.Error("transaction pass failed",
				"transaction_id", tx.ID,
				"status", string(tx.Status),
				"error", err.Error(),
			)
		}
		if uc.Metrics != nil {
			uc.Metrics.ObserveProcessing(string(tx.Status), time.Since(started))
		}
	}

	return nil
}

func (uc *DefaultExchangeUsecase) processOne(ctx context.Context, tx *domain.Transaction) error {
	gw := uc.clientFor(tx.Channel)
	proc := NewProcessor(tx, gw, NewRateService(gw), uc.TxRepo, uc.statusChanged, InvoiceParams{
		DefaultReturnURL: uc.Gateway.SuccessURL,
		TTLMinutes:       uc.Gateway.InvoiceTTLMinutes,
	})

	done, err := proc.Process(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotProcessable) {
			slog.Warn("skipping transaction without processable data", "transaction_id", tx.ID)
			return nil
		}
		return err
	}
	if done {
		slog.Info("transaction completed", "transaction_id", tx.ID)
		if uc.Metrics != nil {
			uc.Metrics.RecordDone(tx.FromCurrency, tx.ToCurrency)
		}
	}
	return nil
}

// clientFor builds a gateway client bound to the channel's credential set,
// falling back to the service-wide keys. A fresh client per transaction keeps
// credentials out of shared mutable state.
func (uc *DefaultExchangeUsecase) clientFor(channel domain.Channel) *gateway.Client {
	creds := gateway.Credentials{
		APIKey:    channel.APIKey,
		SecretKey: channel.SecretKey,
	}
	if creds.APIKey == "" {
		creds.APIKey = uc.Gateway.APIKey
		creds.SecretKey = uc.Gateway.SecretKey
	}
	return gateway.NewClient(uc.Gateway.BaseURL, creds, uc.LogRepo, uc.Metrics)
}

// statusChanged is the status-change hook: every transition is logged,
// counted, published to Kafka and forwarded to the channel's callback URL.
// All of it is fire-and-forget so notification failures never abort an
// already persisted transition.
func (uc *DefaultExchangeUsecase) statusChanged(newStatus domain.TransactionStatus, tx *domain.Transaction) {
	slog.Info("transaction status changed",
		"transaction_id", tx.ID,
		"status", string(newStatus),
		"previous_status", string(tx.PreviousStatus),
	)

	if uc.Metrics != nil {
		uc.Metrics.RecordTransition(string(newStatus))
		if newStatus == domain.StatusError {
			uc.Metrics.RecordError(tx.FromCurrency, tx.ToCurrency)
		}
	}

	if uc.Publisher != nil {
		event := publisher.TransactionEvent{
			TransactionID: tx.ID,
			Status:        string(newStatus),
			FromCurrency:  tx.FromCurrency,
			ToCurrency:    tx.ToCurrency,
		}
		if tx.Amount != nil {
			event.Amount = *tx.Amount
		}
		go func(event publisher.TransactionEvent) {
			if err := uc.Publisher.Publish(event); err != nil {
				slog.Error("failed to publish TransactionEvent", "error", err.Error())
			}
		}(event)
	}

	if tx.Channel.CallbackURL != "" {
		notifier.SendCallback(tx.Channel.CallbackURL, tx.ID, string(newStatus))
	}
}
