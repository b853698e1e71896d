package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExchangeMetrics holds all exchange-transaction metrics.
type ExchangeMetrics struct {
	TransactionsCreatedTotal prometheus.CounterVec
	StatusTransitionsTotal   prometheus.CounterVec
	TransactionsDoneTotal    prometheus.CounterVec
	TransactionErrorsTotal   prometheus.CounterVec
	GatewayRequestsTotal     prometheus.CounterVec
	ProcessingDuration       prometheus.HistogramVec
	PendingTransactions      prometheus.Gauge
}

func NewExchangeMetrics() *ExchangeMetrics {
	return &ExchangeMetrics{
		TransactionsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_transactions_created_total",
				Help: "Total exchange transactions created",
			},
			[]string{"from_currency", "to_currency"},
		),

		StatusTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_status_transitions_total",
				Help: "Total transaction status transitions",
			},
			[]string{"status"},
		),

		TransactionsDoneTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_transactions_done_total",
				Help: "Total successfully completed transactions",
			},
			[]string{"from_currency", "to_currency"},
		),

		TransactionErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_transaction_errors_total",
				Help: "Total transactions that ended in the error state",
			},
			[]string{"from_currency", "to_currency"},
		),

		GatewayRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_gateway_requests_total",
				Help: "Total gateway API calls by path and outcome",
			},
			[]string{"path", "outcome"},
		),

		ProcessingDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exchange_processing_duration_seconds",
				Help:    "Duration of one processing pass over a transaction",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),

		PendingTransactions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "exchange_pending_transactions",
				Help: "Number of non-terminal transactions in the last poll pass",
			},
		),
	}
}

func (m *ExchangeMetrics) RecordCreated(fromCurrency, toCurrency string) {
	m.TransactionsCreatedTotal.WithLabelValues(fromCurrency, toCurrency).Inc()
}

func (m *ExchangeMetrics) RecordTransition(status string) {
	m.StatusTransitionsTotal.WithLabelValues(status).Inc()
}

func (m *ExchangeMetrics) RecordDone(fromCurrency, toCurrency string) {
	m.TransactionsDoneTotal.WithLabelValues(fromCurrency, toCurrency).Inc()
}

func (m *ExchangeMetrics) RecordError(fromCurrency, toCurrency string) {
	m.TransactionErrorsTotal.WithLabelValues(fromCurrency, toCurrency).Inc()
}

func (m *ExchangeMetrics) RecordGatewayCall(path, outcome string) {
	m.GatewayRequestsTotal.WithLabelValues(path, outcome).Inc()
}

func (m *ExchangeMetrics) ObserveProcessing(status string, duration time.Duration) {
	m.ProcessingDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *ExchangeMetrics) SetPending(count int) {
	m.PendingTransactions.Set(float64(count))
}
