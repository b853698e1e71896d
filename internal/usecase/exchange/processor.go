package exchange

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/gateway"
)

// StatusCallback is invoked on every status transition with the new status
// and the full transaction snapshot. Implementations must be fire-and-forget:
// the processor persists the transition before calling it and ignores
// whatever the callback does.
type StatusCallback func(newStatus domain.TransactionStatus, tx *domain.Transaction)

// InvoiceParams configures gateway invoice creation.
type InvoiceParams struct {
	DefaultReturnURL string
	TTLMinutes       int
}

// Processor drives one transaction through its lifecycle:
//
//	new -> create_invoice -> wait_invoice -> create_withdraw -> wait_withdraw -> done
//
// with error as the terminal failure state. Creation steps are idempotent at
// the gateway through deterministic external ids, so re-invoking a step after
// a crash converges to the same external resource.
type Processor struct {
	tx      *domain.Transaction
	gw      *gateway.Client
	rates   *RateService
	repo    domain.TransactionRepository
	notify  StatusCallback
	invoice InvoiceParams
}

func NewProcessor(
	tx *domain.Transaction,
	gw *gateway.Client,
	rates *RateService,
	repo domain.TransactionRepository,
	notify StatusCallback,
	invoice InvoiceParams,
) *Processor {
	return &Processor{
		tx:      tx,
		gw:      gw,
		rates:   rates,
		repo:    repo,
		notify:  notify,
		invoice: invoice,
	}
}

func (p *Processor) canProcessCreate() bool {
	return p.tx != nil && p.tx.ID != "" && p.tx.FromCurrency != ""
}

// canProcessInvoice permits a nil amount: in the reverse direction the amount
// is determined by what the counterparty actually sends, and the gateway
// computes it on invoice fulfillment.
func (p *Processor) canProcessInvoice() bool {
	if !p.canProcessCreate() {
		return false
	}
	return p.tx.Amount == nil || *p.tx.Amount > 0
}

func (p *Processor) canProcessWithdraw() bool {
	return p.tx != nil && p.tx.ID != "" && p.tx.ToCurrency != "" && p.tx.ToAddress != ""
}

// Process advances the transaction through every transition it currently
// qualifies for in a single pass, stopping once it reaches a state that needs
// an external event or a terminal state. Returns true when the transaction
// reached done.
func (p *Processor) Process(ctx context.Context) (bool, error) {
	// A transaction missing the data for either leg is rejected before any
	// state change, even if the invoice leg alone could proceed.
	if !p.canProcessInvoice() || !p.canProcessWithdraw() {
		return false, domain.ErrNotProcessable
	}
	if p.tx.Status.Terminal() {
		return false, domain.ErrTransactionFinished
	}

	for !p.tx.Status.Terminal() {
		advanced, err := p.step(ctx)
		if err != nil {
			return false, err
		}
		if !advanced {
			break
		}
	}

	return p.tx.Status == domain.StatusDone, nil
}

func (p *Processor) step(ctx context.Context) (bool, error) {
	switch p.tx.Status {
	case domain.StatusNew:
		return p.stepNew()
	case domain.StatusCreateInvoice:
		return p.stepCreateInvoice(ctx)
	case domain.StatusWaitInvoice:
		return p.stepWaitInvoice(ctx)
	case domain.StatusCreateWithdraw:
		return p.stepCreateWithdraw(ctx)
	case domain.StatusWaitWithdraw:
		return p.stepWaitWithdraw(ctx)
	}
	return false, nil
}

func (p *Processor) stepNew() (bool, error) {
	p.setStatus(domain.StatusCreateInvoice)
	if err := p.save(); err != nil {
		return false, err
	}
	p.notifyStatus()
	return true, nil
}

func (p *Processor) stepCreateInvoice(ctx context.Context) (bool, error) {
	invoice, err := p.createInvoice(ctx)
	if err != nil {
		return false, p.recordStepError(err)
	}

	p.tx.Invoice = invoice
	p.setStatus(domain.StatusWaitInvoice)
	if err := p.save(); err != nil {
		return false, err
	}
	p.notifyStatus()
	return true, nil
}

func (p *Processor) stepWaitInvoice(ctx context.Context) (bool, error) {
	fresh, err := p.gw.TransactionStatus(ctx, p.tx.Invoice.ExternalID)
	if err != nil {
		return false, p.recordStepError(err)
	}
	if fresh.Status == p.tx.Invoice.Status {
		// Nothing observable changed; yield until the next pass.
		return false, nil
	}

	snapshot := fresh.Domain(p.tx.Invoice.Nonce)
	p.tx.Invoice = snapshot
	if snapshot.Amount > 0 {
		p.tx.Amount = &snapshot.Amount
	}

	newStatus := domain.StatusWaitInvoice
	switch fresh.Status {
	case gateway.TxStatusDone:
		newStatus = domain.StatusCreateWithdraw
	case gateway.TxStatusFail, gateway.TxStatusReject:
		newStatus = domain.StatusError
	}

	p.setStatus(newStatus)
	if err := p.save(); err != nil {
		return false, err
	}
	p.notifyStatus()
	return newStatus == domain.StatusCreateWithdraw, nil
}

func (p *Processor) stepCreateWithdraw(ctx context.Context) (bool, error) {
	// The rate is snapshotted exactly once, fixing the exchange rate at the
	// moment of funds collection. Retries of this step reuse the snapshot.
	if p.tx.Rate == nil {
		rate, err := p.rates.ResolvePairRate(ctx, p.tx.FromCurrency, p.tx.ToCurrency, nil)
		if err != nil {
			return false, p.recordStepError(err)
		}
		p.tx.Rate = rate
		if err := p.save(); err != nil {
			return false, err
		}
	}

	amount, ok := p.withdrawAmount()
	if !ok {
		slog.Warn("withdraw amount not yet known", "transaction_id", p.tx.ID)
		return false, nil
	}

	withdraw, err := p.createWithdraw(ctx, amount)
	if err != nil {
		return false, p.recordStepError(err)
	}

	p.tx.Withdraw = withdraw
	p.setStatus(domain.StatusWaitWithdraw)
	if err := p.save(); err != nil {
		return false, err
	}
	p.notifyStatus()
	return true, nil
}

func (p *Processor) stepWaitWithdraw(ctx context.Context) (bool, error) {
	fresh, err := p.gw.WithdrawStatus(ctx, p.tx.Withdraw.ExternalID)
	if err != nil {
		return false, p.recordStepError(err)
	}
	if fresh.Status == p.tx.Withdraw.Status {
		return false, nil
	}

	p.tx.Withdraw = fresh.Domain(p.tx.Withdraw.Nonce)

	newStatus := domain.StatusWaitWithdraw
	switch fresh.Status {
	case gateway.TxStatusDone:
		newStatus = domain.StatusDone
	case gateway.TxStatusFail, gateway.TxStatusReject:
		newStatus = domain.StatusError
	}

	p.setStatus(newStatus)
	if err := p.save(); err != nil {
		return false, err
	}
	p.notifyStatus()
	return false, nil
}

// createInvoice is idempotent: an existing invoice record is returned as is,
// without a second gateway call.
func (p *Processor) createInvoice(ctx context.Context) (*domain.GatewayTx, error) {
	if p.tx.Invoice != nil {
		return p.tx.Invoice, nil
	}
	if !p.canProcessInvoice() {
		return nil, domain.ErrNotProcessable
	}

	nonce := gateway.NewNonce()
	created, err := p.gw.CreateInvoice(ctx, gateway.InvoiceCreateRequest{
		ExternalID:  gateway.ExternalID("i", p.tx.ID),
		Amount:      p.tx.Amount,
		Currency:    CardCurrency(p.tx.FromCurrency),
		ReturnURL:   p.returnURL(),
		Nonce:       nonce,
		LimitMinute: p.invoice.TTLMinutes,
	})
	if err != nil {
		return nil, err
	}
	return created.Domain(nonce), nil
}

func (p *Processor) createWithdraw(ctx context.Context, amount float64) (*domain.GatewayTx, error) {
	if p.tx.Withdraw != nil {
		return p.tx.Withdraw, nil
	}
	if !p.canProcessWithdraw() {
		return nil, domain.ErrNotProcessable
	}
	if p.tx.Invoice == nil {
		return nil, domain.ErrNotProcessable
	}

	nonce := gateway.NewNonce()
	created, err := p.gw.SendWithdraw(ctx, gateway.WithdrawCreateRequest{
		ExternalID: gateway.ExternalID("w", p.tx.ID),
		Amount:     amount,
		Currency:   CardCurrency(p.tx.ToCurrency),
		Nonce:      nonce,
		UserData: gateway.WithdrawUser{
			Payee: p.tx.ToAddress,
			Memo:  p.tx.Invoice.Memo,
		},
	})
	if err != nil {
		return nil, err
	}
	return created.Domain(nonce), nil
}

// CreateDeposit provisions a deposit wallet for the source currency. This is
// an alternate collection path kept alongside the invoice flow; the default
// processing graph never invokes it.
func (p *Processor) CreateDeposit(ctx context.Context) (*domain.GatewayTx, error) {
	if p.tx.Deposit != nil {
		return p.tx.Deposit, nil
	}
	if !p.canProcessCreate() {
		return nil, domain.ErrNotProcessable
	}

	nonce := gateway.NewNonce()
	created, err := p.gw.CreateDeposit(ctx, gateway.DepositCreateRequest{
		ExternalID: gateway.ExternalID("d", p.tx.ID),
		Currency:   CardCurrency(p.tx.FromCurrency),
		Nonce:      nonce,
	})
	if err != nil {
		return nil, err
	}
	p.tx.Deposit = created.Domain(nonce)
	return p.tx.Deposit, nil
}

// ReloadDeposit fetches the current gateway state of the deposit.
func (p *Processor) ReloadDeposit(ctx context.Context) (*domain.GatewayTx, error) {
	if p.tx.Deposit == nil {
		return nil, domain.ErrNotProcessable
	}
	fresh, err := p.gw.TransactionStatus(ctx, p.tx.Deposit.ExternalID)
	if err != nil {
		return nil, err
	}
	return fresh.Domain(p.tx.Deposit.Nonce), nil
}

// withdrawAmount computes the payout: the requested amount, or the observed
// invoice amount when none was requested, times the snapshotted multiplier.
func (p *Processor) withdrawAmount() (float64, bool) {
	if p.tx.Rate == nil || p.tx.Invoice == nil {
		return 0, false
	}
	amount := 0.0
	if p.tx.Amount != nil {
		amount = *p.tx.Amount
	}
	if amount == 0 {
		amount = p.tx.Invoice.Amount
	}
	if amount <= 0 {
		return 0, false
	}
	return amount * p.tx.Rate.Multiplier, true
}

func (p *Processor) returnURL() string {
	if p.tx.Channel.ReturnURL != "" {
		return p.tx.Channel.ReturnURL
	}
	return p.invoice.DefaultReturnURL
}

// recordStepError persists a gateway failure as lastError. Whitelisted
// unprocessable business errors and unresolvable rates force the terminal
// error state; everything else leaves the status unchanged so the next pass
// retries the same step. The returned error is non-nil only for persistence
// failures.
func (p *Processor) recordStepError(err error) error {
	txErr := toTxError(err)
	if txErr == nil {
		return err
	}

	p.tx.LastError = txErr
	if gateway.IsUnprocessable(err) || errors.Is(err, domain.ErrRateNotFound) {
		p.setStatus(domain.StatusError)
		if saveErr := p.save(); saveErr != nil {
			return saveErr
		}
		p.notifyStatus()
		return nil
	}

	return p.save()
}

func toTxError(err error) *domain.TxError {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return &domain.TxError{Code: apiErr.Code, Description: apiErr.Description}
	}
	var transportErr *gateway.TransportError
	if errors.As(err, &transportErr) {
		return &domain.TxError{Kind: transportErr.Kind, Description: transportErr.Message}
	}
	if errors.Is(err, domain.ErrRateNotFound) {
		return &domain.TxError{Kind: "rate_not_found", Description: err.Error()}
	}
	return nil
}

func (p *Processor) setStatus(status domain.TransactionStatus) {
	p.tx.PreviousStatus = p.tx.Status
	p.tx.Status = status
	if status == domain.StatusDone {
		now := time.Now()
		p.tx.FinishedAt = &now
	}
}

func (p *Processor) save() error {
	p.tx.UpdatedAt = time.Now()
	return p.repo.Save(p.tx)
}

func (p *Processor) notifyStatus() {
	if p.notify != nil {
		p.notify(p.tx.Status, p.tx)
	}
}
