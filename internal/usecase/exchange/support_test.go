package exchange

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/gateway"
)

// fakeGateway is a scripted stand-in for the payment gateway. Each endpoint
// serves whatever response was configured for it and counts its calls.
type fakeGateway struct {
	server *httptest.Server

	mu        sync.Mutex
	calls     map[string]int
	payloads  map[string]map[string]any
	responses map[string]any
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	fg := &fakeGateway{
		calls:     make(map[string]int),
		payloads:  make(map[string]map[string]any),
		responses: make(map[string]any),
	}
	fg.server = httptest.NewServer(http.HandlerFunc(fg.handle))
	t.Cleanup(fg.server.Close)
	return fg
}

func (fg *fakeGateway) handle(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	json.NewDecoder(r.Body).Decode(&payload)

	fg.mu.Lock()
	fg.calls[r.URL.Path]++
	fg.payloads[r.URL.Path] = payload
	response, ok := fg.responses[r.URL.Path]
	fg.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (fg *fakeGateway) respond(path string, response any) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	fg.responses[path] = response
}

func (fg *fakeGateway) callCount(path string) int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.calls[path]
}

func (fg *fakeGateway) lastPayload(path string) map[string]any {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.payloads[path]
}

func (fg *fakeGateway) client() *gateway.Client {
	return gateway.NewClient(fg.server.URL, gateway.Credentials{
		APIKey:    "test-key",
		SecretKey: "test-secret",
	}, nil, nil)
}

// memTxRepo is an in-memory TransactionRepository.
type memTxRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Transaction
	saves int
}

func newMemTxRepo() *memTxRepo {
	return &memTxRepo{items: make(map[string]*domain.Transaction)}
}

func (r *memTxRepo) Create(tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *tx
	r.items[tx.ID] = &copied
	return nil
}

func (r *memTxRepo) Save(tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *tx
	r.items[tx.ID] = &copied
	r.saves++
	return nil
}

func (r *memTxRepo) GetByID(id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.items[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	copied := *tx
	return &copied, nil
}

func (r *memTxRepo) GetPending() ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := make([]*domain.Transaction, 0)
	for _, tx := range r.items {
		if !tx.Status.Terminal() && !tx.Deleted {
			copied := *tx
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (r *memTxRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// statusRecorder captures status-change hook invocations.
type statusRecorder struct {
	mu       sync.Mutex
	statuses []domain.TransactionStatus
}

func (rec *statusRecorder) callback(newStatus domain.TransactionStatus, tx *domain.Transaction) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.statuses = append(rec.statuses, newStatus)
}

func (rec *statusRecorder) seen() []domain.TransactionStatus {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]domain.TransactionStatus(nil), rec.statuses...)
}

func floatPtr(v float64) *float64 {
	return &v
}
