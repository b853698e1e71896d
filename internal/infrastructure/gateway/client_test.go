package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLogRepo struct {
	mu      sync.Mutex
	entries []*domain.RequestLogEntry
}

func (r *memLogRepo) Append(entry *domain.RequestLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memLogRepo) last() *domain.RequestLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

func TestCall_SignsPayload(t *testing.T) {
	const secret = "super-secret"

	var capturedHeaders http.Header
	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		capturedBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Credentials{APIKey: "key-1", SecretKey: secret}, nil, nil)
	payload := map[string]string{"hello": "world"}
	_, err := client.Call(context.Background(), "/v2/test", payload)
	require.NoError(t, err)
	require.NotNil(t, capturedHeaders)

	assert.Equal(t, "key-1", capturedHeaders.Get("X-Processing-Key"))
	assert.Equal(t, "application/json", capturedHeaders.Get("Content-Type"))

	// The signature covers the base64 text of the payload, not the raw JSON.
	base64Payload := capturedHeaders.Get("X-Processing-Payload")
	decoded, err := base64.StdEncoding.DecodeString(base64Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, string(decoded))
	assert.Equal(t, string(capturedBody), string(decoded))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(base64Payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, expected, capturedHeaders.Get("X-Processing-Signature"))
}

func TestCall_BusinessErrorInEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err_code":102,"err_description":"Request Data Error"}`))
	}))
	defer server.Close()

	logs := &memLogRepo{}
	client := NewClient(server.URL, Credentials{APIKey: "k", SecretKey: "s"}, logs, nil)

	_, err := client.Call(context.Background(), "/v2/invoice/create", struct{}{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 102, apiErr.Code)
	assert.Equal(t, "Request Data Error", apiErr.Description)
	assert.True(t, IsUnprocessable(err))

	entry := logs.last()
	require.NotNil(t, entry)
	require.NotNil(t, entry.Error)
	assert.Equal(t, 102, entry.Error.Code)
	assert.NotEmpty(t, entry.Response)
}

func TestCall_HTTPStatusIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	logs := &memLogRepo{}
	client := NewClient(server.URL, Credentials{APIKey: "k", SecretKey: "s"}, logs, nil)

	_, err := client.Call(context.Background(), "/v2/rate", struct{}{})
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "http_status", transportErr.Kind)
	assert.False(t, IsUnprocessable(err))

	entry := logs.last()
	require.NotNil(t, entry)
	require.NotNil(t, entry.Error)
	assert.Equal(t, "http_status", entry.Error.Kind)
}

func TestCall_NetworkFailureIsTransportError(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, Credentials{APIKey: "k", SecretKey: "s"}, nil, nil)
	_, err := client.Call(context.Background(), "/v2/rate", struct{}{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "network", transportErr.Kind)
}

func TestCall_SuccessIsAudited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"tx-1","status":"waiting"}`))
	}))
	defer server.Close()

	logs := &memLogRepo{}
	client := NewClient(server.URL, Credentials{APIKey: "k", SecretKey: "s"}, logs, nil)

	raw, err := client.Call(context.Background(), "/v2/transaction/status", map[string]string{"externalid": "i-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"tx-1","status":"waiting"}`, string(raw))

	entry := logs.last()
	require.NotNil(t, entry)
	assert.Nil(t, entry.Error)
	assert.JSONEq(t, `{"externalid":"i-1"}`, string(entry.Payload))
	assert.Contains(t, entry.URL, "/v2/transaction/status")
	assert.NotEmpty(t, entry.Headers["X-Processing-Signature"])
}

func TestIsUnprocessable(t *testing.T) {
	assert.True(t, IsUnprocessable(&APIError{Code: 102}))
	assert.False(t, IsUnprocessable(&APIError{Code: 500}))
	assert.False(t, IsUnprocessable(&TransportError{Kind: "network"}))
	assert.False(t, IsUnprocessable(nil))
}

func TestNewNonce(t *testing.T) {
	seen := make(map[uint32]bool)
	for i := 0; i < 64; i++ {
		seen[NewNonce()] = true
	}
	// 64 random 32-bit values colliding down to a handful would indicate a
	// broken source.
	assert.Greater(t, len(seen), 60)
}

func TestExternalID(t *testing.T) {
	assert.Equal(t, "iabc-123", ExternalID("i", "abc-123"))
	assert.Equal(t, "wabc-123", ExternalID("w", "abc-123"))
	assert.Equal(t, "dabc-123", ExternalID("d", "abc-123"))
}
