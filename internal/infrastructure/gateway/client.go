package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/metrics"
)

const (
	headerKey       = "X-Processing-Key"
	headerSignature = "X-Processing-Signature"
	headerPayload   = "X-Processing-Payload"
)

// Credentials is the per-channel key pair used to sign gateway requests.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Client executes signed calls against the payment gateway. It never retries:
// retry policy belongs to the processing loop, which re-invokes failed steps
// on the next poll pass.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	logs    domain.RequestLogRepository
	metrics *metrics.ExchangeMetrics
}

func NewClient(baseURL string, creds Credentials, logs domain.RequestLogRepository, m *metrics.ExchangeMetrics) *Client {
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		http:    &http.Client{Timeout: 30 * time.Second},
		logs:    logs,
		metrics: m,
	}
}

// NewNonce returns a random 32-bit replay-protection value. A fresh nonce is
// required on every mutating or status call.
func NewNonce() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return binary.BigEndian.Uint32(buf[:])
}

// Call signs payload and POSTs it to path. The signature is an HMAC-SHA256
// over the base64 text of the JSON payload, not over the raw JSON. A business
// error embedded in a 2xx response comes back as *APIError, anything else as
// *TransportError. Every call is appended to the audit log.
func (c *Client) Call(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	fullURL := c.baseURL + path

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, c.fail(fullURL, nil, nil, &TransportError{Kind: "serialization", Message: err.Error(), Err: err})
	}

	base64Payload := base64.StdEncoding.EncodeToString(body)
	mac := hmac.New(sha256.New, []byte(c.creds.SecretKey))
	mac.Write([]byte(base64Payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	headers := map[string]string{
		headerKey:       c.creds.APIKey,
		headerSignature: signature,
		headerPayload:   base64Payload,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(fullURL, body, headers, &TransportError{Kind: "request", Message: err.Error(), Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	response, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(fullURL, body, headers, &TransportError{Kind: "network", Message: err.Error(), Err: err})
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, c.fail(fullURL, body, headers, &TransportError{Kind: "read", Message: err.Error(), Err: err})
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, c.fail(fullURL, body, headers, &TransportError{
			Kind:    "http_status",
			Message: fmt.Sprintf("unexpected status %s", response.Status),
		})
	}

	var envelope APIError
	if err := json.Unmarshal(responseBody, &envelope); err == nil && envelope.Code != 0 {
		c.logRequest(fullURL, body, headers, responseBody, &domain.TxError{
			Code:        envelope.Code,
			Description: envelope.Description,
		})
		c.count(path, "business_error")
		return nil, &envelope
	}

	c.logRequest(fullURL, body, headers, responseBody, nil)
	c.count(path, "success")
	return responseBody, nil
}

func (c *Client) fail(url string, payload []byte, headers map[string]string, terr *TransportError) error {
	c.logRequest(url, payload, headers, nil, &domain.TxError{
		Kind:        terr.Kind,
		Description: terr.Message,
	})
	c.count(url, "transport_error")
	return terr
}

func (c *Client) count(path, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordGatewayCall(path, outcome)
	}
}

func (c *Client) logRequest(url string, payload []byte, headers map[string]string, response []byte, txErr *domain.TxError) {
	if c.logs == nil {
		return
	}
	entry := &domain.RequestLogEntry{
		URL:      url,
		Payload:  payload,
		Headers:  headers,
		Response: response,
		Error:    txErr,
	}
	if err := c.logs.Append(entry); err != nil {
		// Audit failures must not break the call itself.
		slog.Error("request log append failed", "url", url, "error", err.Error())
	}
}
