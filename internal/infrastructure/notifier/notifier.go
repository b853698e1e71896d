package notifier

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// SendCallback notifies a channel's callback URL about a transaction status
// change. Fire-and-forget: failures are logged and never surface to the
// processing loop.
func SendCallback(callbackURL, transactionID, status string) {
	go func() {
		parsedURL, err := url.Parse(callbackURL)
		if err != nil {
			slog.Error("callback error: invalid URL", "url", callbackURL, "error", err.Error())
			return
		}

		query := parsedURL.Query()
		query.Set("id", transactionID)
		query.Set("status", status)
		parsedURL.RawQuery = query.Encode()

		client := &http.Client{
			Timeout: 5 * time.Second,
		}

		resp, err := client.Get(parsedURL.String())
		if err != nil {
			slog.Error("callback error: request failed", "url", parsedURL.String(), "error", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Warn("callback warning: non-2xx response", "url", parsedURL.String(), "status", resp.Status)
		}
	}()
}
