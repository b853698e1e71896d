package gateway

import (
	"errors"
	"fmt"
)

// APIError is a business error returned by the gateway inside an HTTP 2xx
// envelope as err_code/err_description.
type APIError struct {
	Code        int    `json:"err_code"`
	Description string `json:"err_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Description)
}

// TransportError is a network or serialization failure while calling the
// gateway. Always retryable on the next pass.
type TransportError struct {
	Kind    string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport failure (%s): %s", e.Kind, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Error codes the processing loop must not retry.
var unprocessableCodes = map[int]bool{
	102: true, // Request Data Error: GW Currency not configured
}

// IsUnprocessable reports whether err is a business error that can never
// succeed on retry.
func IsUnprocessable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return unprocessableCodes[apiErr.Code]
}
