package ethapi

import (
	"encoding/json"
	"fmt"
)

// APIError is the failure payload surfaced for a non-200 response. The remote
// API answers errors with a JSON body which is kept verbatim in Body.
type APIError struct {
	Status int
	Body   map[string]interface{}
}

func newAPIError(status int, rawBody string) *APIError {
	body := map[string]interface{}{}
	if err := json.Unmarshal([]byte(rawBody), &body); err != nil {
		body = map[string]interface{}{"message": rawBody}
	}
	return &APIError{Status: status, Body: body}
}

func (e *APIError) Error() string {
	if msg, ok := e.Body["message"].(string); ok {
		return fmt.Sprintf("eth api: %d %s", e.Status, msg)
	}
	return fmt.Sprintf("eth api: %d", e.Status)
}
