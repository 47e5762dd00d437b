package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/dmitrijs2005/dreamtracer/internal/common"
)

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return common.ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return common.ErrNotFound
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return common.ErrValidation
	case e.Status == http.StatusPaymentRequired, e.Status == http.StatusTooManyRequests:
		return common.ErrQuotaExceeded
	case e.Status >= 500:
		return common.ErrUnavailable
	default:
		return common.ErrInternal
	}
}

// mapError builds an APIError from a failed response body. Bodies that are
// not {"detail": "..."} JSON are kept verbatim, truncated.
func mapError(status int, body []byte) error {
	var payload struct {
		Detail any `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		switch d := payload.Detail.(type) {
		case string:
			detail = d
		default:
			b, _ := json.Marshal(d)
			detail = string(b)
		}
	} else if len(body) > 0 {
		detail = truncate(string(body), maxDetailBytes)
	}
	return &APIError{Status: status, Detail: detail}
}

const maxDetailBytes = 200

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
