package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
)

// mapStatusError maps an API HTTP status to a typed httpx.Error so the
// shared retry logic can classify it. retryAfter carries server guidance
// from a Retry-After header, zero when absent.
func mapStatusError(operation string, statusCode int, retryAfter time.Duration, body []byte) *httpx.Error {
	message := parseErrorMessage(statusCode, body)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &httpx.Error{
			Type:       httpx.ErrTypeAuthentication,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Operation:  operation,
		}

	case http.StatusBadRequest:
		return &httpx.Error{
			Type:       httpx.ErrTypeInvalidRequest,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Operation:  operation,
		}

	case http.StatusNotFound:
		return &httpx.Error{
			Type:       httpx.ErrTypeNotFound,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Operation:  operation,
		}

	case http.StatusUnprocessableEntity:
		// Routine for comment posting: the diff is too large or the file
		// is not part of the change request.
		return &httpx.Error{
			Type:       httpx.ErrTypeUnprocessable,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Operation:  operation,
		}

	case http.StatusTooManyRequests:
		return &httpx.Error{
			Type:       httpx.ErrTypeRateLimit,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Operation:  operation,
			RetryAfter: retryAfter,
		}

	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &httpx.Error{
			Type:       httpx.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Operation:  operation,
			RetryAfter: retryAfter,
		}
	}

	return &httpx.Error{
		Type:       httpx.ErrTypeUnknown,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
		Operation:  operation,
	}
}

// parseErrorMessage extracts the API error message from a response body,
// falling back to the bare status when the body is not the standard
// envelope.
func parseErrorMessage(statusCode int, body []byte) string {
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// parseRetryAfter reads a Retry-After header value, which may be either
// delta-seconds or an HTTP date. Unparsable values return zero so the
// computed exponential backoff applies instead.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
