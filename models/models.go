package models

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
)

var ErrNetworkUnavailable = errors.New("network unavailable")
var ErrServerError = errors.New("server error")
var ErrInvalidData = errors.New("invalid data")
var ErrUnknown = errors.New("unknown error")
var ErrPersistenceFailure = errors.New("persistence failure")

// ClassifyError maps a raw transport or decoding error onto one of the
// sentinel kinds above. Already-classified errors pass through unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		ErrNetworkUnavailable, ErrServerError, ErrInvalidData, ErrUnknown, ErrPersistenceFailure,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return ErrServerError
		}
		var dnsErr *net.DNSError
		if errors.As(urlErr.Err, &dnsErr) {
			return ErrServerError
		}
		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			return ErrNetworkUnavailable
		}
		return ErrUnknown
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrInvalidData
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrServerError
	}

	return ErrUnknown
}

// IsRetryable reports whether a user-triggered retry of the same logical
// request makes sense for the error kind. Decode failures and uncategorized
// errors are surfaced with a generic message instead.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable) || errors.Is(err, ErrServerError)
}
