package fivesim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies a known API error condition. The set is closed:
// anything the classifier cannot attribute lands on KindOther with the raw
// response preserved in the description.
type ErrorKind string

const (
	KindInvalidKey       ErrorKind = "invalid_key"
	KindServerError      ErrorKind = "server_error"
	KindServerOffline    ErrorKind = "server_offline"
	KindRequestError     ErrorKind = "request_error"
	KindInvalidResult    ErrorKind = "invalid_result"
	KindNoFreePhones     ErrorKind = "no_free_phones"
	KindIncorrectCountry ErrorKind = "incorrect_country"
	KindIncorrectProduct ErrorKind = "incorrect_product"
	KindOrderNotFound    ErrorKind = "order_not_found"
	KindOrderExpired     ErrorKind = "order_expired"
	KindOrderHasSMS      ErrorKind = "order_has_sms"
	KindOrderNoSMS       ErrorKind = "order_no_sms"
	KindHostingOrder     ErrorKind = "hosting_order"
	KindCancelNeedsTime  ErrorKind = "cancel_needs_time"
	KindRecordNotFound   ErrorKind = "record_not_found"
	KindRateLimitedByKey ErrorKind = "rate_limited_by_key"
	KindRateLimitedByIP  ErrorKind = "rate_limited_by_ip"
	KindBalanceTooLow    ErrorKind = "balance_too_low"
	KindRatingTooLow     ErrorKind = "rating_too_low"
	KindBadCountry       ErrorKind = "bad_country"
	KindBadOperator      ErrorKind = "bad_operator"
	KindMissingCountry   ErrorKind = "missing_country"
	KindMissingOperator  ErrorKind = "missing_operator"
	KindMissingProduct   ErrorKind = "missing_product"
	KindOther            ErrorKind = "other"
)

// APIError is the single error type for every failure signalled by the
// upstream service or by response decoding. Kind is always one of the
// ErrorKind constants; Description is human-readable context, usually the
// response body text.
type APIError struct {
	Kind        ErrorKind
	Description string

	// Err is the underlying cause, set for transport-level failures.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("fivesim: %s: %s", e.Kind, e.Description)
	}
	return fmt.Sprintf("fivesim: %s", e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError creates an APIError with the given kind and description.
func newAPIError(kind ErrorKind, description string) *APIError {
	return &APIError{Kind: kind, Description: description}
}

// KindOf returns the kind of an APIError in err's chain, or "" when err
// carries no APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err carries an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// invalidResult creates the decoder's invalid-result error.
func invalidResult(description string) *APIError {
	return newAPIError(KindInvalidResult, description)
}

// ErrInvalidArgument is the sentinel for caller-side validation failures.
// These are raised before any network call and never carry an APIError.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError provides context for caller-side validation failures.
type ArgumentError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Message)
	}
	return "invalid argument: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// newArgumentError creates an argument error with context.
func newArgumentError(field, message string) error {
	return &ArgumentError{Field: field, Message: message}
}

// IsInvalidArgument checks if an error is a caller-side validation failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// bodyKinds maps the exact error phrases the service puts in response
// bodies to their kinds. Matching is exact after whitespace trimming; body
// text is overloaded across endpoints, which is why status-level signals
// are checked first in classify.
var bodyKinds = map[string]ErrorKind{
	"no free phones":          KindNoFreePhones,
	"not enough user balance": KindBalanceTooLow,
	"not enough rating":       KindRatingTooLow,
	"select country":          KindMissingCountry,
	"select operator":         KindMissingOperator,
	"no product":              KindMissingProduct,
	"bad country":             KindBadCountry,
	"bad operator":            KindBadOperator,
	"country is incorrect":    KindIncorrectCountry,
	"product is incorrect":    KindIncorrectProduct,
	"order not found":         KindOrderNotFound,
	"order expired":           KindOrderExpired,
	"order has sms":           KindOrderHasSMS,
	"order no sms":            KindOrderNoSMS,
	"hosting order":           KindHostingOrder,
	"cancel too early":        KindCancelNeedsTime,
	"record not found":        KindRecordNotFound,
	"server error":            KindServerError,
	"internal error":          KindServerError,
	"server offline":          KindServerOffline,
}

// classify maps an HTTP (status, reason, body) triple to an APIError, or
// nil for a healthy response. Priority order: auth and rate-limit status
// codes outrank body-text matching, because body text is unreliable across
// endpoints. A 200 body that is the literal "no free phones" is still an
// error.
func classify(status int, reason, body string) *APIError {
	trimmed := strings.TrimSpace(body)

	switch status {
	case 401:
		return newAPIError(KindInvalidKey, "API key is invalid")
	case 429:
		return newAPIError(KindRateLimitedByKey, "too many requests for this API key")
	case 503:
		return newAPIError(KindRateLimitedByIP, "too many requests from this address")
	}

	if kind, ok := bodyKinds[trimmed]; ok {
		return newAPIError(kind, trimmed)
	}

	if status == 200 {
		return nil
	}

	return newAPIError(KindOther, fmt.Sprintf("%d%s%s", status, reason, body))
}

// transportError wraps a failure that produced no HTTP response at all.
func transportError(err error) *APIError {
	return &APIError{Kind: KindRequestError, Description: err.Error(), Err: err}
}
