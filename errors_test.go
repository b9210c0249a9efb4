package fivesim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason string
		body   string
		kind   ErrorKind
	}{
		{"unauthorized", 401, "Unauthorized", "", KindInvalidKey},
		{"unauthorized outranks body", 401, "Unauthorized", "no free phones", KindInvalidKey},
		{"key rate limit", 429, "Too Many Requests", "", KindRateLimitedByKey},
		{"ip rate limit", 503, "Service Unavailable", "", KindRateLimitedByIP},
		{"ip rate limit outranks body", 503, "Service Unavailable", "server offline", KindRateLimitedByIP},
		{"no free phones on 200", 200, "OK", "no free phones", KindNoFreePhones},
		{"balance", 400, "Bad Request", "not enough user balance", KindBalanceTooLow},
		{"rating", 400, "Bad Request", "not enough rating", KindRatingTooLow},
		{"missing country", 400, "Bad Request", "select country", KindMissingCountry},
		{"missing operator", 400, "Bad Request", "select operator", KindMissingOperator},
		{"missing product", 400, "Bad Request", "no product", KindMissingProduct},
		{"bad country", 400, "Bad Request", "bad country", KindBadCountry},
		{"bad operator", 400, "Bad Request", "bad operator", KindBadOperator},
		{"incorrect country", 400, "Bad Request", "country is incorrect", KindIncorrectCountry},
		{"incorrect product", 400, "Bad Request", "product is incorrect", KindIncorrectProduct},
		{"order not found", 404, "Not Found", "order not found", KindOrderNotFound},
		{"order expired", 400, "Bad Request", "order expired", KindOrderExpired},
		{"order has sms", 400, "Bad Request", "order has sms", KindOrderHasSMS},
		{"order no sms", 400, "Bad Request", "order no sms", KindOrderNoSMS},
		{"hosting order", 400, "Bad Request", "hosting order", KindHostingOrder},
		{"cancel too early", 400, "Bad Request", "cancel too early", KindCancelNeedsTime},
		{"record not found", 404, "Not Found", "record not found", KindRecordNotFound},
		{"server error", 500, "Internal Server Error", "server error", KindServerError},
		{"internal error", 500, "Internal Server Error", "internal error", KindServerError},
		{"server offline", 500, "Internal Server Error", "server offline", KindServerOffline},
		{"body whitespace trimmed", 400, "Bad Request", "  no free phones\n", KindNoFreePhones},
		{"unknown 400", 400, "Bad Request", "something new", KindOther},
		{"unknown 500", 500, "Internal Server Error", "boom", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.status, tt.reason, tt.body)
			require.NotNil(t, err)
			assert.Equal(t, tt.kind, err.Kind)
		})
	}
}

func TestClassify_HealthyResponse(t *testing.T) {
	assert.Nil(t, classify(200, "OK", `{"id": 1}`))
	assert.Nil(t, classify(200, "OK", ""))
}

func TestClassify_OtherCarriesStatusLine(t *testing.T) {
	err := classify(502, "Bad Gateway", "upstream broke")
	require.NotNil(t, err)
	assert.Equal(t, KindOther, err.Kind)
	assert.Equal(t, "502Bad Gatewayupstream broke", err.Description)
}

func TestAPIError_ErrorAndUnwrap(t *testing.T) {
	wrapped := errors.New("connection reset")
	err := &APIError{Kind: KindRequestError, Description: "request failed", Err: wrapped}

	assert.Contains(t, err.Error(), "request_error")
	assert.Contains(t, err.Error(), "request failed")
	assert.ErrorIs(t, err, wrapped)
}

func TestKindOf(t *testing.T) {
	err := newAPIError(KindNoFreePhones, "no free phones")

	assert.Equal(t, KindNoFreePhones, KindOf(err))
	assert.Equal(t, KindNoFreePhones, KindOf(fmt.Errorf("buying number: %w", err)))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestIsKind(t *testing.T) {
	err := newAPIError(KindOrderExpired, "order expired")

	assert.True(t, IsKind(err, KindOrderExpired))
	assert.False(t, IsKind(err, KindOrderNotFound))
}

func TestArgumentError(t *testing.T) {
	err := newArgumentError("forwarding_number", "must be exactly 11 digits")

	assert.True(t, IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "forwarding_number")
	assert.Contains(t, err.Error(), "must be exactly 11 digits")

	assert.False(t, IsInvalidArgument(newAPIError(KindOther, "x")))
	assert.False(t, IsInvalidArgument(nil))
}

func TestTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := transportError(cause)

	assert.Equal(t, KindRequestError, err.Kind)
	assert.ErrorIs(t, err, cause)
}
