package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	brokerErr := &BrokerError{Type: "InputException", Message: "Insufficient funds"}

	testCases := []struct {
		desc     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"service unavailable", NewServiceUnavailable("broker not configured"), http.StatusServiceUnavailable},
		{"unauthenticated", NewUnauthenticated("no token"), http.StatusForbidden},
		{"upstream", NewUpstream("quote failed", errors.New("timeout")), http.StatusBadGateway},
		{"bad request", NewBadRequest("quantity must be positive", nil), http.StatusBadRequest},
		{"misconfiguration", NewMisconfiguration("universe file missing", nil), http.StatusInternalServerError},
		{"wrapped bad request", fmt.Errorf("place order: %w", NewBadRequest("rejected", brokerErr)), http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusCode(tc.err))
		})
	}
}

func TestUpstreamFailure(t *testing.T) {
	tokenErr := &BrokerError{Type: "TokenException", Message: "Incorrect api_key or access_token"}
	assert.Equal(t, http.StatusForbidden, StatusCode(UpstreamFailure("quote", tokenErr)))

	netErr := &BrokerError{Type: "NetworkException", Message: "dial tcp: timeout", Transport: true}
	err := UpstreamFailure("quote", netErr)
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	assert.ErrorIs(t, err, netErr)
}

func TestPublicMessage(t *testing.T) {
	brokerErr := &BrokerError{Type: "InputException", Message: "Insufficient funds"}
	assert.Equal(t, "Insufficient funds", PublicMessage(NewBadRequest("order rejected", brokerErr)))
	assert.Equal(t, "unknown symbol", PublicMessage(NewBadRequest("unknown symbol", nil)))
	assert.Equal(t, "quote failed: boom", PublicMessage(NewUpstream("quote failed", errors.New("boom"))))
}
