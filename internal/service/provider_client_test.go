package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-billing-api/internal/models"
	"github.com/noah-isme/academy-billing-api/pkg/config"
)

func TestProviderClientGetTransactionStatus(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"APPROVED"}`))
	}))
	defer server.Close()

	client := NewPaymentProviderClient(config.ProviderConfig{BaseURL: server.URL, APIKey: "pk-test"})

	status, err := client.GetTransactionStatus(context.Background(), "txn-123")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusApproved, status)
	assert.Equal(t, "/v1/transactions/txn-123", gotPath)
	assert.Equal(t, "Bearer pk-test", gotAuth)
}

func TestProviderClientRejectsUnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REFUNDED"}`))
	}))
	defer server.Close()

	client := NewPaymentProviderClient(config.ProviderConfig{BaseURL: server.URL})

	_, err := client.GetTransactionStatus(context.Background(), "txn-123")
	assert.Error(t, err)
}

func TestProviderClientRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewPaymentProviderClient(config.ProviderConfig{BaseURL: server.URL})

	_, err := client.GetTransactionStatus(context.Background(), "txn-123")
	assert.Error(t, err)
}

func TestProviderClientRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not-json`))
	}))
	defer server.Close()

	client := NewPaymentProviderClient(config.ProviderConfig{BaseURL: server.URL})

	_, err := client.GetTransactionStatus(context.Background(), "txn-123")
	assert.Error(t, err)
}
