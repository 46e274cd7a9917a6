package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/academy-billing-api/internal/models"
	"github.com/noah-isme/academy-billing-api/pkg/config"
)

// PaymentProviderClient calls the external payment provider's transaction
// status API.
type PaymentProviderClient struct {
	cfg    config.ProviderConfig
	client *http.Client
}

// NewPaymentProviderClient constructs a provider client with sane defaults.
func NewPaymentProviderClient(cfg config.ProviderConfig) *PaymentProviderClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PaymentProviderClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type transactionStatusResponse struct {
	Status string `json:"status"`
}

// GetTransactionStatus fetches the provider's status for a payment reference.
// Unknown statuses are reported as errors so the resolver can apply its
// fallback policy.
func (c *PaymentProviderClient) GetTransactionStatus(ctx context.Context, reference string) (models.TransactionStatus, error) {
	endpoint := fmt.Sprintf("%s/v1/transactions/%s", c.cfg.BaseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider status lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("provider status lookup: unexpected status %d", resp.StatusCode)
	}

	var payload transactionStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode provider status: %w", err)
	}

	switch status := models.TransactionStatus(payload.Status); status {
	case models.TransactionStatusApproved, models.TransactionStatusPending, models.TransactionStatusDeclined, models.TransactionStatusError:
		return status, nil
	default:
		return "", fmt.Errorf("provider returned unknown status %q", payload.Status)
	}
}
