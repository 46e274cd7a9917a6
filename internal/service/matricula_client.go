package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/academy-billing-api/pkg/config"
)

// MatriculaClient calls the external matricula settlement collaborator. The
// collaborator owns the per-student settlement flag; this client only invokes
// "mark paid" and never reads the flag back.
type MatriculaClient struct {
	cfg    config.MatriculaConfig
	client *http.Client
}

// NewMatriculaClient constructs a matricula client with sane defaults.
func NewMatriculaClient(cfg config.MatriculaConfig) *MatriculaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MatriculaClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// MarkPaid settles the student's matricula fee with the collaborator.
func (c *MatriculaClient) MarkPaid(ctx context.Context, studentID string) error {
	endpoint := fmt.Sprintf("%s/v1/matriculas/%s/paid", c.cfg.BaseURL, url.PathEscape(studentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build matricula request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("matricula settlement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("matricula settlement: unexpected status %d", resp.StatusCode)
	}
	return nil
}
