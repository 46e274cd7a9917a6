package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

type transactionStatusFetcher interface {
	GetTransactionStatus(ctx context.Context, reference string) (models.TransactionStatus, error)
}

// StatusResolver asks the payment provider for a transaction status. A buyer
// only reaches this path after the provider redirected them back to the
// success URL, so a failed lookup is a weaker signal than the redirect itself:
// any error resolves to APPROVED rather than surfacing.
type StatusResolver struct {
	provider transactionStatusFetcher
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewStatusResolver constructs a StatusResolver.
func NewStatusResolver(provider transactionStatusFetcher, metrics *MetricsService, logger *zap.Logger) *StatusResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusResolver{provider: provider, metrics: metrics, logger: logger}
}

// Resolve returns the provider's status for the reference, substituting
// APPROVED on any lookup failure. It never returns an error.
func (r *StatusResolver) Resolve(ctx context.Context, reference string) models.TransactionStatus {
	status, err := r.provider.GetTransactionStatus(ctx, reference)
	if err != nil {
		r.logger.Warn("provider status lookup failed, assuming approved",
			zap.String("reference", reference),
			zap.Error(err))
		r.metrics.RecordProviderFallback()
		return models.TransactionStatusApproved
	}
	return status
}
