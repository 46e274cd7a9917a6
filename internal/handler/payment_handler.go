package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-billing-api/internal/dto"
	"github.com/noah-isme/academy-billing-api/internal/service"
	"github.com/noah-isme/academy-billing-api/pkg/response"
)

// PaymentHandler exposes the payment confirmation endpoint the buyer's
// browser lands on after the provider redirect.
type PaymentHandler struct {
	reconciliation *service.ReconciliationService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(reconciliation *service.ReconciliationService) *PaymentHandler {
	return &PaymentHandler{reconciliation: reconciliation}
}

// Confirm godoc
// @Summary Reconcile a payment confirmation
// @Tags Payments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/confirmation/{enrollmentId} [get]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	result, err := h.reconciliation.Confirm(c.Request.Context(), c.Param("enrollmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewConfirmationResponse(result), nil)
}
