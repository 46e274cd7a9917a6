package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-billing-api/internal/service"
	"github.com/noah-isme/academy-billing-api/pkg/response"
)

// EnrollmentHandler exposes the read and export surface over enrollments.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	exports     *service.ExportService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, exports *service.ExportService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, exports: exports}
}

// Get godoc
// @Summary Enrollment detail with its invoice ledger
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	ledger, err := h.enrollments.Ledger(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// ExportInvoices godoc
// @Summary Export the invoice ledger as CSV
// @Tags Enrollments
// @Produce text/csv
// @Param id path string true "Enrollment ID"
// @Success 200 {string} string
// @Router /enrollments/{id}/invoices/export [get]
func (h *EnrollmentHandler) ExportInvoices(c *gin.Context) {
	payload, filename, err := h.exports.InvoicesCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}

// Receipt godoc
// @Summary PDF receipt for paid invoices
// @Tags Enrollments
// @Produce application/pdf
// @Param id path string true "Enrollment ID"
// @Success 200 {string} string
// @Router /enrollments/{id}/receipt [get]
func (h *EnrollmentHandler) Receipt(c *gin.Context) {
	payload, filename, err := h.exports.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}
