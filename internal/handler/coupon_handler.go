package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-billing-api/internal/service"
	appErrors "github.com/noah-isme/academy-billing-api/pkg/errors"
	"github.com/noah-isme/academy-billing-api/pkg/response"
)

// CouponHandler exposes discount coupon administration.
type CouponHandler struct {
	coupons *service.CouponService
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(coupons *service.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Get godoc
// @Summary Look a coupon up by code
// @Tags Coupons
// @Produce json
// @Param code path string true "Coupon code (case-insensitive)"
// @Success 200 {object} response.Envelope
// @Router /coupons/{code} [get]
func (h *CouponHandler) Get(c *gin.Context) {
	coupon, err := h.coupons.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coupon, nil)
}

// Create godoc
// @Summary Create a coupon
// @Tags Coupons
// @Accept json
// @Produce json
// @Param payload body service.CreateCouponRequest true "Coupon payload"
// @Success 201 {object} response.Envelope
// @Router /coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	var req service.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	coupon, err := h.coupons.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, coupon)
}
