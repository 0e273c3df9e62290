package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/middleware"
	"resumecraft_backend/internal/services"
)

type PaymentHandler struct {
	*BaseHandler
	billingService services.BillingService
}

func NewPaymentHandler(base *BaseHandler, billingService services.BillingService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		billingService: billingService,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/initialize", middleware.AuthMiddleware(), h.InitializePayment)
		// No auth - external gateway callback
		payments.GET("/callback", h.PaymentCallback)
	}
}

type initializePaymentRequest struct {
	DiscountCode string `json:"discount_code" validate:"omitempty,max=64"`
}

func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req initializePaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.billingService.InitializePayment(c.Request.Context(), userID, req.DiscountCode)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": result})
}

func (h *PaymentHandler) PaymentCallback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	if reference == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing payment reference"))
		return
	}

	if err := h.billingService.HandlePaymentCallback(c.Request.Context(), reference); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "reference": reference})
}
