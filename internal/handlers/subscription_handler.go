package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumecraft_backend/internal/middleware"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/services"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
	usageService        services.UsageService
}

func NewSubscriptionHandler(
	base *BaseHandler,
	subscriptionService services.SubscriptionService,
	usageService services.UsageService,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
		usageService:        usageService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(middleware.AuthMiddleware())
	{
		subscriptions.GET("/my", h.GetMySubscription)
		subscriptions.POST("/trial", h.StartTrial)
	}

	usage := r.Group("/usage")
	usage.Use(middleware.AuthMiddleware())
	{
		usage.GET("/check", h.CheckUsage)
	}

	admin := r.Group("/admin/subscriptions")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.POST("/process-expired-trials", h.ProcessExpiredTrials)
		admin.POST("/process-expired", h.ProcessExpiredSubscriptions)
		admin.POST("/notify-expiring", h.NotifyExpiringSoon)
	}
}

func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetUserSubscription(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

func (h *SubscriptionHandler) StartTrial(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	trial, err := h.subscriptionService.CreateTrialSubscription(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trial": trial})
}

type checkUsageRequest struct {
	Feature string `form:"feature" validate:"required"`
}

func (h *SubscriptionHandler) CheckUsage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req checkUsageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	status, err := h.usageService.CheckUsageLimit(c.Request.Context(), userID, req.Feature)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	allowed := status.Limit < 0 || status.Current < status.Limit
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"allowed": allowed,
	})
}

// Admin sweep triggers mirror what the background worker does on its own
// schedule; they exist so support can run a sweep on demand.

func (h *SubscriptionHandler) ProcessExpiredTrials(c *gin.Context) {
	result, err := h.subscriptionService.HandleExpiredTrials(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *SubscriptionHandler) ProcessExpiredSubscriptions(c *gin.Context) {
	result, err := h.subscriptionService.ProcessExpiredSubscriptions(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *SubscriptionHandler) NotifyExpiringSoon(c *gin.Context) {
	result, err := h.subscriptionService.NotifyExpiringSoon(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
