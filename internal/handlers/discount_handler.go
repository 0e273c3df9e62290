package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"resumecraft_backend/internal/middleware"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/services"
)

type DiscountHandler struct {
	*BaseHandler
	discountService services.DiscountService
}

func NewDiscountHandler(base *BaseHandler, discountService services.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		BaseHandler:     base,
		discountService: discountService,
	}
}

func (h *DiscountHandler) RegisterRoutes(r *gin.RouterGroup) {
	discounts := r.Group("/discounts")
	discounts.Use(middleware.AuthMiddleware())
	{
		discounts.POST("/validate", h.ValidateCode)
	}

	admin := r.Group("/admin/discounts")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("", h.ListCodes)
		admin.POST("", h.CreateCode)
		admin.PUT("/:codeId", h.UpdateCode)
		admin.DELETE("/:codeId", h.DeleteCode)
	}
}

type validateCodeRequest struct {
	Code     string `json:"code" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	PlanType string `json:"plan_type" validate:"omitempty,oneof=free professional"`
}

// ValidateCode is the dry-run endpoint: it prices a code against an amount
// without redeeming anything.
func (h *DiscountHandler) ValidateCode(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req validateCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	planType := models.PlanType(req.PlanType)
	if planType == "" {
		planType = models.PlanTypeProfessional
	}

	discount, err := h.discountService.ValidateDiscount(c.Request.Context(), req.Code, userID, req.Amount, planType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	breakdown := h.discountService.CalculateDiscountAmount(req.Amount, discount)
	c.JSON(http.StatusOK, gin.H{
		"code":      discount.Code,
		"kind":      discount.Kind,
		"breakdown": breakdown,
	})
}

type discountCodeRequest struct {
	Code         string    `json:"code" validate:"required,max=64"`
	Kind         string    `json:"kind" validate:"required,oneof=percentage fixed_amount"`
	Value        float64   `json:"value" validate:"required,gt=0"`
	PlanTypes    []string  `json:"plan_types" validate:"dive,oneof=free professional"`
	PerUserLimit int       `json:"per_user_limit" validate:"gte=0"`
	GlobalLimit  int       `json:"global_limit" validate:"gte=0"`
	ValidFrom    time.Time `json:"valid_from" validate:"required"`
	ValidUntil   time.Time `json:"valid_until" validate:"required"`
	IsActive     *bool     `json:"is_active"`
}

func (r *discountCodeRequest) toModel() (*models.DiscountCode, error) {
	planTypes, err := json.Marshal(r.PlanTypes)
	if err != nil {
		return nil, err
	}
	code := &models.DiscountCode{
		Code:         r.Code,
		Kind:         models.DiscountKind(r.Kind),
		Value:        r.Value,
		PlanTypes:    datatypes.JSON(planTypes),
		PerUserLimit: r.PerUserLimit,
		GlobalLimit:  r.GlobalLimit,
		ValidFrom:    r.ValidFrom,
		ValidUntil:   r.ValidUntil,
		IsActive:     true,
	}
	if r.IsActive != nil {
		code.IsActive = *r.IsActive
	}
	return code, nil
}

func (h *DiscountHandler) ListCodes(c *gin.Context) {
	codes, err := h.discountService.ListCodes(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"codes": codes,
		"total": len(codes),
	})
}

func (h *DiscountHandler) CreateCode(c *gin.Context) {
	var req discountCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	code, err := req.toModel()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.discountService.CreateCode(c.Request.Context(), code); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"code": code})
}

func (h *DiscountHandler) UpdateCode(c *gin.Context) {
	var req discountCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	code, err := req.toModel()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	code.ID = c.Param("codeId")

	if err := h.discountService.UpdateCode(c.Request.Context(), code); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (h *DiscountHandler) DeleteCode(c *gin.Context) {
	if err := h.discountService.DeleteCode(c.Request.Context(), c.Param("codeId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
