package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumecraft_backend/internal/middleware"
	"resumecraft_backend/internal/services"
)

type ResumeHandler struct {
	*BaseHandler
	resumeService   services.ResumeService
	downloadLimiter gin.HandlerFunc
}

func NewResumeHandler(base *BaseHandler, resumeService services.ResumeService, downloadLimiter gin.HandlerFunc) *ResumeHandler {
	return &ResumeHandler{
		BaseHandler:     base,
		resumeService:   resumeService,
		downloadLimiter: downloadLimiter,
	}
}

func (h *ResumeHandler) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.GET("", h.ListTemplates)
	}

	resumes := r.Group("/resumes")
	resumes.Use(middleware.AuthMiddleware())
	{
		resumes.POST("", h.CreateResume)
		resumes.GET("", h.ListResumes)
		resumes.GET("/:resumeId", h.GetResume)
		resumes.PUT("/:resumeId", h.UpdateResume)
		resumes.POST("/:resumeId/download", h.downloadLimiter, h.DownloadResume)
	}
}

func (h *ResumeHandler) ListTemplates(c *gin.Context) {
	templates, err := h.resumeService.ListTemplates(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req services.CreateResumeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resume, err := h.resumeService.CreateResume(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"resume": resume})
}

func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resumes, err := h.resumeService.ListResumes(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resumes": resumes,
		"total":   len(resumes),
	})
}

func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resume, err := h.resumeService.GetResume(c.Request.Context(), userID, c.Param("resumeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resume": resume})
}

func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req services.UpdateResumeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resume, err := h.resumeService.UpdateResume(c.Request.Context(), userID, c.Param("resumeId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resume": resume})
}

func (h *ResumeHandler) DownloadResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	result, err := h.resumeService.DownloadResume(c.Request.Context(), userID, c.Param("resumeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"download": result})
}
