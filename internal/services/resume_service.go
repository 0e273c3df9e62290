package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/logger"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/render"
	"resumecraft_backend/internal/repositories"
)

type CreateResumeRequest struct {
	TemplateID string             `json:"template_id" validate:"required"`
	Title      string             `json:"title" validate:"required,max=200"`
	Data       *models.ResumeData `json:"data" validate:"required"`
}

type UpdateResumeRequest struct {
	TemplateID string             `json:"template_id" validate:"omitempty"`
	Title      string             `json:"title" validate:"omitempty,max=200"`
	Data       *models.ResumeData `json:"data" validate:"omitempty"`
}

type ResumeService interface {
	CreateResume(ctx context.Context, userID string, req *CreateResumeRequest) (*models.Resume, error)
	UpdateResume(ctx context.Context, userID, resumeID string, req *UpdateResumeRequest) (*models.Resume, error)
	GetResume(ctx context.Context, userID, resumeID string) (*models.Resume, error)
	ListResumes(ctx context.Context, userID string) ([]models.Resume, error)
	ListTemplates(ctx context.Context) ([]models.ResumeTemplate, error)
	DownloadResume(ctx context.Context, userID, resumeID string) (*render.ExportResult, error)
}

type resumeService struct {
	resumeRepo       repositories.ResumeRepository
	subscriptionRepo repositories.SubscriptionRepository
	activityRepo     repositories.ActivityRepository
	usageService     UsageService
	exporter         *render.Exporter
}

func NewResumeService(
	resumeRepo repositories.ResumeRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	activityRepo repositories.ActivityRepository,
	usageService UsageService,
	exporter *render.Exporter,
) ResumeService {
	return &resumeService{
		resumeRepo:       resumeRepo,
		subscriptionRepo: subscriptionRepo,
		activityRepo:     activityRepo,
		usageService:     usageService,
		exporter:         exporter,
	}
}

func (s *resumeService) CreateResume(ctx context.Context, userID string, req *CreateResumeRequest) (*models.Resume, error) {
	if _, err := s.resumeRepo.FindTemplateByID(ctx, req.TemplateID); err != nil {
		if apperrors.Is(err, repositories.ErrTemplateNotFound) {
			return nil, apperrors.NotFound("Resume template")
		}
		return nil, err
	}

	raw, err := json.Marshal(req.Data)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid resume data")
	}

	resume := &models.Resume{
		UserID:     userID,
		TemplateID: req.TemplateID,
		Title:      req.Title,
		Data:       datatypes.JSON(raw),
	}
	if err := s.resumeRepo.CreateResume(ctx, resume); err != nil {
		return nil, err
	}
	return resume, nil
}

func (s *resumeService) UpdateResume(ctx context.Context, userID, resumeID string, req *UpdateResumeRequest) (*models.Resume, error) {
	resume, err := s.findOwned(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}

	if req.TemplateID != "" {
		if _, err := s.resumeRepo.FindTemplateByID(ctx, req.TemplateID); err != nil {
			if apperrors.Is(err, repositories.ErrTemplateNotFound) {
				return nil, apperrors.NotFound("Resume template")
			}
			return nil, err
		}
		resume.TemplateID = req.TemplateID
	}
	if req.Title != "" {
		resume.Title = req.Title
	}
	if req.Data != nil {
		raw, err := json.Marshal(req.Data)
		if err != nil {
			return nil, apperrors.NewBadRequestError("invalid resume data")
		}
		resume.Data = datatypes.JSON(raw)
	}

	if err := s.resumeRepo.UpdateResume(ctx, resume); err != nil {
		return nil, err
	}
	return resume, nil
}

func (s *resumeService) GetResume(ctx context.Context, userID, resumeID string) (*models.Resume, error) {
	return s.findOwned(ctx, userID, resumeID)
}

func (s *resumeService) ListResumes(ctx context.Context, userID string) ([]models.Resume, error) {
	return s.resumeRepo.FindResumesByUser(ctx, userID)
}

func (s *resumeService) ListTemplates(ctx context.Context) ([]models.ResumeTemplate, error) {
	return s.resumeRepo.ListTemplates(ctx)
}

// DownloadResume renders the stored resume to a PDF. Free-plan downloads are
// metered and everything short of an active paid subscription (or a one-off
// paid resume) ships with the trial watermark.
func (s *resumeService) DownloadResume(ctx context.Context, userID, resumeID string) (*render.ExportResult, error) {
	resume, err := s.findOwned(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}

	status, err := s.usageService.CheckUsageLimit(ctx, userID, models.FeatureResumesDownloaded)
	if err != nil {
		return nil, err
	}
	if status.Limit >= 0 && status.Current >= status.Limit {
		return nil, apperrors.ErrLimitReached.WithDetails(map[string]interface{}{
			"feature": status.Feature,
			"current": status.Current,
			"limit":   status.Limit,
		})
	}

	tpl, err := s.resumeRepo.FindTemplateByID(ctx, resume.TemplateID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTemplateNotFound) {
			return nil, apperrors.NotFound("Resume template")
		}
		return nil, err
	}

	var data models.ResumeData
	if err := json.Unmarshal(resume.Data, &data); err != nil {
		return nil, apperrors.ErrRenderFailure.WithError(err)
	}

	doc := render.RenderTemplate(tpl.HTML, &data)
	result, err := s.exporter.Export(ctx, doc, resume.Title, s.needsWatermark(ctx, userID, resume))
	if err != nil {
		return nil, err
	}

	if _, err := s.usageService.IncrementUsage(ctx, userID, models.FeatureResumesDownloaded); err != nil {
		logger.CtxError(ctx, "failed to meter download", "user_id", userID, "error", err)
	}

	// Best effort, own error boundary.
	go func() {
		if err := s.activityRepo.Log(context.Background(), userID, models.EventResumeDownloaded, map[string]interface{}{
			"resume_id": resume.ID,
			"filename":  result.Filename,
		}); err != nil {
			logger.Error("failed to log download", "resume_id", resume.ID, "error", err)
		}
	}()

	return result, nil
}

// needsWatermark is false only for a one-off paid resume or an active paid
// professional subscription. Trialing users keep the watermark.
func (s *resumeService) needsWatermark(ctx context.Context, userID string, resume *models.Resume) bool {
	if resume.Paid {
		return false
	}
	sub, err := s.subscriptionRepo.FindByUserID(ctx, userID)
	if err != nil {
		if !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			logger.CtxWarn(ctx, "failed to load subscription for watermark check", "user_id", userID, "error", err)
		}
		return true
	}
	return !(sub.PlanType == models.PlanTypeProfessional &&
		sub.IsActive &&
		sub.Status == models.SubscriptionStatusActive)
}

func (s *resumeService) findOwned(ctx context.Context, userID, resumeID string) (*models.Resume, error) {
	resume, err := s.resumeRepo.FindResumeByID(ctx, resumeID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrResumeNotFound) {
			return nil, apperrors.NotFound("Resume")
		}
		return nil, err
	}
	if resume.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return resume, nil
}
