package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"resumecraft_backend/internal/models"
)

var (
	ErrTemplateNotFound = errors.New("resume template not found")
	ErrResumeNotFound   = errors.New("resume not found")
)

type ResumeRepository interface {
	FindTemplateByID(ctx context.Context, id string) (*models.ResumeTemplate, error)
	ListTemplates(ctx context.Context) ([]models.ResumeTemplate, error)

	CreateResume(ctx context.Context, resume *models.Resume) error
	UpdateResume(ctx context.Context, resume *models.Resume) error
	FindResumeByID(ctx context.Context, id string) (*models.Resume, error)
	FindResumesByUser(ctx context.Context, userID string) ([]models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) FindTemplateByID(ctx context.Context, id string) (*models.ResumeTemplate, error) {
	var tpl models.ResumeTemplate
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&tpl, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *resumeRepository) ListTemplates(ctx context.Context) ([]models.ResumeTemplate, error) {
	var tpls []models.ResumeTemplate
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&tpls).Error
	return tpls, err
}

func (r *resumeRepository) CreateResume(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) UpdateResume(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Save(resume).Error
}

func (r *resumeRepository) FindResumeByID(ctx context.Context, id string) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.WithContext(ctx).First(&resume, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepository) FindResumesByUser(ctx context.Context, userID string) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&resumes).Error
	return resumes, err
}
