package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/auth"
	"resumecraft_backend/internal/email"
	"resumecraft_backend/internal/logger"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/repositories"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, name, emailAddr, password string) (*models.User, *TokenPair, error)
	Login(ctx context.Context, emailAddr, password string) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authService struct {
	userRepo            repositories.UserRepository
	subscriptionService SubscriptionService
	emailProvider       email.Provider
}

func NewAuthService(
	userRepo repositories.UserRepository,
	subscriptionService SubscriptionService,
	emailProvider email.Provider,
) AuthService {
	return &authService{
		userRepo:            userRepo,
		subscriptionService: subscriptionService,
		emailProvider:       emailProvider,
	}
}

func (s *authService) Register(ctx context.Context, name, emailAddr, password string) (*models.User, *TokenPair, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, nil, apperrors.NewBadRequestError(err.Error())
	}

	if _, err := s.userRepo.FindByEmail(ctx, emailAddr); err == nil {
		return nil, nil, apperrors.ErrEmailAlreadyExists
	} else if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         models.UserRoleMember,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	if err := s.subscriptionService.EnsureFreeSubscription(ctx, user.ID); err != nil {
		logger.CtxError(ctx, "failed to seed free subscription", "user_id", user.ID, "error", err)
	}

	// Best effort, own error boundary.
	go func() {
		if err := s.emailProvider.SendWelcome(user.Email, user.Name); err != nil {
			logger.Warn("failed to send welcome email", "user_id", user.ID, "error", err)
		}
	}()

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, emailAddr, password string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		logger.CtxWarn(ctx, "failed to rotate refresh token", "user_id", user.ID, "error", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	if err := s.userRepo.CreateRefreshToken(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
