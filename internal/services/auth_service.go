package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bringalong/internal/config"
	"bringalong/internal/models"
	"bringalong/internal/repositories/interfaces"
	"bringalong/internal/utils"
	"bringalong/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
}

type authService struct {
	userRepo   interfaces.UserRepository
	jwtSecret  string
	tokenTTL   utils.TokenTTL
	bcryptCost int
	logger     *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, security *config.SecurityConfig, log *logger.Logger) AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &authService{
		userRepo:  userRepo,
		jwtSecret: security.JWTSecret,
		tokenTTL: utils.TokenTTL{
			Access:  security.JWTAccessTokenTTL,
			Refresh: security.JWTRefreshTokenTTL,
		},
		bcryptCost: bcrypt.DefaultCost,
		logger:     log,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:              strings.TrimSpace(req.Name),
		Email:             email,
		Password:          string(hashedPassword),
		PreferredCurrency: utils.NormalizeCurrencyCode(req.PreferredCurrency),
		Country:           req.Country,
		Status:            models.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.WithUserID(user.ID).Info("User registered")

	return s.issueTokens(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.WithUserID(user.ID).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}

	now := time.Now()
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"lastLoginAt": now}); err != nil {
		s.logger.WithUserID(user.ID).WithError(err).Warn("Failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	return s.issueTokens(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := utils.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil || claims.TokenType != utils.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}

	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *models.User) (*models.AuthResponse, error) {
	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &models.AuthResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}
