package handlers

import (
	"bringalong/internal/models"
	"bringalong/internal/services"
	"bringalong/internal/utils"
	"bringalong/internal/validators"
	"bringalong/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	logger      *logger.Logger
}

func NewAuthHandler(authService services.AuthService, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		logger:      log,
	}
}

// Register creates an account and returns a token pair
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req, validators.ValidateRegistration) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Registration successful", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, validators.ValidateLogin) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req, validators.ValidateRefreshToken) {
		return
	}

	response, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Token refreshed successfully", response)
}
