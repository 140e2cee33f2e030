package handlers

import (
	"net/http"

	"bringalong/internal/models"
	"bringalong/internal/services"
	"bringalong/internal/utils"
	"bringalong/internal/validators"
	"bringalong/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
	logger      *logger.Logger
}

func NewUserHandler(userService services.UserService, log *logger.Logger) *UserHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserHandler{
		userService: userService,
		logger:      log,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !bindJSON(c, &req, validators.ValidateUpdateProfile) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", user)
}

// UploadAvatar accepts a multipart "avatar" file
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxImageSize+1<<20)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		utils.BadRequestResponse(c, "Avatar file is required")
		return
	}
	if fileHeader.Size > utils.MaxImageSize {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", utils.ErrFileTooLarge)
		return
	}
	if !utils.IsImageFile(fileHeader.Filename) {
		utils.BadRequestResponse(c, utils.ErrInvalidFileType)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read avatar file")
		return
	}
	defer file.Close()

	user, err := h.userService.UploadAvatar(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Avatar uploaded successfully", user)
}
