package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"bringalong/internal/models"
	"bringalong/internal/repositories/interfaces"
	"bringalong/internal/utils"
	"bringalong/pkg/logger"
	"bringalong/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, userID primitive.ObjectID, filename string, file io.Reader) (*models.User, error)
}

type userService struct {
	userRepo interfaces.UserRepository
	storage  storage.StorageProvider
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, storageProvider storage.StorageProvider, log *logger.Logger) UserService {
	if log == nil {
		log = logger.NewNop()
	}
	return &userService{
		userRepo: userRepo,
		storage:  storageProvider,
		logger:   log,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.PreferredCurrency != nil {
		updates["preferredCurrency"] = utils.NormalizeCurrencyCode(*req.PreferredCurrency)
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, userID, updates); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	return s.GetProfile(ctx, userID)
}

// UploadAvatar stores a jpeg or png profile image, scaled down to fit the
// avatar box, and replaces the previous one.
func (s *userService) UploadAvatar(ctx context.Context, userID primitive.ObjectID, filename string, file io.Reader) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !utils.IsImageFile(filename) {
		return nil, ErrInvalidImage
	}

	img, format, err := utils.DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	img = utils.FitImage(img, utils.AvatarMaxWidth, utils.AvatarMaxHeight)

	var buf bytes.Buffer
	if err := utils.EncodeImage(img, format, &buf, utils.AvatarQuality); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	key := utils.GenerateObjectKey("avatars/"+userID.Hex(), "avatar"+ext)

	resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       &buf,
		ContentType:  utils.GetContentType(key),
		Size:         int64(buf.Len()),
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{
		"profileImage":    resp.URL,
		"profileImageKey": resp.Key,
	}); err != nil {
		return nil, err
	}

	if user.ProfileImageKey != "" && user.ProfileImageKey != resp.Key {
		if err := s.storage.Delete(ctx, user.ProfileImageKey); err != nil {
			s.logger.WithUserID(userID).WithError(err).Warn("Failed to delete previous avatar")
		}
	}

	user.ProfileImage = resp.URL
	user.ProfileImageKey = resp.Key
	return user, nil
}
