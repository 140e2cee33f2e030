package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name"`
	Email             string             `json:"email" bson:"email"`
	Password          string             `json:"-" bson:"password"`
	ProfileImage      string             `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	ProfileImageKey   string             `json:"-" bson:"profileImageKey,omitempty"`
	PreferredCurrency string             `json:"preferredCurrency,omitempty" bson:"preferredCurrency,omitempty"`
	Country           string             `json:"country,omitempty" bson:"country,omitempty"`
	Status            UserStatus         `json:"status" bson:"status"`
	LastLoginAt       *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Owner() *TripOwner {
	return &TripOwner{
		ID:           u.ID,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
	}
}

type RegisterRequest struct {
	Name              string `json:"name" validate:"required,min=2,max=100"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8,max=128"`
	PreferredCurrency string `json:"preferredCurrency,omitempty" validate:"omitempty,currency_code"`
	Country           string `json:"country,omitempty" validate:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UpdateProfileRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	PreferredCurrency *string `json:"preferredCurrency,omitempty" validate:"omitempty,currency_code"`
	Country           *string `json:"country,omitempty" validate:"omitempty,max=100"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}
