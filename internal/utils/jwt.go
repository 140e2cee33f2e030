package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrTokenInvalid = errors.New("invalid token")

type JWTClaims struct {
	UserID    primitive.ObjectID `json:"user_id"`
	Email     string             `json:"email"`
	TokenType string             `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// TokenTTL overrides the default token lifetimes; zero fields keep the defaults.
type TokenTTL struct {
	Access  time.Duration
	Refresh time.Duration
}

func (t TokenTTL) withDefaults() TokenTTL {
	if t.Access <= 0 {
		t.Access = JWTAccessTokenTTL
	}
	if t.Refresh <= 0 {
		t.Refresh = JWTRefreshTokenTTL
	}
	return t
}

func GenerateTokenPair(userID primitive.ObjectID, email, secretKey string, ttl TokenTTL) (*TokenPair, error) {
	ttl = ttl.withDefaults()

	accessToken, err := signToken(userID, email, TokenTypeAccess, ttl.Access, secretKey)
	if err != nil {
		return nil, err
	}

	refreshToken, err := signToken(userID, email, TokenTypeRefresh, ttl.Refresh, secretKey)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(ttl.Access.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func signToken(userID primitive.ObjectID, email, tokenType string, ttl time.Duration, secretKey string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    AppName,
			Subject:   userID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func ValidateToken(tokenString, secretKey string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// RefreshAccessToken issues a new pair from a valid refresh token. Access
// tokens are rejected.
func RefreshAccessToken(refreshTokenString, secretKey string, ttl TokenTTL) (*TokenPair, error) {
	claims, err := ValidateToken(refreshTokenString, secretKey)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrTokenInvalid
	}

	return GenerateTokenPair(claims.UserID, claims.Email, secretKey, ttl)
}
