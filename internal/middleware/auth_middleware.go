package middleware

import (
	"net/http"
	"strings"

	"bringalong/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthRequired middleware validates the access token and sets user context
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			abortUnauthorized(c, "Bearer token required")
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil || claims.TokenType != utils.TokenTypeAccess {
			abortUnauthorized(c, "Invalid token")
			return
		}

		setUserContext(c, claims)
		c.Next()
	}
}

// OptionalAuth sets user context when a valid access token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok {
			claims, err := utils.ValidateToken(tokenString, secret)
			if err == nil && claims.TokenType == utils.TokenTypeAccess {
				setUserContext(c, claims)
			}
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id set by AuthRequired or OptionalAuth
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(utils.ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}

func bearerToken(header string) (string, bool) {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

func setUserContext(c *gin.Context, claims *utils.JWTClaims) {
	c.Set(utils.ContextUserID, claims.UserID)
	c.Set(utils.ContextUserEmail, claims.Email)
}

func abortUnauthorized(c *gin.Context, message string) {
	utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
	c.Abort()
}
