package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated caller as issued by the identity provider
type UserContext struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, ok := authenticate(c, jwtService, logger)
		if !ok {
			c.Abort()
			return
		}

		c.Set(UserContextKey, userCtx)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through untouched.
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1])); err == nil {
				c.Set(UserContextKey, UserContext{UserID: claims.UserID, Name: claims.Name, Email: claims.Email})
			}
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *jwt.Service, logger *logrus.Logger) (UserContext, bool) {
	fields := logrus.Fields{"path": c.Request.URL.Path, "ip": c.ClientIP()}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		logger.WithFields(fields).Warn("Auth failed: missing authorization header")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authorization header is required",
			"code":    "MISSING_AUTH_HEADER",
		})
		return UserContext{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		logger.WithFields(fields).Warn("Auth failed: invalid authorization format")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Invalid authorization header format. Expected: Bearer <token>",
			"code":    "INVALID_AUTH_FORMAT",
		})
		return UserContext{}, false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		logger.WithFields(fields).Warn("Auth failed: empty token")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Token cannot be empty",
			"code":    "INVALID_AUTH_FORMAT",
		})
		return UserContext{}, false
	}

	claims, err := jwtService.ValidateToken(tokenString)
	if err != nil {
		if jwtService.IsTokenExpired(tokenString) {
			logger.WithFields(fields).WithError(err).Warn("Auth failed: token expired")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "token_expired",
				"message": "Session has expired. Please sign in again.",
				"code":    "TOKEN_EXPIRED",
			})
		} else {
			logger.WithFields(fields).WithError(err).Warn("Auth failed: invalid token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Invalid session token",
				"code":    "INVALID_TOKEN",
			})
		}
		return UserContext{}, false
	}

	return UserContext{UserID: claims.UserID, Name: claims.Name, Email: claims.Email}, true
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok || userCtx.UserID == "" {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}
