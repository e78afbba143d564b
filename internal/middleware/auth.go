package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/task-manager-api/internal/auth"
	"github.com/taskhub/task-manager-api/internal/constants"
	apierrors "github.com/taskhub/task-manager-api/internal/errors"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/services"
)

// RequireAuth authenticates the request from its bearer token. The
// subject user is loaded and stored in the context; inactive accounts
// are rejected here so every protected route re-checks the flag, not
// only login.
func RequireAuth(tokens *auth.TokenManager, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, constants.BearerPrefix) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, err := tokens.Verify(strings.TrimPrefix(header, constants.BearerPrefix))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				apierrors.Unauthorized(c, "Token has expired")
			} else {
				apierrors.Unauthorized(c, "Could not validate credentials")
			}
			c.Abort()
			return
		}

		user, err := authService.GetUser(userID)
		if err != nil {
			apierrors.Unauthorized(c, "Could not validate credentials")
			c.Abort()
			return
		}

		if !user.IsActive {
			apierrors.Forbidden(c, "Inactive user")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin rejects requests whose authenticated user is not an
// administrator. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsAdmin {
			apierrors.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, false
	}
	return user, true
}
