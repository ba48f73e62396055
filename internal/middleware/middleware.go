package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const currentUserKey = "currentUser"

// SessionResolver turns a bearer token into the id of the user owning the session
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (string, error)
}

// UserLoader loads the identity attached to a request
type UserLoader interface {
	GetCurrentUser(id string) (*models.CurrentUser, error)
}

// Authenticate resolves the session behind the bearer token, loads the user and
// attaches it to the context. Combine with RequireRole to restrict roles.
func Authenticate(sessions SessionResolver, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			AbortWithError(c, models.NewUnauthorizedError("You are not authorized!"))
			return
		}

		userID, err := sessions.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				AbortWithError(c, models.NewInternalError("Failed to resolve session", err))
				return
			}
			log.WithError(err).Debug("Session rejected")
			AbortWithError(c, models.NewUnauthorizedError("You are not authorized!"))
			return
		}

		user, err := users.GetCurrentUser(userID)
		if err != nil {
			if models.HasCode(err, models.ErrNotFound) {
				AbortWithError(c, models.NewUnauthorizedError("You are not authorized!"))
				return
			}
			AbortWithError(c, err)
			return
		}

		if user.Role == models.RoleProvider && user.ProviderProfileID == "" {
			log.WithField("user_id", user.ID).Warn("Provider has no provider profile")
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Authenticate, or nil on public routes
func CurrentUser(c *gin.Context) *models.CurrentUser {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.CurrentUser)
	return user
}

// BearerToken extracts the token from an RFC 6750 Authorization header
func BearerToken(c *gin.Context) string {
	token, _ := bearerToken(c.GetHeader("Authorization"))
	return token
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// AbortWithError writes the standard error body and stops the chain.
// Details of internal errors are only exposed in debug mode.
func AbortWithError(c *gin.Context, err error) {
	appErr, ok := models.AsAppError(err)
	if !ok {
		appErr = models.NewInternalError("Something went wrong", err)
	}

	body := gin.H{
		"success": false,
		"message": appErr.Message,
	}
	if gin.Mode() == gin.DebugMode && appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}
	c.AbortWithStatusJSON(appErr.StatusCode(), body)
}
