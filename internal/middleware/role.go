package middleware

import (
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that checks if the user has one of the required roles.
// It must run after Authenticate.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			AbortWithError(c, models.NewUnauthorizedError("You are not authorized!"))
			return
		}
		if !hasRole(user.Role, roles) {
			AbortWithError(c, models.NewForbiddenError("Forbidden! You don't have permission to access this resource"))
			return
		}
		c.Next()
	}
}

// RequireApprovedProvider allows providers whose profile exists and whose account is APPROVED
func RequireApprovedProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			AbortWithError(c, models.NewUnauthorizedError("You are not authorized!"))
			return
		}
		if user.Role != models.RoleProvider || user.ProviderProfileID == "" {
			AbortWithError(c, models.NewForbiddenError("Provider profile not found."))
			return
		}
		if user.Status != models.UserStatusApproved {
			AbortWithError(c, models.NewForbiddenError("Access Denied: Your account is not approved by admin."))
			return
		}
		c.Next()
	}
}

// RequireActiveAccount rejects users that are not in good standing
func RequireActiveAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			AbortWithError(c, models.NewUnauthorizedError("You are not authorized!"))
			return
		}
		if !user.Status.InGoodStanding() {
			AbortWithError(c, models.NewForbiddenError("Your account is not active."))
			return
		}
		c.Next()
	}
}
