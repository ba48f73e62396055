package auth

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HandleToken handles the OAuth2 token endpoint for the password and refresh_token grants
// @Summary Token Endpoint
// @Description Obtain an access token with the password grant, or exchange a refresh token
// @Tags auth
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: password or refresh_token"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param username formData string false "Email (required for password grant)"
// @Param password formData string false "Password (required for password grant)"
// @Param refresh_token formData string false "Refresh token (required for refresh_token grant)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /api/auth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if c.ContentType() != gin.MIMEPOSTForm {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest,
			"token requests must be sent as application/x-www-form-urlencoded"))
		return
	}

	// The server writes both success and error responses itself
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).Error("Failed to write token response")
	}
}
