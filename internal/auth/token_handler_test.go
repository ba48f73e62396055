package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postToken(t *testing.T, service *OAuthService, form url.Values) (*httptest.ResponseRecorder, map[string]interface{}) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/token", service.HandleToken)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func passwordForm(email, password, clientSecret string) url.Values {
	return url.Values{
		"grant_type":    {"password"},
		"client_id":     {"foodhub-web"},
		"client_secret": {clientSecret},
		"username":      {email},
		"password":      {password},
	}
}

func TestPasswordAndRefreshGrant(t *testing.T) {
	service, _, user := setupOAuth(t)

	w, body := postToken(t, service, passwordForm("alice@example.com", "secret123", "web-secret"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Bearer", body["token_type"])
	access, _ := body["access_token"].(string)
	refresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	userID, err := service.ResolveSession(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	w, body = postToken(t, service, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {"foodhub-web"},
		"client_secret": {"web-secret"},
		"refresh_token": {refresh},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	renewed, _ := body["access_token"].(string)
	assert.NotEqual(t, access, renewed)

	// The refreshed pair replaces the old one
	_, err = service.ResolveSession(context.Background(), access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = service.ResolveSession(context.Background(), renewed)
	assert.NoError(t, err)
}

func TestTokenEndpointRejections(t *testing.T) {
	service, db, user := setupOAuth(t)

	testCases := []struct {
		name string
		form url.Values
	}{
		{name: "wrong password", form: passwordForm("alice@example.com", "wrong", "web-secret")},
		{name: "unknown user", form: passwordForm("nobody@example.com", "secret123", "web-secret")},
		{name: "wrong client secret", form: passwordForm("alice@example.com", "secret123", "guess")},
		{name: "unsupported grant", form: url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {"foodhub-web"},
			"client_secret": {"web-secret"},
		}},
		{name: "unknown refresh token", form: url.Values{
			"grant_type":    {"refresh_token"},
			"client_id":     {"foodhub-web"},
			"client_secret": {"web-secret"},
			"refresh_token": {"nope"},
		}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w, body := postToken(t, service, tt.form)
			assert.GreaterOrEqual(t, w.Code, 400)
			assert.Less(t, w.Code, 500)
			assert.NotEmpty(t, body["error"])
		})
	}

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", models.UserStatusBlocked).Error)
	w, body := postToken(t, service, passwordForm("alice@example.com", "secret123", "web-secret"))
	assert.GreaterOrEqual(t, w.Code, 400)
	assert.Less(t, w.Code, 500)
	assert.Equal(t, "access_denied", body["error"])
}

func TestTokenEndpointRequiresForm(t *testing.T) {
	service, _, _ := setupOAuth(t)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/token", service.HandleToken)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(`{"grant_type":"password"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body models.OAuth2Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.ErrInvalidRequest, body.Error)
}
