package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions map[string]string

func (f fakeSessions) ResolveSession(_ context.Context, token string) (string, error) {
	if token == "broken-store" {
		return "", errors.New("connection refused")
	}
	userID, ok := f[token]
	if !ok {
		return "", auth.ErrInvalidToken
	}
	return userID, nil
}

type fakeUsers map[string]*models.CurrentUser

func (f fakeUsers) GetCurrentUser(id string) (*models.CurrentUser, error) {
	user, ok := f[id]
	if !ok {
		return nil, models.NewNotFoundError("User not found")
	}
	return user, nil
}

var (
	testSessions = fakeSessions{
		"customer-token": "customer",
		"provider-token": "provider",
		"pending-token":  "pending",
		"admin-token":    "admin",
		"blocked-token":  "blocked",
		"ghost-token":    "ghost",
	}
	testUsers = fakeUsers{
		"customer": {ID: "customer", Role: models.RoleCustomer, Status: models.UserStatusApproved},
		"provider": {ID: "provider", Role: models.RoleProvider, Status: models.UserStatusApproved, ProviderProfileID: "profile-1"},
		"pending":  {ID: "pending", Role: models.RoleProvider, Status: models.UserStatusPending, ProviderProfileID: "profile-2"},
		"admin":    {ID: "admin", Role: models.RoleAdmin, Status: models.UserStatusApproved},
		"blocked":  {ID: "blocked", Role: models.RoleCustomer, Status: models.UserStatusBlocked},
	}
)

func perform(t *testing.T, router *gin.Engine, method, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": CurrentUser(c)})
	})
	router.GET("/resource", handlers...)
	return router
}

func TestAuthenticate(t *testing.T) {
	router := newTestRouter(Authenticate(testSessions, testUsers))

	testCases := []struct {
		name   string
		token  string
		header string
		status int
	}{
		{name: "no header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "unknown token", token: "forged", status: http.StatusUnauthorized},
		{name: "deleted user", token: "ghost-token", status: http.StatusUnauthorized},
		{name: "store failure", token: "broken-store", status: http.StatusInternalServerError},
		{name: "valid", token: "customer-token", status: http.StatusOK},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/resource", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			} else if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status == http.StatusOK, body["success"])
		})
	}
}

func TestAuthenticateAttachesUser(t *testing.T) {
	router := newTestRouter(Authenticate(testSessions, testUsers))

	w, body := perform(t, router, http.MethodGet, "/resource", "provider-token")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "provider", data["id"])
	assert.Equal(t, "profile-1", data["providerProfileId"])
}

func TestAuthenticateWithRequiredRole(t *testing.T) {
	router := newTestRouter(Authenticate(testSessions, testUsers), RequireRole(models.RoleAdmin))

	w, body := perform(t, router, http.MethodGet, "/resource", "customer-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])

	w, _ = perform(t, router, http.MethodGet, "/resource", "admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := newTestRouter(Authenticate(testSessions, testUsers), RequireRole(models.RoleAdmin, models.RoleProvider))

	for token, status := range map[string]int{
		"admin-token":    http.StatusOK,
		"provider-token": http.StatusOK,
		"customer-token": http.StatusForbidden,
	} {
		w, _ := perform(t, router, http.MethodGet, "/resource", token)
		assert.Equal(t, status, w.Code, token)
	}

	unauthenticated := newTestRouter(RequireRole(models.RoleAdmin))
	w, _ := perform(t, unauthenticated, http.MethodGet, "/resource", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireApprovedProvider(t *testing.T) {
	router := newTestRouter(Authenticate(testSessions, testUsers), RequireApprovedProvider())

	w, _ := perform(t, router, http.MethodGet, "/resource", "provider-token")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := perform(t, router, http.MethodGet, "/resource", "pending-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, body["message"], "not approved")

	w, _ = perform(t, router, http.MethodGet, "/resource", "customer-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireActiveAccount(t *testing.T) {
	router := newTestRouter(Authenticate(testSessions, testUsers), RequireActiveAccount())

	w, _ := perform(t, router, http.MethodGet, "/resource", "customer-token")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := perform(t, router, http.MethodGet, "/resource", "blocked-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Your account is not active.", body["message"])
}

func TestAbortWithErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, errors.New("pq: relation does not exist"))
	})

	w, body := perform(t, router, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong", body["message"])
	assert.NotContains(t, body, "error")
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	router := newTestRouter(limiter.Handler())

	for i := 0; i < 2; i++ {
		w, _ := perform(t, router, http.MethodGet, "/resource", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w, body := perform(t, router, http.MethodGet, "/resource", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestCORS(t *testing.T) {
	router := newTestRouter(CORS([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
