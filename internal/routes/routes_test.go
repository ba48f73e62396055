package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/database"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@foodhub.com"
	adminPassword = "admin-password"

	defaultWait = 2 * time.Second
	defaultTick = 10 * time.Millisecond
)

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	users := services.NewUserService(db)
	_, err = users.EnsureAdmin("Admin", adminEmail, adminPassword)
	require.NoError(t, err)

	oauth := auth.NewOAuthService(db, users, auth.Options{
		JWTSecret:    "routes-test-secret-32-characters!",
		ClientID:     "foodhub-web",
		ClientSecret: "web-secret",
	})
	require.NoError(t, oauth.EnsureClient(context.Background()))

	worker := services.NewRatingWorker(services.NewRatingService(db), 8)
	worker.Start(context.Background())
	t.Cleanup(worker.Close)

	images, err := storage.NewLocalImageStore(t.TempDir(), 0)
	require.NoError(t, err)

	router, err := NewRouter(Dependencies{
		DB:             db,
		OAuth:          oauth,
		Ratings:        worker,
		Images:         images,
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
	require.NoError(t, err)
	return &testApp{router: router, db: db}
}

func (a *testApp) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func (a *testApp) do(t *testing.T, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return a.serve(t, req, token)
}

func (a *testApp) signIn(t *testing.T, email, password string) string {
	w, body := a.do(t, http.MethodPost, "/api/auth/sign-in", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := body["data"].(map[string]interface{})["token"].(map[string]interface{})
	return token["access_token"].(string)
}

// signUp registers an account and returns its token and, for providers, the profile id
func (a *testApp) signUp(t *testing.T, payload gin.H) (string, string) {
	w, body := a.do(t, http.MethodPost, "/api/auth/sign-up", "", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	profileID := ""
	if profile, ok := body["data"].(map[string]interface{})["profile"].(map[string]interface{}); ok {
		profileID = profile["id"].(string)
	}
	return a.signIn(t, payload["email"].(string), payload["password"].(string)), profileID
}

// approvedProvider signs up a provider and lets the admin approve it
func (a *testApp) approvedProvider(t *testing.T, email string) string {
	token, profileID := a.signUp(t, gin.H{
		"name": "Chef", "email": email, "password": "secret123", "role": "PROVIDER", "restaurantName": "Chef's Table",
	})
	w, _ := a.do(t, http.MethodPatch, "/api/admin/providers/approve/"+profileID, a.signIn(t, adminEmail, adminPassword), gin.H{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return token
}

func dataOf(body map[string]interface{}) map[string]interface{} {
	return body["data"].(map[string]interface{})
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupApp(t)

	w, body := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	w, _ = app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodhub_http_requests_total")
}

func TestSessionLifecycle(t *testing.T) {
	app := setupApp(t)

	token, _ := app.signUp(t, gin.H{"name": "Carol", "email": "Carol@Example.com", "password": "secret123"})

	w, body := app.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "carol@example.com", dataOf(body)["email"])
	assert.Equal(t, "CUSTOMER", dataOf(body)["role"])

	w, _ = app.do(t, http.MethodPost, "/api/auth/sign-out", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = app.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestSignUpRejections(t *testing.T) {
	app := setupApp(t)
	app.signUp(t, gin.H{"name": "Dan", "email": "dan@example.com", "password": "secret123"})

	testCases := []struct {
		name    string
		payload gin.H
	}{
		{name: "duplicate email", payload: gin.H{"name": "Dan", "email": "DAN@example.com", "password": "secret123"}},
		{name: "short password", payload: gin.H{"name": "Eve", "email": "eve@example.com", "password": "123"}},
		{name: "admin role", payload: gin.H{"name": "Eve", "email": "eve@example.com", "password": "secret123", "role": "ADMIN"}},
		{name: "unknown role", payload: gin.H{"name": "Eve", "email": "eve@example.com", "password": "secret123", "role": "CHEF"}},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w, body := app.do(t, http.MethodPost, "/api/auth/sign-up", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, body["success"])
		})
	}

	w, _ := app.do(t, http.MethodPost, "/api/auth/sign-in", "", gin.H{"email": "dan@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPendingProviderCannotManageMeals(t *testing.T) {
	app := setupApp(t)
	token, _ := app.signUp(t, gin.H{"name": "Pat", "email": "pat@example.com", "password": "secret123", "role": "PROVIDER"})

	w, body := app.do(t, http.MethodPost, "/api/meals", token, gin.H{"name": "Soup", "price": 5, "category": "Starters"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access Denied: Your account is not approved by admin.", body["message"])

	w, _ = app.do(t, http.MethodPatch, "/api/meals/any-id", token, gin.H{"name": "Broth"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	customer, _ := app.signUp(t, gin.H{"name": "Cus", "email": "cus@example.com", "password": "secret123"})
	w, _ = app.do(t, http.MethodPost, "/api/meals", customer, gin.H{"name": "Soup", "price": 5, "category": "Starters"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCategoryMutationsRequireAdmin(t *testing.T) {
	app := setupApp(t)
	customer, _ := app.signUp(t, gin.H{"name": "Cus", "email": "cus@example.com", "password": "secret123"})

	w, _ := app.do(t, http.MethodPost, "/api/categories", "", gin.H{"name": "Desserts"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/categories", customer, gin.H{"name": "Desserts"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := app.signIn(t, adminEmail, adminPassword)
	w, body := app.do(t, http.MethodPost, "/api/categories", admin, gin.H{"name": "Sweet Desserts"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "sweet-desserts", dataOf(body)["slug"])
	categoryID := dataOf(body)["id"].(string)

	w, body = app.do(t, http.MethodPatch, "/api/categories/"+categoryID, admin, gin.H{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "APPROVED", dataOf(body)["status"])
	assert.Equal(t, "Sweet Desserts", dataOf(body)["name"])

	w, _ = app.do(t, http.MethodPatch, "/api/categories/"+categoryID, admin, gin.H{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = app.do(t, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)
}

func TestOrderLifecycle(t *testing.T) {
	app := setupApp(t)
	provider := app.approvedProvider(t, "chef@example.com")
	customer, _ := app.signUp(t, gin.H{"name": "Cus", "email": "cus@example.com", "password": "secret123"})

	w, body := app.do(t, http.MethodPost, "/api/meals", provider, gin.H{"name": "Burger", "price": "12.99", "category": "Burgers"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mealID := dataOf(body)["id"].(string)

	w, _ = app.do(t, http.MethodPost, "/api/orders", provider, gin.H{"mealId": mealID, "quantity": 1, "address": "1 Main St"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = app.do(t, http.MethodPost, "/api/orders", customer, gin.H{"mealId": mealID, "quantity": 2, "address": "1 Main St"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Order placed successfully!", body["message"])
	orderID := dataOf(body)["id"].(string)
	assert.InDelta(t, 25.98, dataOf(body)["totalPrice"], 0.0001)

	w, _ = app.do(t, http.MethodGet, "/api/orders/success", customer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", customer, gin.H{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", provider, gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = app.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", provider, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CONFIRMED", dataOf(body)["status"])

	w, _ = app.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", provider, gin.H{"status": "DELIVERED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, token := range []string{customer, provider, app.signIn(t, adminEmail, adminPassword)} {
		w, body = app.do(t, http.MethodGet, "/api/orders", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["data"], 1)
	}

	stranger, _ := app.signUp(t, gin.H{"name": "Other", "email": "other@example.com", "password": "secret123"})
	w, _ = app.do(t, http.MethodGet, "/api/orders/"+orderID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReviewUpdatesRating(t *testing.T) {
	app := setupApp(t)
	provider := app.approvedProvider(t, "chef@example.com")
	customer, _ := app.signUp(t, gin.H{"name": "Cus", "email": "cus@example.com", "password": "secret123"})

	w, body := app.do(t, http.MethodPost, "/api/meals", provider, gin.H{"name": "Pasta", "price": 9.5, "category": "Italian"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mealID := dataOf(body)["id"].(string)

	w, _ = app.do(t, http.MethodPost, "/api/reviews", customer, gin.H{"mealId": mealID, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = app.do(t, http.MethodPost, "/api/reviews", customer, gin.H{"mealId": mealID, "rating": 4, "comment": "  tasty  "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "tasty", dataOf(body)["comment"])

	w, body = app.do(t, http.MethodGet, "/api/reviews/meal/"+mealID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])

	require.Eventually(t, func() bool {
		var meal models.Meal
		return app.db.First(&meal, "id = ?", mealID).Error == nil && meal.TotalReviews == 1
	}, defaultWait, defaultTick)
}

func TestMealUploadRejectsNonImage(t *testing.T) {
	app := setupApp(t)
	provider := app.approvedProvider(t, "chef@example.com")

	post := func(filename string, content []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("name", "Salad"))
		require.NoError(t, writer.WriteField("price", "7.25"))
		require.NoError(t, writer.WriteField("category", "Healthy"))
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/meals", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return app.serve(t, req, provider)
	}

	w, _ := post("salad.png", []byte("this is plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	w, body := post("salad.png", png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	imageURL := dataOf(body)["imageUrl"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "uploads/"), imageURL)

	w, _ = app.do(t, http.MethodGet, "/"+imageURL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminClientRegistry(t *testing.T) {
	app := setupApp(t)
	admin := app.signIn(t, adminEmail, adminPassword)
	app.signUp(t, gin.H{"name": "Cus", "email": "cus@example.com", "password": "secret123"})

	w, body := app.do(t, http.MethodPost, "/api/admin/clients", admin, gin.H{"name": "Mobile app"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	client := dataOf(body)["client"].(map[string]interface{})
	clientID := client["id"].(string)
	secret := dataOf(body)["client_secret"].(string)
	assert.NotContains(t, client, "Secret")

	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {clientID},
		"client_secret": {secret},
		"username":      {"cus@example.com"},
		"password":      {"secret123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w, body = app.serve(t, req, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	mobileToken := body["access_token"].(string)

	w, _ = app.do(t, http.MethodGet, "/api/auth/me", mobileToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = app.do(t, http.MethodGet, "/api/admin/clients", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])

	w, _ = app.do(t, http.MethodDelete, "/api/admin/clients/"+clientID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/auth/me", mobileToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, http.MethodDelete, "/api/admin/clients/"+clientID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
