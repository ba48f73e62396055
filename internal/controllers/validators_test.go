package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindStatus(t *testing.T, payload string) (*httptest.ResponseRecorder, ErrorResponse) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	router := gin.New()
	router.POST("/status", func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		respond(c, http.StatusOK, req.Status, nil)
	})

	req := httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestOrderStatusBinding(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		status  int
		message string
	}{
		{name: "valid", payload: `{"status":"PREPARING"}`, status: http.StatusOK, message: "PREPARING"},
		{name: "lowercase", payload: `{"status":"out_for_delivery"}`, status: http.StatusOK, message: "out_for_delivery"},
		{name: "unknown", payload: `{"status":"SHIPPED"}`, status: http.StatusBadRequest, message: "Status has an invalid value"},
		{name: "missing", payload: `{}`, status: http.StatusBadRequest, message: "Status is required"},
		{name: "malformed", payload: `{"status":`, status: http.StatusBadRequest, message: "Invalid request body"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w, body := bindStatus(t, tt.payload)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status == http.StatusOK, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
