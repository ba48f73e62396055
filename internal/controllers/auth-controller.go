package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	log "github.com/sirupsen/logrus"
)

// SessionIssuer creates and revokes sessions
type SessionIssuer interface {
	IssueToken(ctx context.Context, user *models.User) (oauth2.TokenInfo, error)
	TokenData(ti oauth2.TokenInfo) map[string]interface{}
	RevokeToken(ctx context.Context, token string) error
}

// SignInRequest is the payload of the sign-in endpoint
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	userService services.UserService
	sessions    SessionIssuer
}

func NewAuthController(userService services.UserService, sessions SessionIssuer) *AuthController {
	return &AuthController{
		userService: userService,
		sessions:    sessions,
	}
}

// SignUp godoc
// @Summary Register an account
// @Description Create a customer or provider account. Providers start PENDING until an admin approves them.
// @Tags auth
// @Accept json
// @Produce json
// @Param account body services.SignUpInput true "Account details"
// @Success 201 {object} Response
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/sign-up [post]
func (ac *AuthController) SignUp(c *gin.Context) {
	var req services.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ac.userService.SignUp(req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Account created successfully"
	if result.Profile != nil {
		message = "Provider account created, pending admin approval"
	}
	respond(c, http.StatusCreated, message, gin.H{
		"user":    result.User,
		"profile": result.Profile,
	})
}

// SignIn godoc
// @Summary Sign in
// @Description Verify email and password and issue an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body SignInRequest true "Credentials"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/auth/sign-in [post]
func (ac *AuthController) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	ti, err := ac.sessions.IssueToken(c.Request.Context(), user)
	if err != nil {
		respondError(c, models.NewInternalError("failed to issue token", err))
		return
	}

	log.WithField("user_id", user.ID).Info("User signed in")
	respond(c, http.StatusOK, "Signed in successfully", gin.H{
		"user":  user,
		"token": ac.sessions.TokenData(ti),
	})
}

// SignOut godoc
// @Summary Sign out
// @Description Revoke the presented access token
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/auth/sign-out [post]
func (ac *AuthController) SignOut(c *gin.Context) {
	if err := ac.sessions.RevokeToken(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		respondError(c, models.NewInternalError("failed to revoke token", err))
		return
	}
	respond(c, http.StatusOK, "Signed out successfully", nil)
}

// Me godoc
// @Summary Current user
// @Description Return the user behind the access token
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	current, ok := requester(c)
	if !ok {
		return
	}

	user, err := ac.userService.GetUserByID(current.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}
