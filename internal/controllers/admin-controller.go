package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserStatusRequest is the payload of the user and provider moderation endpoints
type UserStatusRequest struct {
	Status string `json:"status" binding:"required,userstatus"`
}

// ProviderDecisionRequest carries the admin decision on a provider
type ProviderDecisionRequest struct {
	Status string `json:"status" binding:"required"`
}

type AdminController struct {
	admin   services.AdminService
	clients services.ClientService
}

func NewAdminController(admin services.AdminService, clients services.ClientService) *AdminController {
	return &AdminController{admin: admin, clients: clients}
}

// Overview godoc
// @Summary Dashboard overview
// @Description Marketplace totals and providers waiting for approval
// @Tags admin
// @Produce json
// @Success 200 {object} Response{data=services.DashboardOverview}
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/admin/overview [get]
func (ac *AdminController) Overview(c *gin.Context) {
	overview, err := ac.admin.Overview()
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", overview)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {object} Response{data=[]models.User}
// @Security BearerAuth
// @Router /api/admin/users [get]
func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.admin.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, len(users), users)
}

// SetUserStatus godoc
// @Summary Change a user's status
// @Description APPROVED activates the account, any other status deactivates it
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param status body UserStatusRequest true "Status"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/admin/users/{id} [patch]
func (ac *AdminController) SetUserStatus(c *gin.Context) {
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.admin.SetUserStatus(c.Param("id"), models.UserStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User status updated", user)
}

// ApproveProvider godoc
// @Summary Approve or reject a provider
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Provider profile ID"
// @Param status body ProviderDecisionRequest true "Decision"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/admin/providers/approve/{id} [patch]
func (ac *AdminController) ApproveProvider(c *gin.Context) {
	var req ProviderDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.admin.ApproveOrRejectProvider(c.Param("id"), models.UserStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Provider status updated", user)
}

// CreateClient godoc
// @Summary Register an OAuth2 client
// @Description The client secret is only returned in this response
// @Tags admin
// @Accept json
// @Produce json
// @Param client body services.ClientInput true "Client details"
// @Success 201 {object} Response
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/admin/clients [post]
func (ac *AdminController) CreateClient(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var input services.ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	client, secret, err := ac.clients.CreateClient(user.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Client created successfully", gin.H{
		"client":        client,
		"client_secret": secret,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Tags admin
// @Produce json
// @Success 200 {object} Response{data=[]models.OAuthClient}
// @Security BearerAuth
// @Router /api/admin/clients [get]
func (ac *AdminController) ListClients(c *gin.Context) {
	clients, err := ac.clients.ListClients()
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, len(clients), clients)
}

// DeleteClient godoc
// @Summary Delete an OAuth2 client
// @Description Also revokes every token issued to the client
// @Tags admin
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/admin/clients/{id} [delete]
func (ac *AdminController) DeleteClient(c *gin.Context) {
	if err := ac.clients.DeleteClient(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Client deleted successfully", nil)
}
