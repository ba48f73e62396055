package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ProviderController struct {
	service services.ProviderService
}

func NewProviderController(service services.ProviderService) *ProviderController {
	return &ProviderController{service: service}
}

// ListProviders godoc
// @Summary List providers
// @Description Approved restaurants
// @Tags providers
// @Produce json
// @Success 200 {object} Response{data=[]models.ProviderProfile}
// @Router /api/providers [get]
func (pc *ProviderController) ListProviders(c *gin.Context) {
	providers, err := pc.service.ListProviders()
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, len(providers), providers)
}

// GetProvider godoc
// @Summary Get a provider
// @Description Looks up by profile ID or owner user ID and includes the menu and aggregate rating
// @Tags providers
// @Produce json
// @Param id path string true "Profile or user ID"
// @Success 200 {object} Response{data=services.ProviderDetails}
// @Failure 404 {object} ErrorResponse
// @Router /api/providers/{id} [get]
func (pc *ProviderController) GetProvider(c *gin.Context) {
	provider, err := pc.service.GetProvider(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", provider)
}

// UpsertProfile godoc
// @Summary Create or update own provider profile
// @Tags providers
// @Accept json
// @Produce json
// @Param profile body services.ProfileInput true "Profile"
// @Success 200 {object} Response{data=models.ProviderProfile}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/providers/profile [put]
func (pc *ProviderController) UpsertProfile(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := pc.service.UpsertProfile(user.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile saved successfully", profile)
}
