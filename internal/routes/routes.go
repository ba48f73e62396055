// Package routes assembles the gin engine and the route table
package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/controllers"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/storage"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router wires into controllers
type Dependencies struct {
	DB      *gorm.DB
	OAuth   *auth.OAuthService
	Ratings services.RatingScheduler
	// Images may be nil, in which case uploads are rejected
	Images      *storage.LocalImageStore
	CORSOrigins []string
	// RateLimitRPS and RateLimitBurst throttle the public auth endpoints per client IP
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the engine with every API route registered
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := controllers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		middleware.CORS(deps.CORSOrigins),
		middleware.RequestLogger(),
		metrics.Middleware(),
		gin.Recovery(),
	)

	userService := services.NewUserService(deps.DB)
	var images storage.ImageStore
	if deps.Images != nil {
		images = deps.Images
		router.Static("/"+storage.PublicPrefix, deps.Images.Dir())
	}

	authController := controllers.NewAuthController(userService, deps.OAuth)
	mealController := controllers.NewMealController(services.NewMealService(deps.DB), images)
	categoryController := controllers.NewCategoryController(services.NewCategoryService(deps.DB))
	orderController := controllers.NewOrderController(services.NewOrderService(deps.DB))
	reviewController := controllers.NewReviewController(services.NewReviewService(deps.DB, deps.Ratings))
	adminController := controllers.NewAdminController(services.NewAdminService(deps.DB), services.NewClientService(deps.DB))
	providerController := controllers.NewProviderController(services.NewProviderService(deps.DB))

	authenticate := middleware.Authenticate(deps.OAuth, userService)
	limiter := middleware.NewRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst)

	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")

	authApi := api.Group("/auth")
	{
		authApi.POST("/sign-up", limiter.Handler(), authController.SignUp)
		authApi.POST("/sign-in", limiter.Handler(), authController.SignIn)
		authApi.POST("/token", limiter.Handler(), deps.OAuth.HandleToken)
		authApi.POST("/sign-out", authenticate, authController.SignOut)
		authApi.GET("/me", authenticate, authController.Me)
	}

	mealApi := api.Group("/meals")
	{
		mealApi.GET("", mealController.ListMeals)
		mealApi.GET("/:id", mealController.GetMeal)

		providerOnly := mealApi.Group("", authenticate, middleware.RequireRole(models.RoleProvider), middleware.RequireApprovedProvider())
		providerOnly.POST("", mealController.CreateMeal)
		providerOnly.PATCH("/:id", mealController.UpdateMeal)
		providerOnly.DELETE("/:id", mealController.DeleteMeal)
	}

	orderApi := api.Group("/orders")
	{
		orderApi.POST("", authenticate, middleware.RequireRole(models.RoleCustomer), orderController.CreateOrder)
		orderApi.GET("", authenticate, orderController.ListOrders)
		orderApi.GET("/:id", authenticate, orderController.GetOrder)
		orderApi.PATCH("/:id/status", authenticate, middleware.RequireRole(models.RoleAdmin, models.RoleProvider), orderController.UpdateOrderStatus)
	}

	categoryApi := api.Group("/categories")
	{
		categoryApi.GET("", categoryController.ListCategories)

		adminOnly := categoryApi.Group("", authenticate, middleware.RequireRole(models.RoleAdmin))
		adminOnly.POST("", categoryController.CreateCategory)
		adminOnly.PATCH("/:id", categoryController.UpdateCategory)
		adminOnly.DELETE("/:id", categoryController.DeleteCategory)
	}

	adminApi := api.Group("/admin", authenticate, middleware.RequireRole(models.RoleAdmin))
	{
		adminApi.GET("/overview", adminController.Overview)
		adminApi.GET("/users", adminController.ListUsers)
		adminApi.PATCH("/users/:id", adminController.SetUserStatus)
		adminApi.PATCH("/providers/approve/:id", adminController.ApproveProvider)
		adminApi.GET("/clients", adminController.ListClients)
		adminApi.POST("/clients", adminController.CreateClient)
		adminApi.DELETE("/clients/:id", adminController.DeleteClient)
	}

	reviewApi := api.Group("/reviews")
	{
		reviewApi.POST("", authenticate, middleware.RequireActiveAccount(), reviewController.CreateReview)
		reviewApi.GET("/meal/:mealId", reviewController.ListMealReviews)
	}

	providerApi := api.Group("/providers")
	{
		providerApi.GET("", providerController.ListProviders)
		providerApi.PUT("/profile", authenticate, middleware.RequireRole(models.RoleProvider), providerController.UpsertProfile)
		providerApi.GET("/:id", providerController.GetProvider)
	}

	return router, nil
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-foodhub-api",
	})
}
