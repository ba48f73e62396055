package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-foodhub-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-foodhub-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/config"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/database"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/routes"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// @title FoodHub API
// @version 1.0
// @description Food ordering marketplace: customers order meals from approved providers, admins moderate.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	if configuration.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	db := setupDatabase(configuration)

	// Seed the admin account and the first-party OAuth client
	userService := services.NewUserService(db)
	seedAdmin(userService, configuration)

	oauthService := auth.NewOAuthService(db, userService, auth.Options{
		JWTSecret:      configuration.JWTSecret,
		ClientID:       configuration.OAuthClientID,
		ClientSecret:   configuration.OAuthClientSecret,
		ClientDomain:   fmt.Sprintf("http://%s:%d", configuration.Host, configuration.Port),
		AccessTokenTTL: configuration.AccessTokenTTL,
	})
	checkPanicErr(oauthService.EnsureClient(context.Background()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Meal ratings are recomputed in the background
	ratingWorker := services.NewRatingWorker(services.NewRatingService(db), configuration.RatingQueueSize)
	ratingWorker.Start(context.Background())

	images, err := storage.NewLocalImageStore(configuration.UploadDir, configuration.MaxUploadBytes)
	checkPanicErr(err)

	// Initialize Gin router
	router, err := routes.NewRouter(routes.Dependencies{
		DB:             db,
		OAuth:          oauthService,
		Ratings:        ratingWorker,
		Images:         images,
		CORSOrigins:    configuration.CORSOrigins,
		RateLimitRPS:   configuration.RateLimitRPS,
		RateLimitBurst: configuration.RateLimitBurst,
	})
	checkPanicErr(err)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server
	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownTimeout := config.GetEnvAsType("SHUTDOWN_TIMEOUT", 10*time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Drain pending rating recomputations before the database goes away
	ratingWorker.Close()
	closeDatabase(db)
	log.Info("Server exited")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)

	// LOG_LEVEL overrides the environment based default
	if conf.LogLevel != "" {
		if level, err := log.ParseLevel(conf.LogLevel); err == nil {
			log.SetLevel(level)
		} else {
			log.WithField("log_level", conf.LogLevel).Warn("Unknown log level, keeping default")
		}
	}
	return conf
}

// setupDatabase opens the configured database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.AutoMigrate(db))
	return db
}

// seedAdmin creates the configured admin account if it does not exist yet
func seedAdmin(users services.UserService, conf *config.Config) {
	if conf.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD not set, skipping admin seeding")
		return
	}
	_, err := users.EnsureAdmin(conf.AdminName, conf.AdminEmail, conf.AdminPassword)
	checkPanicErr(err)
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("Failed to get database instance")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
}
