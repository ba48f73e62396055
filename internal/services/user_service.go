package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SignUpInput is the payload accepted by the sign-up endpoint
type SignUpInput struct {
	Name           string      `json:"name" binding:"required"`
	Email          string      `json:"email" binding:"required,email"`
	Password       string      `json:"password" binding:"required,min=6"`
	Role           models.Role `json:"role" binding:"omitempty,role"`
	Image          *string     `json:"image"`
	RestaurantName string      `json:"restaurantName"`
	Address        *string     `json:"address"`
	Phone          *string     `json:"phone"`
}

// SignUpResult carries the created user and, for providers, the created profile
type SignUpResult struct {
	User    *models.User            `json:"user"`
	Profile *models.ProviderProfile `json:"profile,omitempty"`
}

type UserService interface {
	// SignUp creates the user, its credential account and, for providers, a profile in one transaction
	SignUp(input SignUpInput) (*SignUpResult, error)
	// Authenticate verifies an email/password pair and returns the user
	Authenticate(email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	// GetCurrentUser loads the identity attached to authenticated requests
	GetCurrentUser(id string) (*models.CurrentUser, error)
	// EnsureAdmin creates the configured admin account when it does not exist yet
	EnsureAdmin(name, email, password string) (*models.User, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) SignUp(input SignUpInput) (*SignUpResult, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, models.NewValidationError("Name and email are required")
	}
	if len(input.Password) < 6 {
		return nil, models.NewValidationError("Password must be at least 6 characters")
	}

	role := input.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleProvider {
		return nil, models.NewValidationError("Invalid role provided")
	}

	user := &models.User{
		Email:         email,
		Name:          name,
		Role:          role,
		Status:        models.UserStatusApproved,
		IsActive:      true,
		EmailVerified: true,
		Image:         input.Image,
		Phone:         input.Phone,
	}
	if role == models.RoleProvider {
		user.Status = models.UserStatusPending
		user.IsActive = false
	}

	account := &models.Account{AccountID: email, ProviderID: models.CredentialProvider}
	if err := account.SetPassword(input.Password); err != nil {
		return nil, models.NewInternalError("failed to hash password", err)
	}

	result := &SignUpResult{User: user}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError("Email already registered!")
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewConflictError("Email already registered!")
			}
			return err
		}

		account.UserID = user.ID
		if err := tx.Create(account).Error; err != nil {
			return err
		}

		if role == models.RoleProvider {
			restaurantName := strings.TrimSpace(input.RestaurantName)
			if restaurantName == "" {
				restaurantName = models.PlaceholderRestaurantName(name)
			}
			description := models.PlaceholderDescription
			profile := &models.ProviderProfile{
				UserID:         user.ID,
				RestaurantName: restaurantName,
				Description:    &description,
				Address:        input.Address,
				Phone:          input.Phone,
			}
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
			result.Profile = profile
		}
		return nil
	})
	if err != nil {
		if _, ok := models.AsAppError(err); ok {
			return nil, err
		}
		return nil, models.NewInternalError("failed to create account", err)
	}

	log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User signed up")
	return result, nil
}

func (s *userService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if models.HasCode(err, models.ErrNotFound) {
			return nil, models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}

	var account models.Account
	err = s.db.Where("user_id = ? AND provider_id = ?", user.ID, models.CredentialProvider).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, models.NewInternalError("failed to load account", err)
	}
	if !account.CheckPassword(password) {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if user.Status == models.UserStatusBlocked {
		return nil, models.NewForbiddenError("Your account has been blocked.")
	}
	return user, nil
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, models.NewInternalError("failed to load user", err)
	}
	return &user, nil
}

func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("ProviderProfile").Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, models.NewInternalError("failed to load user", err)
	}
	return &user, nil
}

func (s *userService) GetCurrentUser(id string) (*models.CurrentUser, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	current := &models.CurrentUser{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Status: user.Status,
	}
	if user.ProviderProfile != nil {
		current.ProviderProfileID = user.ProviderProfile.ID
	}
	return current, nil
}

func (s *userService) EnsureAdmin(name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, models.NewValidationError("admin email is required")
	}

	existing, err := s.GetUserByEmail(email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return nil, fmt.Errorf("user %s exists but is not an admin", email)
		}
		log.WithField("email", email).Debug("Admin account already present")
		return existing, nil
	}
	if !models.HasCode(err, models.ErrNotFound) {
		return nil, err
	}
	if len(password) < 6 {
		return nil, models.NewValidationError("admin password must be at least 6 characters")
	}

	admin := &models.User{
		Email:         email,
		Name:          name,
		Role:          models.RoleAdmin,
		Status:        models.UserStatusApproved,
		IsActive:      true,
		EmailVerified: true,
	}
	account := &models.Account{AccountID: email, ProviderID: models.CredentialProvider}
	if err := account.SetPassword(password); err != nil {
		return nil, models.NewInternalError("failed to hash password", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		account.UserID = admin.ID
		return tx.Create(account).Error
	})
	if err != nil {
		return nil, models.NewInternalError("failed to seed admin", err)
	}

	log.WithField("email", email).Info("Admin account created")
	return admin, nil
}
