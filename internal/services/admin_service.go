package services

import (
	"errors"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DashboardStats aggregates marketplace totals
type DashboardStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalCustomers int64   `json:"totalCustomers"`
	TotalProviders int64   `json:"totalProviders"`
	TotalOrders    int64   `json:"totalOrders"`
}

// DashboardOverview is returned by the admin overview endpoint
type DashboardOverview struct {
	Stats     DashboardStats    `json:"stats"`
	Providers []PendingProvider `json:"providers"`
}

// PendingProvider summarises a provider waiting for approval
type PendingProvider struct {
	ID             string            `json:"id"`
	RestaurantName string            `json:"name"`
	OwnerName      string            `json:"owner"`
	OwnerEmail     string            `json:"email"`
	Status         models.UserStatus `json:"status"`
	CreatedAt      time.Time         `json:"date"`
}

// AdminService provides moderation and reporting operations
type AdminService interface {
	// Overview computes dashboard totals on every call
	Overview() (*DashboardOverview, error)
	ListPendingProviders() ([]PendingProvider, error)
	// ApproveOrRejectProvider sets the status of the user owning the profile
	ApproveOrRejectProvider(profileID string, status models.UserStatus) (*models.User, error)
	ListUsers() ([]models.User, error)
	SetUserStatus(userID string, status models.UserStatus) (*models.User, error)
}

type adminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) AdminService {
	return &adminService{db: db}
}

func (s *adminService) Overview() (*DashboardOverview, error) {
	var stats DashboardStats

	var revenue float64
	if err := s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status = ?", models.OrderStatusDelivered).
		Scan(&revenue).Error; err != nil {
		return nil, models.NewInternalError("failed to sum revenue", err)
	}
	stats.TotalRevenue = RoundMoney(revenue)

	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, models.NewInternalError("failed to count customers", err)
	}
	if err := s.db.Model(&models.ProviderProfile{}).Count(&stats.TotalProviders).Error; err != nil {
		return nil, models.NewInternalError("failed to count providers", err)
	}
	if err := s.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, models.NewInternalError("failed to count orders", err)
	}

	pending, err := s.ListPendingProviders()
	if err != nil {
		return nil, err
	}
	return &DashboardOverview{Stats: stats, Providers: pending}, nil
}

func (s *adminService) ListPendingProviders() ([]PendingProvider, error) {
	var profiles []models.ProviderProfile
	err := s.db.
		Joins("JOIN users ON users.id = provider_profiles.user_id").
		Where("users.status = ?", models.UserStatusPending).
		Preload("User").
		Order("provider_profiles.created_at desc").
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError("failed to list pending providers", err)
	}

	pending := make([]PendingProvider, 0, len(profiles))
	for _, profile := range profiles {
		entry := PendingProvider{
			ID:             profile.ID,
			RestaurantName: profile.RestaurantName,
			CreatedAt:      profile.CreatedAt,
		}
		if profile.User != nil {
			entry.OwnerName = profile.User.Name
			entry.OwnerEmail = profile.User.Email
			entry.Status = profile.User.Status
		}
		pending = append(pending, entry)
	}
	return pending, nil
}

func (s *adminService) ApproveOrRejectProvider(profileID string, status models.UserStatus) (*models.User, error) {
	status = models.UserStatus(strings.ToUpper(string(status)))
	if !status.IsValid() {
		return nil, models.NewValidationError("Invalid status value provided")
	}

	var profile models.ProviderProfile
	if err := s.db.Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Provider profile not found")
		}
		return nil, models.NewInternalError("failed to load provider profile", err)
	}

	user, err := s.applyStatus(profile.UserID, status)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"profile_id": profileID,
		"status":     status,
	}).Info("Provider status updated")
	return user, nil
}

func (s *adminService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Preload("ProviderProfile").Order("created_at desc").Find(&users).Error; err != nil {
		return nil, models.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func (s *adminService) SetUserStatus(userID string, status models.UserStatus) (*models.User, error) {
	status = models.UserStatus(strings.ToUpper(string(status)))
	if !status.IsValid() {
		return nil, models.NewValidationError("Valid status is required")
	}
	user, err := s.applyStatus(userID, status)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  status,
	}).Info("User status updated")
	return user, nil
}

// applyStatus writes status and the derived isActive flag. Concurrent writes are last-write-wins.
func (s *adminService) applyStatus(userID string, status models.UserStatus) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, models.NewInternalError("failed to load user", err)
	}

	err := s.db.Model(&user).Updates(map[string]interface{}{
		"status":    status,
		"is_active": status == models.UserStatusApproved,
	}).Error
	if err != nil {
		return nil, models.NewInternalError("failed to update user status", err)
	}
	user.Status = status
	user.IsActive = status == models.UserStatusApproved
	return &user, nil
}
