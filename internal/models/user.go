package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the marketplace role of a user
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is the account standing of a user
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusRejected UserStatus = "REJECTED"
	UserStatusBlocked  UserStatus = "BLOCKED"
)

// IsValid reports whether s is a known user status
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusApproved, UserStatusRejected, UserStatusBlocked:
		return true
	}
	return false
}

// InGoodStanding reports whether an account with this status may post reviews
func (s UserStatus) InGoodStanding() bool {
	return s == UserStatusActive || s == UserStatusApproved
}

type User struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Name          string     `gorm:"not null" json:"name"`
	Role          Role       `gorm:"type:varchar(16);not null;default:CUSTOMER;index" json:"role"`
	Status        UserStatus `gorm:"type:varchar(16);not null;default:APPROVED;index" json:"status"`
	IsActive      bool       `gorm:"not null" json:"isActive"`
	EmailVerified bool       `gorm:"not null" json:"emailVerified"`
	Phone         *string    `json:"phone,omitempty"`
	Image         *string    `json:"image,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	ProviderProfile *ProviderProfile `gorm:"foreignKey:UserID" json:"providerProfile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Account holds the credential used to sign in as a user
type Account struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	AccountID  string    `gorm:"not null" json:"accountId"`
	ProviderID string    `gorm:"not null;default:credential" json:"providerId"`
	Password   string    `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

const CredentialProvider = "credential"

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// SetPassword stores a bcrypt hash of the plain password
func (a *Account) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hash)
	return nil
}

// CheckPassword compares a plain password with the stored hash
func (a *Account) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(plain)) == nil
}

// CurrentUser is the resolved identity attached to an authenticated request
type CurrentUser struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	Role              Role       `json:"role"`
	Status            UserStatus `json:"status"`
	ProviderProfileID string     `json:"providerProfileId,omitempty"`
}

// IsAdmin reports whether the current user is an admin
func (u *CurrentUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
