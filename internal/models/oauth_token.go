package models

import (
	"time"
)

// OAuthToken is an issued access token. A token that is not stored here is not a valid session.
type OAuthToken struct {
	ID               uint   `gorm:"primaryKey"`
	ClientID         string `gorm:"not null"`
	UserID           string `gorm:"type:varchar(36);index"`
	AccessToken      string `gorm:"uniqueIndex;not null"`
	RefreshToken     *string `gorm:"index"`
	Scopes           string
	AccessCreatedAt  time.Time
	ExpiresAt        time.Time `gorm:"not null"`
	RefreshExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}

// IsExpired reports whether the access token has passed its expiry
func (t *OAuthToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
