package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is a registered OAuth2 client. The first-party web client is
// ensured at start-up; its Secret column holds a bcrypt hash.
type OAuthClient struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	Secret     string         `gorm:"not null" json:"-"`
	Name       string         `json:"name"`
	Domain     string         `json:"domain"`
	UserID     string         `gorm:"type:varchar(36)" json:"userId"`
	Scopes     string         `json:"scopes"`     // Space-separated list of allowed scopes
	GrantTypes string         `json:"grantTypes"` // Space-separated list: "password refresh_token"
	Public     bool           `json:"public"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string     { return c.ID }
func (c *OAuthClient) GetSecret() string { return c.Secret }
func (c *OAuthClient) GetDomain() string { return c.Domain }
func (c *OAuthClient) IsPublic() bool    { return c.Public }
func (c *OAuthClient) GetUserID() string { return c.UserID }

// VerifyPassword compares the presented client secret with the stored hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
