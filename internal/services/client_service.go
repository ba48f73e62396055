package services

import (
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientInput registers an additional first-party OAuth2 client, e.g. a mobile app
type ClientInput struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// ClientService manages the OAuth2 clients allowed to use the token endpoint
type ClientService interface {
	// CreateClient stores a client with a generated secret. The plain secret is only returned here.
	CreateClient(ownerID string, input ClientInput) (*models.OAuthClient, string, error)
	ListClients() ([]models.OAuthClient, error)
	// DeleteClient removes a client and every token issued to it
	DeleteClient(id string) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ownerID string, input ClientInput) (*models.OAuthClient, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", models.NewValidationError("Client name is required")
	}

	secret := uuid.NewString()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError("failed to generate client secret", err)
	}

	client := &models.OAuthClient{
		ID:         uuid.NewString(),
		Secret:     string(hashedSecret),
		Name:       name,
		Domain:     input.Domain,
		Scopes:     input.Scopes,
		GrantTypes: "password refresh_token",
		UserID:     ownerID,
	}
	if err := s.db.Create(client).Error; err != nil {
		return nil, "", models.NewInternalError("failed to create client", err)
	}

	log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"owner_id":  ownerID,
	}).Info("OAuth client created")
	return client, secret, nil
}

func (s *clientService) ListClients() ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.Order("created_at desc").Find(&clients).Error; err != nil {
		return nil, models.NewInternalError("failed to list clients", err)
	}
	return clients, nil
}

func (s *clientService) DeleteClient(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.OAuthClient{})
		if result.Error != nil {
			return models.NewInternalError("failed to delete client", result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Client not found")
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.OAuthToken{}).Error; err != nil {
			return models.NewInternalError("failed to revoke client tokens", err)
		}
		return nil
	})
}
