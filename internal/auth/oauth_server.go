package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	firstPartyGrantTypes   = "password refresh_token"
)

// Options configures the OAuth2 server and the first-party client
type Options struct {
	JWTSecret       string
	ClientID        string
	ClientSecret    string
	ClientDomain    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// CredentialVerifier checks resource owner credentials for the password grant
type CredentialVerifier interface {
	Authenticate(email, password string) (*models.User, error)
}

// OAuthService issues, resolves and revokes sessions. Access tokens are HMAC
// signed JWTs that are only valid while they are present in the token store.
type OAuthService struct {
	server  *server.Server
	manager *manage.Manager
	db      *gorm.DB
	users   CredentialVerifier
	opts    Options
}

func NewOAuthService(db *gorm.DB, users CredentialVerifier, opts Options) *OAuthService {
	if opts.AccessTokenTTL <= 0 {
		opts.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if opts.RefreshTokenTTL <= 0 {
		opts.RefreshTokenTTL = DefaultRefreshTokenTTL
	}

	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    opts.AccessTokenTTL,
		RefreshTokenExp:   opts.RefreshTokenTTL,
		IsGenerateRefresh: true,
	})
	manager.SetRefreshTokenCfg(&manage.RefreshingConfig{
		AccessTokenExp:     opts.AccessTokenTTL,
		RefreshTokenExp:    opts.RefreshTokenTTL,
		IsGenerateRefresh:  true,
		IsRemoveAccess:     true,
		IsRemoveRefreshing: true,
	})

	// Use JWT for access tokens
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(opts.JWTSecret), jwt.SigningMethodHS512, db))

	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewGormClientStore(db))

	service := &OAuthService{
		manager: manager,
		db:      db,
		users:   users,
		opts:    opts,
	}

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.PasswordCredentials, oauth2.Refreshing)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetPasswordAuthorizationHandler(service.authorizePassword)
	srv.SetInternalErrorHandler(func(err error) *oauth2errors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})
	srv.SetResponseErrorHandler(func(re *oauth2errors.Response) {
		log.WithFields(log.Fields{
			"error":       re.Error,
			"status_code": re.StatusCode,
		}).Warn("OAuth2 token request rejected")
	})
	service.server = srv

	return service
}

// authorizePassword resolves the user for the password grant. Bad credentials
// return an empty user id, which the server reports as invalid_grant.
func (o *OAuthService) authorizePassword(ctx context.Context, clientID, username, password string) (string, error) {
	user, err := o.users.Authenticate(username, password)
	switch {
	case err == nil:
		return user.ID, nil
	case models.HasCode(err, models.ErrUnauthorized):
		return "", nil
	case models.HasCode(err, models.ErrForbidden):
		return "", oauth2errors.ErrAccessDenied
	default:
		return "", err
	}
}

// EnsureClient creates the first-party client, or rotates its stored hash when the configured secret changed
func (o *OAuthService) EnsureClient(ctx context.Context) error {
	if o.opts.ClientID == "" || o.opts.ClientSecret == "" {
		return fmt.Errorf("oauth client id and secret are required")
	}

	var client models.OAuthClient
	err := o.db.WithContext(ctx).Where("id = ?", o.opts.ClientID).First(&client).Error
	if err == nil && client.VerifyPassword(o.opts.ClientSecret) {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load oauth client: %w", err)
	}

	hash, hashErr := bcrypt.GenerateFromPassword([]byte(o.opts.ClientSecret), bcrypt.DefaultCost)
	if hashErr != nil {
		return fmt.Errorf("failed to hash client secret: %w", hashErr)
	}

	if err == nil {
		if err := o.db.WithContext(ctx).Model(&client).Update("secret", string(hash)).Error; err != nil {
			return fmt.Errorf("failed to rotate client secret: %w", err)
		}
		log.WithField("client_id", client.ID).Info("OAuth client secret rotated")
		return nil
	}

	client = models.OAuthClient{
		ID:         o.opts.ClientID,
		Secret:     string(hash),
		Name:       "FoodHub web client",
		Domain:     o.opts.ClientDomain,
		GrantTypes: firstPartyGrantTypes,
	}
	if err := o.db.WithContext(ctx).Create(&client).Error; err != nil {
		return fmt.Errorf("failed to create oauth client: %w", err)
	}
	log.WithField("client_id", client.ID).Info("OAuth client created")
	return nil
}

// IssueToken creates a session for an already authenticated user through the first-party client
func (o *OAuthService) IssueToken(ctx context.Context, user *models.User) (oauth2.TokenInfo, error) {
	return o.manager.GenerateAccessToken(ctx, oauth2.PasswordCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     o.opts.ClientID,
		ClientSecret: o.opts.ClientSecret,
		UserID:       user.ID,
	})
}

// TokenData renders a token the same way the token endpoint does
func (o *OAuthService) TokenData(ti oauth2.TokenInfo) map[string]interface{} {
	return o.server.GetTokenData(ti)
}

// ResolveSession returns the user id behind a bearer token. The token must be
// correctly signed, unexpired and still present in the token store.
func (o *OAuthService) ResolveSession(ctx context.Context, token string) (string, error) {
	claims, err := ParseAccessToken(token, []byte(o.opts.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	ti, err := o.manager.LoadAccessToken(ctx, token)
	if err != nil {
		if isTokenError(err) {
			return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if ti.GetUserID() != claims.UserID {
		return "", fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}
	return claims.UserID, nil
}

// RevokeToken removes an access token from the store so it no longer resolves
func (o *OAuthService) RevokeToken(ctx context.Context, token string) error {
	return o.manager.RemoveAccessToken(ctx, token)
}

func isTokenError(err error) bool {
	return errors.Is(err, oauth2errors.ErrInvalidAccessToken) ||
		errors.Is(err, oauth2errors.ErrExpiredAccessToken) ||
		errors.Is(err, oauth2errors.ErrExpiredRefreshToken)
}
