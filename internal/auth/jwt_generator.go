package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidToken is returned when a bearer token cannot be turned into a session
var ErrInvalidToken = errors.New("invalid or expired token")

// CustomJWTAccessGenerate generates JWT access tokens with custom claims including UserID and Role
type CustomJWTAccessGenerate struct {
	SignedKey    []byte
	SignedMethod jwt.SigningMethod
	DB           *gorm.DB // Database connection to fetch user information
}

// NewCustomJWTAccessGenerate creates a new custom JWT access token generator
func NewCustomJWTAccessGenerate(key []byte, method jwt.SigningMethod, db *gorm.DB) *CustomJWTAccessGenerate {
	return &CustomJWTAccessGenerate{
		SignedKey:    key,
		SignedMethod: method,
		DB:           db,
	}
}

// Token generates a JWT access token with custom claims.
// This method is called by the OAuth2 manager for password and refresh grants.
func (g *CustomJWTAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token: no user ID available")
	}

	// The role always comes from the database so a stale token cannot escalate
	role, err := g.getUserRole(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch user role: %w", err)
	}

	createdAt := data.TokenInfo.GetAccessCreateAt()
	claims := jwt.MapClaims{
		"aud":  data.Client.GetID(),
		"exp":  createdAt.Add(data.TokenInfo.GetAccessExpiresIn()).Unix(),
		"iat":  createdAt.Unix(),
		"jti":  uuid.NewString(),
		"uid":  userID,
		"role": string(role),
	}
	if data.TokenInfo.GetScope() != "" {
		claims["scope"] = data.TokenInfo.GetScope()
	}

	access, err := jwt.NewWithClaims(g.SignedMethod, claims).SignedString(g.SignedKey)
	if err != nil {
		return "", "", err
	}

	refresh := ""
	if isGenRefresh {
		refreshClaims := jwt.MapClaims{
			"jti": uuid.NewString(),
			"uid": userID,
		}
		if exp := data.TokenInfo.GetRefreshExpiresIn(); exp > 0 {
			refreshClaims["exp"] = data.TokenInfo.GetRefreshCreateAt().Add(exp).Unix()
		}
		refresh, err = jwt.NewWithClaims(g.SignedMethod, refreshClaims).SignedString(g.SignedKey)
		if err != nil {
			return "", "", err
		}
	}

	return access, refresh, nil
}

func (g *CustomJWTAccessGenerate) getUserRole(ctx context.Context, userID string) (models.Role, error) {
	var user models.User
	if err := g.DB.WithContext(ctx).Select("id", "role").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user with ID %s not found", userID)
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	if !user.Role.IsValid() {
		return "", fmt.Errorf("user %s has invalid role %q", userID, user.Role)
	}
	return user.Role, nil
}

// AccessClaims are the claims the API relies on
type AccessClaims struct {
	UserID   string
	Role     models.Role
	ClientID string
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject algorithm substitution
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithIssuedAt())
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}
	return claims, nil
}

// ParseAccessToken verifies the signature and expiry of an access token and extracts its claims
func ParseAccessToken(tokenString string, jwtSecret []byte) (*AccessClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil || exp.Before(time.Now()) {
		return nil, fmt.Errorf("token has expired")
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return nil, fmt.Errorf("token missing required 'uid' claim")
	}

	role, _ := claims["role"].(string)
	if !models.Role(role).IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	parsed := &AccessClaims{UserID: uid, Role: models.Role(role)}
	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		parsed.ClientID = aud[0]
	}
	return parsed, nil
}
