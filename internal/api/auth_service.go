package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ksred/ironforge/internal/config"
	"github.com/ksred/ironforge/internal/utils"
)

var (
	ErrAPIKeyDisabled = errors.New("API key authentication is disabled")
	ErrInvalidAPIKey  = errors.New("invalid API key")
	ErrInvalidToken   = errors.New("invalid token")
)

// AuthService checks admin credentials and issues access tokens
type AuthService struct {
	config *config.Config
	logger zerolog.Logger
}

func NewAuthService(cfg *config.Config, logger zerolog.Logger) *AuthService {
	return &AuthService{
		config: cfg,
		logger: utils.WithComponent(logger, "auth_service"),
	}
}

// GenerateAPIKey returns a random API key and its bcrypt hash
func GenerateAPIKey() (key string, hash string, err error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", "", err
	}
	key = hex.EncodeToString(keyBytes)

	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return key, string(hashed), nil
}

// ValidateAPIKey compares key with the configured hash
func (s *AuthService) ValidateAPIKey(key string) error {
	if s.config.Auth.APIKeyHash == "" {
		return ErrAPIKeyDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.Auth.APIKeyHash), []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

// IssueToken signs an HS256 token for subject
func (s *AuthService) IssueToken(subject string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.config.JWT.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	tokenString, err := token.SignedString([]byte(s.config.JWT.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ParseToken verifies tokenString and returns its subject
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
