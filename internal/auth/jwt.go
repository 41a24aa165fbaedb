package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// JWTService issues and validates the bearer tokens carried in morphik://
// URIs and Authorization headers.
type JWTService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService builds a JWT helper with the given secret and expiry.
func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), expiry: expiry}
}

// Claims is the JWT payload carrying an AuthContext's fields.
type Claims struct {
	EntityType  string   `json:"entity_type"`
	EntityID    string   `json:"entity_id"`
	AppID       string   `json:"app_id,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token embedding the given auth context.
func (s *JWTService) Issue(auth models.AuthContext) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrAuthDisabled
	}
	if strings.TrimSpace(auth.EntityID) == "" {
		return "", errors.New("entity id required")
	}

	expiresAt := auth.ExpiresAt
	if expiresAt.IsZero() && s.expiry > 0 {
		expiresAt = time.Now().Add(s.expiry)
	}

	claims := Claims{
		EntityType:  string(auth.EntityType),
		EntityID:    auth.EntityID,
		AppID:       auth.AppID,
		UserID:      auth.UserID,
		Permissions: auth.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  auth.EntityID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and validates a JWT and returns the AuthContext it carries.
func (s *JWTService) Validate(token string) (models.AuthContext, error) {
	if s == nil || len(s.secret) == 0 {
		return models.AuthContext{}, ErrAuthDisabled
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return models.AuthContext{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return models.AuthContext{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.EntityID) == "" {
		return models.AuthContext{}, ErrInvalidToken
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return models.AuthContext{
		EntityType:  models.EntityType(claims.EntityType),
		EntityID:    claims.EntityID,
		AppID:       claims.AppID,
		UserID:      claims.UserID,
		Permissions: claims.Permissions,
		ExpiresAt:   expiresAt,
	}, nil
}
