package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

var (
	ErrAuthDisabled = errors.New("auth disabled")
	ErrInvalidToken = errors.New("invalid token")
)

// Config configures the auth service.
type Config struct {
	JWTSecret   string
	TokenExpiry time.Duration

	// Dev allows requests carrying no bearer token through as an anonymous
	// developer principal. Never enable in a cloud deployment.
	Dev bool
}

// Service validates bearer tokens and issues new ones.
type Service struct {
	mu  sync.RWMutex
	jwt *JWTService
	dev bool
}

// NewService constructs an auth service from static configuration.
func NewService(cfg Config) *Service {
	service := &Service{dev: cfg.Dev}
	if strings.TrimSpace(cfg.JWTSecret) != "" {
		service.jwt = NewJWTService(cfg.JWTSecret, cfg.TokenExpiry)
	}
	return service
}

// Enabled reports whether token validation is configured.
func (s *Service) Enabled() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jwt != nil
}

// DevMode reports whether unauthenticated requests are allowed through as
// an anonymous developer principal.
func (s *Service) DevMode() bool {
	return s != nil && s.dev
}

// Issue signs a token embedding the given auth context.
func (s *Service) Issue(auth models.AuthContext) (string, error) {
	if s == nil {
		return "", ErrAuthDisabled
	}
	s.mu.RLock()
	jwt := s.jwt
	s.mu.RUnlock()
	if jwt == nil {
		return "", ErrAuthDisabled
	}
	return jwt.Issue(auth)
}

// Validate validates a bearer token and returns the auth context it carries.
func (s *Service) Validate(token string) (models.AuthContext, error) {
	if s == nil {
		return models.AuthContext{}, ErrAuthDisabled
	}
	s.mu.RLock()
	jwt := s.jwt
	s.mu.RUnlock()
	if jwt == nil {
		return models.AuthContext{}, ErrAuthDisabled
	}
	return jwt.Validate(token)
}

// AnonymousDeveloper returns the fallback principal used in dev mode when no
// bearer token is presented.
func AnonymousDeveloper() models.AuthContext {
	return models.AuthContext{
		EntityType:  models.EntityDeveloper,
		EntityID:    "dev",
		Permissions: []string{"read", "write", "admin"},
	}
}
