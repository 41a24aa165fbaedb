package auth

import (
	"testing"
	"time"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

func TestJWTServiceIssueValidate(t *testing.T) {
	service := NewJWTService("secret", time.Hour)
	token, err := service.Issue(models.AuthContext{
		EntityType:  models.EntityEndUser,
		EntityID:    "user-1",
		UserID:      "user-1",
		Permissions: []string{"read"},
	})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	got, err := service.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.EntityID != "user-1" {
		t.Fatalf("expected entity id, got %q", got.EntityID)
	}
	if !got.HasPermission("read") {
		t.Fatalf("expected read permission")
	}
	if got.IsDeveloperScopedToApp() {
		t.Fatalf("expected end-user principal, not developer-scoped")
	}
}

func TestJWTServiceRejectsBadSignature(t *testing.T) {
	a := NewJWTService("secret-a", time.Hour)
	b := NewJWTService("secret-b", time.Hour)

	token, err := a.Issue(models.AuthContext{EntityType: models.EntityDeveloper, EntityID: "dev-1"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := b.Validate(token); err != ErrInvalidToken {
		t.Fatalf("Validate() error = %v, want %v", err, ErrInvalidToken)
	}
}
