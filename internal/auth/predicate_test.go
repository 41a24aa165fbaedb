package auth

import (
	"strings"
	"testing"

	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

func TestBuildAccessFilterDeveloperScopedToApp(t *testing.T) {
	p := BuildAccessFilter(models.AuthContext{
		EntityType: models.EntityDeveloper,
		EntityID:   "dev-1",
		AppID:      "app-1",
	}, config.ModeCloud, 1)

	if !strings.Contains(p.Clause, "system_metadata @>") {
		t.Fatalf("expected app_id-scoped clause, got %q", p.Clause)
	}
	if strings.Contains(p.Clause, "access_control->'readers'") {
		t.Fatalf("developer scoped to app must not fall back to ACL clauses: %q", p.Clause)
	}
	if len(p.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(p.Args))
	}
}

func TestBuildAccessFilterEndUserCloudShortcut(t *testing.T) {
	p := BuildAccessFilter(models.AuthContext{
		EntityType: models.EntityEndUser,
		EntityID:   "user-1",
		UserID:     "user-1",
	}, config.ModeCloud, 1)

	if !strings.Contains(p.Clause, "access_control->'user_id'") {
		t.Fatalf("expected user_id shortcut in cloud mode, got %q", p.Clause)
	}
}

func TestBuildAccessFilterNoShortcutInSelfHostedMode(t *testing.T) {
	p := BuildAccessFilter(models.AuthContext{
		EntityType: models.EntityEndUser,
		EntityID:   "user-1",
		UserID:     "user-1",
	}, config.ModeSelfHosted, 1)

	if strings.Contains(p.Clause, "user_id") {
		t.Fatalf("expected no user_id shortcut outside cloud mode, got %q", p.Clause)
	}
}

func TestBuildSystemMetadataFilterScalarAndList(t *testing.T) {
	p := BuildSystemMetadataFilter(map[string]any{
		"folder_name": []any{"f1", "f2"},
		"app_id":      "app-1",
	}, 1)

	if !strings.Contains(p.Clause, " AND ") {
		t.Fatalf("expected keys AND-ed together, got %q", p.Clause)
	}
	if len(p.Args) != 3 {
		t.Fatalf("expected 3 args (2 folder values + 1 app_id), got %d", len(p.Args))
	}
}

func TestCombineRenumbersPlaceholders(t *testing.T) {
	a := BuildAccessFilter(models.AuthContext{EntityType: models.EntityEndUser, EntityID: "u1"}, config.ModeSelfHosted, 1)
	s := BuildSystemMetadataFilter(map[string]any{"app_id": "app-1"}, 1)

	combined := Combine(2, a, s)
	if !strings.Contains(combined.Clause, "$2") {
		t.Fatalf("expected renumbered placeholders starting at $2, got %q", combined.Clause)
	}
	if len(combined.Args) != len(a.Args)+len(s.Args) {
		t.Fatalf("expected combined args to total %d, got %d", len(a.Args)+len(s.Args), len(combined.Args))
	}
}
