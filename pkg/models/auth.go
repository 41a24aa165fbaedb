package models

import "time"

// EntityType identifies the kind of principal a bearer token was issued to.
type EntityType string

const (
	// EntityDeveloper is an application/developer-scoped principal, typically
	// identified by an app_id.
	EntityDeveloper EntityType = "developer"

	// EntityEndUser is an individual end user acting inside an app.
	EntityEndUser EntityType = "user"
)

// AuthContext carries the authenticated principal for a request. It is
// constructed once by the bearer-token middleware and threaded through every
// downstream call as an explicit parameter (never package-level state).
type AuthContext struct {
	// EntityType distinguishes developer/app tokens from end-user tokens.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the principal's identifier: an app's developer id, or an
	// end user's id.
	EntityID string `json:"entity_id"`

	// AppID scopes the token to one application. Empty for tokens not
	// bound to a specific app.
	AppID string `json:"app_id,omitempty"`

	// UserID is populated for end-user-scoped tokens (cloud mode only
	// shortcut); may be empty even when EntityType is EntityEndUser if the
	// token predates that field.
	UserID string `json:"user_id,omitempty"`

	// Permissions lists the scopes granted to this token (e.g. "read",
	// "write", "admin").
	Permissions []string `json:"permissions,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
}

// HasPermission reports whether the token carries the named permission.
func (a AuthContext) HasPermission(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsDeveloperScopedToApp reports whether this principal is a developer
// token bound to a specific app_id. This is the condition that replaces the
// base ownership/ACL clauses with the strict app_id predicate and disables
// the end-user access-control shortcut.
func (a AuthContext) IsDeveloperScopedToApp() bool {
	return a.EntityType == EntityDeveloper && a.AppID != ""
}
