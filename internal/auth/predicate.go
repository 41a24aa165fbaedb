package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// Predicate is a parameterized SQL boolean expression: Clause references its
// Args by position ($1, $2, ...) offset from a caller-supplied starting
// index, so multiple predicates can be composed into one query without
// placeholder collisions.
type Predicate struct {
	Clause string
	Args   []any
}

// empty reports whether the predicate contributes no constraint.
func (p Predicate) empty() bool {
	return strings.TrimSpace(p.Clause) == ""
}

// renumber rewrites $1-style placeholders in clause to start at offset+1 and
// returns args unchanged for the caller to append to its running argument
// list.
func renumber(clause string, args []any, offset int) (string, []any) {
	if len(args) == 0 {
		return clause, nil
	}
	out := clause
	for i := len(args); i >= 1; i-- {
		out = strings.ReplaceAll(out, fmt.Sprintf("$%d", i), fmt.Sprintf("$%d", i+offset))
	}
	return out, args
}

// BuildAccessFilter builds the row-level access predicate for documents,
// folders, and graphs. A developer token scoped to an app_id (see
// AuthContext.IsDeveloperScopedToApp) is restricted strictly to that app's
// rows; every other principal falls back to the owner/ACL clauses, with an
// additional end-user shortcut in cloud mode.
//
// startArg is the 1-based placeholder index to start numbering from, so
// callers can compose this with other predicates in the same query.
func BuildAccessFilter(auth models.AuthContext, mode config.Mode, startArg int) Predicate {
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", startArg+len(args)-1)
	}

	var filters []string
	if auth.IsDeveloperScopedToApp() {
		filters = []string{
			fmt.Sprintf("system_metadata @> %s::jsonb", arg(mustJSON(map[string]any{"app_id": auth.AppID}))),
		}
	} else {
		filters = []string{
			fmt.Sprintf("owner @> %s::jsonb", arg(mustJSON(map[string]any{"id": auth.EntityID}))),
			fmt.Sprintf("access_control->'readers' ? %s", arg(auth.EntityID)),
			fmt.Sprintf("access_control->'writers' ? %s", arg(auth.EntityID)),
			fmt.Sprintf("access_control->'admins' ? %s", arg(auth.EntityID)),
		}
	}

	if auth.UserID != "" && !auth.IsDeveloperScopedToApp() && mode == config.ModeCloud {
		filters = append(filters, fmt.Sprintf("access_control->'user_id' ? %s", arg(auth.UserID)))
	}

	return Predicate{Clause: strings.Join(filters, " OR "), Args: args}
}

// BuildMetadataFilter builds the user-supplied document-metadata predicate.
// List values are OR-ed together (membership check); different keys are
// AND-ed.
func BuildMetadataFilter(filters map[string]any, startArg int) Predicate {
	return buildJSONBFilter("metadata", filters, startArg)
}

// BuildSystemMetadataFilter builds the system-metadata predicate (app_id,
// end_user_id, folder_name, ...). Supports both scalar and list-valued
// system_metadata entries by OR-ing per-value containment checks.
func BuildSystemMetadataFilter(filters map[string]any, startArg int) Predicate {
	return buildJSONBFilter("system_metadata", filters, startArg)
}

func buildJSONBFilter(column string, filters map[string]any, startArg int) Predicate {
	if len(filters) == 0 {
		return Predicate{}
	}

	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", startArg+len(args)-1)
	}

	var keyClauses []string
	for key, value := range filters {
		values, ok := value.([]any)
		if !ok {
			values = []any{value}
		}
		if len(values) == 0 {
			continue
		}

		var valueClauses []string
		for _, item := range values {
			payload := mustJSON(map[string]any{key: item})
			valueClauses = append(valueClauses, fmt.Sprintf("%s @> %s::jsonb", column, arg(payload)))
		}
		keyClauses = append(keyClauses, "("+strings.Join(valueClauses, " OR ")+")")
	}

	if len(keyClauses) == 0 {
		return Predicate{}
	}
	return Predicate{Clause: strings.Join(keyClauses, " AND "), Args: args}
}

// Combine ANDs together every non-empty predicate, renumbering placeholders
// so the result is safe to append to a single query's argument list
// starting at startArg.
func Combine(startArg int, predicates ...Predicate) Predicate {
	var clauses []string
	var args []any
	next := startArg
	for _, p := range predicates {
		if p.empty() {
			continue
		}
		clause, renumbered := renumber(p.Clause, p.Args, next-1)
		clauses = append(clauses, "("+clause+")")
		args = append(args, renumbered...)
		next += len(p.Args)
	}
	if len(clauses) == 0 {
		return Predicate{Clause: "TRUE"}
	}
	return Predicate{Clause: strings.Join(clauses, " AND "), Args: args}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
