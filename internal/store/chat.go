package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type chatStore struct {
	db   *sql.DB
	mode config.Mode
}

// Get loads a conversation's full history. A conversation that does not
// exist yet is not an error: callers (the query pipeline) start a new one
// on first use, so Get returns an empty conversation rather than
// ErrNotFound.
func (s *chatStore) Get(ctx context.Context, id string) (*models.ChatConversation, error) {
	var c models.ChatConversation
	var owner, history []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, app_id, end_user_id, name, history, created_at, updated_at
		 FROM chat_conversations WHERE id = $1`, id)
	err := row.Scan(&c.ID, &owner, &c.AppID, &c.EndUserID, &c.Name, &history, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return &models.ChatConversation{ID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat conversation: %w", err)
	}
	if len(owner) > 0 {
		if err := json.Unmarshal(owner, &c.Owner); err != nil {
			return nil, fmt.Errorf("unmarshal owner: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &c.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return &c, nil
}

// AppendMessages upserts the conversation row, appending msgs to its
// history. The row is created on first append; existing rows have their
// history replaced with the concatenation and updated_at bumped.
func (s *chatStore) AppendMessages(ctx context.Context, id string, owner models.Owner, appID, endUserID string, msgs []models.Message) error {
	if id == "" {
		return fmt.Errorf("conversation id is required")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	existing.History = append(existing.History, msgs...)

	ownerJSON, err := json.Marshal(owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	historyJSON, err := json.Marshal(existing.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chat_conversations (id, owner, app_id, end_user_id, name, history, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		 ON CONFLICT (id) DO UPDATE SET history = $6, updated_at = now()`,
		id, ownerJSON, appID, endUserID, existing.Name, historyJSON,
	)
	if err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}
	return nil
}

// List returns conversation summaries (history omitted) scoped to auth: a
// developer token scoped to an app_id sees only that app's conversations,
// everything else sees only conversations it owns.
func (s *chatStore) List(ctx context.Context, auth models.AuthContext, limit int) ([]*models.ChatConversation, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if auth.IsDeveloperScopedToApp() {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, owner, app_id, end_user_id, name, created_at, updated_at
			 FROM chat_conversations WHERE app_id = $1 ORDER BY updated_at DESC LIMIT $2`,
			auth.AppID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, owner, app_id, end_user_id, name, created_at, updated_at
			 FROM chat_conversations WHERE owner @> $1::jsonb ORDER BY updated_at DESC LIMIT $2`,
			mustJSONOwner(auth.EntityID), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list chat conversations: %w", err)
	}
	defer rows.Close()

	var out []*models.ChatConversation
	for rows.Next() {
		var c models.ChatConversation
		var owner []byte
		if err := rows.Scan(&c.ID, &owner, &c.AppID, &c.EndUserID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chat conversation: %w", err)
		}
		if len(owner) > 0 {
			if err := json.Unmarshal(owner, &c.Owner); err != nil {
				return nil, fmt.Errorf("unmarshal owner: %w", err)
			}
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// SetTitle renames a conversation, scoped the same way List is.
func (s *chatStore) SetTitle(ctx context.Context, auth models.AuthContext, id, title string) error {
	var res sql.Result
	var err error
	if auth.IsDeveloperScopedToApp() {
		res, err = s.db.ExecContext(ctx,
			`UPDATE chat_conversations SET name = $1, updated_at = now() WHERE id = $2 AND app_id = $3`,
			title, id, auth.AppID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE chat_conversations SET name = $1, updated_at = now() WHERE id = $2 AND owner @> $3::jsonb`,
			title, id, mustJSONOwner(auth.EntityID))
	}
	if err != nil {
		return fmt.Errorf("rename chat conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename chat conversation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mustJSONOwner(entityID string) string {
	b, _ := json.Marshal(map[string]string{"id": entityID})
	return string(b)
}
