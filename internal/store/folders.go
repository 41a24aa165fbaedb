package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type folderStore struct {
	db   *sql.DB
	mode config.Mode
}

const folderColumns = `id, name, description, owner, document_ids, access_control, system_metadata, created_at, updated_at`

func (s *folderStore) scanFolder(row interface{ Scan(dest ...any) error }) (*models.Folder, error) {
	var f models.Folder
	var owner, acl, sysMeta []byte
	var docIDs []string
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &owner, pq.Array(&docIDs), &acl, &sysMeta, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.DocumentIDs = docIDs
	if len(owner) > 0 {
		if err := json.Unmarshal(owner, &f.Owner); err != nil {
			return nil, fmt.Errorf("unmarshal owner: %w", err)
		}
	}
	if len(acl) > 0 {
		if err := json.Unmarshal(acl, &f.AccessControl); err != nil {
			return nil, fmt.Errorf("unmarshal access_control: %w", err)
		}
	}
	if len(sysMeta) > 0 {
		if err := json.Unmarshal(sysMeta, &f.SystemMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal system_metadata: %w", err)
		}
	}
	return &f, nil
}

func (s *folderStore) Create(ctx context.Context, f *models.Folder) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("folder is required")
	}
	owner, err := json.Marshal(f.Owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	acl, err := json.Marshal(f.AccessControl)
	if err != nil {
		return fmt.Errorf("marshal access_control: %w", err)
	}
	sysMeta, err := json.Marshal(f.SystemMetadata)
	if err != nil {
		return fmt.Errorf("marshal system_metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, description, owner, document_ids, access_control, system_metadata, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		f.ID, f.Name, f.Description, owner, pq.Array(f.DocumentIDs), acl, sysMeta, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

func (s *folderStore) Get(ctx context.Context, who models.AuthContext, id string) (*models.Folder, error) {
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`SELECT %s FROM folders WHERE id = $1 AND (%s)`, folderColumns, access.Clause)
	f, err := s.scanFolder(s.db.QueryRowContext(ctx, query, append([]any{id}, access.Args...)...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return f, nil
}

func (s *folderStore) GetByName(ctx context.Context, who models.AuthContext, name string) (*models.Folder, error) {
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`SELECT %s FROM folders WHERE name = $1 AND (%s)`, folderColumns, access.Clause)
	f, err := s.scanFolder(s.db.QueryRowContext(ctx, query, append([]any{name}, access.Args...)...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get folder by name: %w", err)
	}
	return f, nil
}

func (s *folderStore) List(ctx context.Context, who models.AuthContext) ([]*models.Folder, error) {
	access := auth.BuildAccessFilter(who, s.mode, 1)
	query := fmt.Sprintf(`SELECT %s FROM folders WHERE %s ORDER BY created_at DESC`, folderColumns, access.Clause)
	rows, err := s.db.QueryContext(ctx, query, access.Args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		f, err := s.scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (s *folderStore) AddDocument(ctx context.Context, who models.AuthContext, folderID, documentID string) error {
	access := auth.BuildAccessFilter(who, s.mode, 3)
	query := fmt.Sprintf(`UPDATE folders SET document_ids = array_append(document_ids, $1), updated_at = now()
		WHERE id = $2 AND NOT ($1 = ANY(document_ids)) AND (%s)`, access.Clause)
	args := append([]any{documentID, folderID}, access.Args...)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("add document to folder: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Either already present, or folder not visible; treat as idempotent
		// no-op unless the folder genuinely does not exist.
		if _, err := s.Get(ctx, who, folderID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a folder and, when cascadeDocuments is true, every
// document it owns, returning the deleted document IDs so the caller (the
// retrieval collaborator) can drop their chunks/embeddings too.
func (s *folderStore) Delete(ctx context.Context, who models.AuthContext, id string, cascadeDocuments bool) ([]string, error) {
	f, err := s.Get(ctx, who, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete folder tx: %w", err)
	}
	defer tx.Rollback()

	var deletedDocs []string
	if cascadeDocuments && len(f.DocumentIDs) > 0 {
		access := auth.BuildAccessFilter(who, s.mode, 1)
		placeholders := make([]string, len(f.DocumentIDs))
		args := []any{}
		for i, docID := range f.DocumentIDs {
			placeholders[i] = fmt.Sprintf("$%d", 1+len(access.Args)+i)
			args = append(args, docID)
		}
		query := fmt.Sprintf(`DELETE FROM documents WHERE id IN (%s) AND (%s) RETURNING id`,
			joinPlaceholders(placeholders), access.Clause)
		rows, err := tx.QueryContext(ctx, query, append(append([]any{}, access.Args...), args...)...)
		if err != nil {
			return nil, fmt.Errorf("cascade delete documents: %w", err)
		}
		for rows.Next() {
			var docID string
			if err := rows.Scan(&docID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan deleted document id: %w", err)
			}
			deletedDocs = append(deletedDocs, docID)
		}
		rows.Close()
	}

	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`DELETE FROM folders WHERE id = $1 AND (%s)`, access.Clause)
	res, err := tx.ExecContext(ctx, query, append([]any{id}, access.Args...)...)
	if err != nil {
		return nil, fmt.Errorf("delete folder: %w", err)
	}
	if rowsAffected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("delete folder rows affected: %w", err)
	} else if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete folder tx: %w", err)
	}
	return deletedDocs, nil
}

func joinPlaceholders(placeholders []string) string {
	out := ""
	for i, p := range placeholders {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// NewFolderID generates a new folder identifier.
func NewFolderID() string {
	return uuid.NewString()
}
