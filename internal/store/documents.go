package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type documentStore struct {
	db   *sql.DB
	mode config.Mode
}

func (s *documentStore) Create(ctx context.Context, doc *models.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document is required")
	}
	owner, err := json.Marshal(doc.Owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	acl, err := json.Marshal(doc.AccessControl)
	if err != nil {
		return fmt.Errorf("marshal access_control: %w", err)
	}
	sysMeta, err := json.Marshal(doc.SystemMetadata)
	if err != nil {
		return fmt.Errorf("marshal system_metadata: %w", err)
	}
	meta, err := json.Marshal(doc.DocMetadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, content_type, owner, access_control, system_metadata, metadata, chunk_count, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		doc.ID, doc.Name, doc.ContentType, owner, acl, sysMeta, meta, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

const documentColumns = `id, name, content_type, owner, access_control, system_metadata, metadata, chunk_count, created_at, updated_at`

func (s *documentStore) scanDocument(row interface {
	Scan(dest ...any) error
}) (*models.Document, error) {
	var doc models.Document
	var owner, acl, sysMeta, meta []byte
	if err := row.Scan(
		&doc.ID, &doc.Name, &doc.ContentType, &owner, &acl, &sysMeta, &meta,
		&doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(owner) > 0 {
		if err := json.Unmarshal(owner, &doc.Owner); err != nil {
			return nil, fmt.Errorf("unmarshal owner: %w", err)
		}
	}
	if len(acl) > 0 {
		if err := json.Unmarshal(acl, &doc.AccessControl); err != nil {
			return nil, fmt.Errorf("unmarshal access_control: %w", err)
		}
	}
	if len(sysMeta) > 0 {
		if err := json.Unmarshal(sysMeta, &doc.SystemMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal system_metadata: %w", err)
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &doc.DocMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &doc, nil
}

func (s *documentStore) Get(ctx context.Context, who models.AuthContext, id string) (*models.Document, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1 AND (%s)`, documentColumns, access.Clause)
	args := append([]any{id}, access.Args...)

	doc, err := s.scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *documentStore) GetByFilename(ctx context.Context, who models.AuthContext, filename string, systemFilters map[string]any) (*models.Document, error) {
	access := auth.BuildAccessFilter(who, s.mode, 2)
	sysFilter := auth.BuildSystemMetadataFilter(systemFilters, 2+len(access.Args))
	combined := auth.Combine(2, access, sysFilter)

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE name = $1 AND (%s) ORDER BY updated_at DESC LIMIT 1`,
		documentColumns, combined.Clause)
	args := append([]any{filename}, combined.Args...)

	doc, err := s.scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document by filename: %w", err)
	}
	return doc, nil
}

func (s *documentStore) GetByIDs(ctx context.Context, who models.AuthContext, ids []string) ([]*models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	access := auth.BuildAccessFilter(who, s.mode, 1)
	placeholders := make([]string, len(ids))
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", 1+len(access.Args)+i)
		idArgs[i] = id
	}
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id IN (%s) AND (%s)`,
		documentColumns, strings.Join(placeholders, ", "), access.Clause)

	queryArgs := append(append([]any{}, access.Args...), idArgs...)

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("batch get documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := s.scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *documentStore) List(ctx context.Context, who models.AuthContext, metadataFilters, systemFilters map[string]any, limit, offset int) ([]*models.Document, error) {
	access := auth.BuildAccessFilter(who, s.mode, 1)
	metaFilter := auth.BuildMetadataFilter(metadataFilters, 1+len(access.Args))
	sysFilter := auth.BuildSystemMetadataFilter(systemFilters, 1+len(access.Args)+len(metaFilter.Args))
	combined := auth.Combine(1, access, metaFilter, sysFilter)

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC`, documentColumns, combined.Clause)
	args := combined.Args
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := s.scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *documentStore) Update(ctx context.Context, who models.AuthContext, doc *models.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document is required")
	}
	// Only writers/admins/owner (part of the access filter) may update.
	access := auth.BuildAccessFilter(who, s.mode, 7)
	meta, err := json.Marshal(doc.DocMetadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	sysMeta, err := json.Marshal(doc.SystemMetadata)
	if err != nil {
		return fmt.Errorf("marshal system_metadata: %w", err)
	}

	query := fmt.Sprintf(`UPDATE documents SET name = $1, metadata = $2, system_metadata = $3, chunk_count = $4, updated_at = $5
		WHERE id = $6 AND (%s)`, access.Clause)
	args := append([]any{doc.Name, meta, sysMeta, doc.ChunkCount, doc.UpdatedAt, doc.ID}, access.Args...)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *documentStore) Delete(ctx context.Context, who models.AuthContext, id string) error {
	if id == "" {
		return ErrNotFound
	}
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`DELETE FROM documents WHERE id = $1 AND (%s)`, access.Clause)
	args := append([]any{id}, access.Args...)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
