package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type workflowStore struct {
	db   *sql.DB
	mode config.Mode
}

const workflowColumns = `id, name, owner, app_id, system_prompt, model, allowed_tools, access_control, created_at, updated_at`

func (s *workflowStore) scanWorkflow(row interface{ Scan(dest ...any) error }) (*models.Workflow, error) {
	var wf models.Workflow
	var owner, acl []byte
	var allowedTools []string
	if err := row.Scan(&wf.ID, &wf.Name, &owner, &wf.AppID, &wf.SystemPrompt, &wf.Model,
		pq.Array(&allowedTools), &acl, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
		return nil, err
	}
	wf.AllowedTools = allowedTools
	if len(owner) > 0 {
		if err := json.Unmarshal(owner, &wf.Owner); err != nil {
			return nil, fmt.Errorf("unmarshal owner: %w", err)
		}
	}
	if len(acl) > 0 {
		if err := json.Unmarshal(acl, &wf.AccessControl); err != nil {
			return nil, fmt.Errorf("unmarshal access_control: %w", err)
		}
	}
	return &wf, nil
}

func (s *workflowStore) Create(ctx context.Context, wf *models.Workflow) error {
	if wf == nil || wf.ID == "" {
		return fmt.Errorf("workflow is required")
	}
	owner, err := json.Marshal(wf.Owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	acl, err := json.Marshal(wf.AccessControl)
	if err != nil {
		return fmt.Errorf("marshal access_control: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflows (id, name, owner, app_id, system_prompt, model, allowed_tools, access_control, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		wf.ID, wf.Name, owner, wf.AppID, wf.SystemPrompt, wf.Model, pq.Array(wf.AllowedTools), acl, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create workflow: %w", err)
	}
	return nil
}

func (s *workflowStore) Get(ctx context.Context, who models.AuthContext, id string) (*models.Workflow, error) {
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`SELECT %s FROM workflows WHERE id = $1 AND (%s)`, workflowColumns, access.Clause)
	wf, err := s.scanWorkflow(s.db.QueryRowContext(ctx, query, append([]any{id}, access.Args...)...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return wf, nil
}

func (s *workflowStore) List(ctx context.Context, who models.AuthContext) ([]*models.Workflow, error) {
	access := auth.BuildAccessFilter(who, s.mode, 1)
	query := fmt.Sprintf(`SELECT %s FROM workflows WHERE %s ORDER BY created_at DESC`, workflowColumns, access.Clause)
	rows, err := s.db.QueryContext(ctx, query, access.Args...)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*models.Workflow
	for rows.Next() {
		wf, err := s.scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

func (s *workflowStore) CreateRun(ctx context.Context, run *models.WorkflowRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("workflow run is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflow_runs (id, workflow_id, status, input, output, error, started_at, finished_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		run.ID, run.WorkflowID, run.Status, run.Input, run.Output, run.Error, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create workflow run: %w", err)
	}
	return nil
}

func (s *workflowStore) UpdateRun(ctx context.Context, run *models.WorkflowRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("workflow run is required")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflow_runs SET status = $1, output = $2, error = $3, finished_at = $4 WHERE id = $5`,
		run.Status, run.Output, run.Error, run.FinishedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update workflow run: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update workflow run rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *workflowStore) GetRun(ctx context.Context, id string) (*models.WorkflowRun, error) {
	var run models.WorkflowRun
	row := s.db.QueryRowContext(ctx,
		`SELECT id, workflow_id, status, input, output, error, started_at, finished_at
		 FROM workflow_runs WHERE id = $1`, id)
	err := row.Scan(&run.ID, &run.WorkflowID, &run.Status, &run.Input, &run.Output, &run.Error, &run.StartedAt, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow run: %w", err)
	}
	return &run, nil
}
