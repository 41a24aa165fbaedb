package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type usageStore struct {
	db *sql.DB
}

func (s *usageStore) Record(ctx context.Context, log *models.UsageLog) error {
	if log == nil || log.ID == "" {
		return fmt.Errorf("usage log is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_logs (id, app_id, entity_type, entity_id, operation, provider, model, input_tokens, output_tokens, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		log.ID, log.AppID, log.EntityType, log.EntityID, log.Operation, log.Provider, log.Model,
		log.InputTokens, log.OutputTokens, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// UsageSince sums queries (operation = query) and total tokens recorded for
// (appID, entityID) at or after since, the current billing period's start.
func (s *usageStore) UsageSince(ctx context.Context, appID, entityID string, since time.Time) (models.QuotaUsage, error) {
	var usage models.QuotaUsage
	row := s.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(COUNT(*) FILTER (WHERE operation = $3), 0),
			COALESCE(SUM(input_tokens + output_tokens), 0)
		 FROM usage_logs
		 WHERE app_id = $1 AND entity_id = $2 AND created_at >= $4`,
		appID, entityID, models.UsageQuery, since,
	)
	if err := row.Scan(&usage.Queries, &usage.Tokens); err != nil {
		return models.QuotaUsage{}, fmt.Errorf("usage since: %w", err)
	}
	return usage, nil
}
