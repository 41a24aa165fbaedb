package query

import (
	"context"
	"time"

	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// quotaEnforcer checks per-user per-operation quotas in cloud mode (§7),
// shared by Pipeline and AgentRunner so the two entrypoints apply
// identical limits.
type quotaEnforcer struct {
	usage store.UsageStore
	cfg   config.QuotaConfig
	mode  config.Mode
}

// enforce returns a QuotaExceeded error if auth's billing-period usage has
// reached either configured limit. It is a no-op outside cloud mode or
// when quotas are disabled.
func (q quotaEnforcer) enforce(ctx context.Context, auth models.AuthContext) error {
	if q.mode != config.ModeCloud || !q.cfg.Enabled {
		return nil
	}

	since := startOfBillingPeriod(time.Now().UTC())
	usage, err := q.usage.UsageSince(ctx, auth.AppID, auth.EntityID, since)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "check usage quota", err)
	}

	if q.cfg.MaxQueriesPerMonth > 0 && usage.Queries >= q.cfg.MaxQueriesPerMonth {
		return apperr.QuotaExceededf("monthly query quota of %d exceeded", q.cfg.MaxQueriesPerMonth)
	}
	if q.cfg.MaxTokensPerMonth > 0 && usage.Tokens >= q.cfg.MaxTokensPerMonth {
		return apperr.QuotaExceededf("monthly token quota of %d exceeded", q.cfg.MaxTokensPerMonth)
	}
	return nil
}

// startOfBillingPeriod returns the first instant of t's calendar month,
// the billing-period start UsageSince sums from.
func startOfBillingPeriod(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
