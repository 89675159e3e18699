package actions

import (
	"context"

	"org-dashboard-backend/pkg/models"
)

// GetOverview returns the dashboard summary counts
func (a *Actions) GetOverview(ctx context.Context, sess models.Session) (*models.Overview, error) {
	return run(ctx, a, "getOverview", "Failed to fetch overview", func(ctx context.Context) (*models.Overview, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.overview.Get(ctx, sess.OrgID)
	})
}
