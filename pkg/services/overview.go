package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/models"
)

// OverviewService computes the dashboard summary
type OverviewService interface {
	Get(ctx context.Context, orgID string) (*models.Overview, error)
}

type overviewService struct {
	db database.DatabaseInterface
}

// NewOverviewService creates a new overview service
func NewOverviewService(db database.DatabaseInterface) OverviewService {
	return &overviewService{db: db}
}

// Get runs every count concurrently; the first failure cancels the rest.
func (s *overviewService) Get(ctx context.Context, orgID string) (*models.Overview, error) {
	var (
		overview  = &models.Overview{}
		published = true
		byStatus  = make([]int, len(models.TaskStatuses))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview.Posts, err = s.db.CountPosts(gctx, orgID, database.PostFilter{})
		return err
	})
	g.Go(func() (err error) {
		overview.PublishedPosts, err = s.db.CountPosts(gctx, orgID, database.PostFilter{Published: &published})
		return err
	})
	g.Go(func() (err error) {
		overview.Products, err = s.db.CountProducts(gctx, orgID, database.ProductFilter{})
		return err
	})
	g.Go(func() (err error) {
		overview.Columns, err = s.db.CountColumns(gctx, orgID)
		return err
	})
	for i, status := range models.TaskStatuses {
		g.Go(func() (err error) {
			byStatus[i], err = s.db.CountTasks(gctx, orgID, database.TaskFilter{Status: status})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}

	overview.TasksByStatus = make(map[models.TaskStatus]int, len(byStatus))
	for i, status := range models.TaskStatuses {
		overview.TasksByStatus[status] = byStatus[i]
		overview.Tasks += byStatus[i]
	}
	return overview, nil
}
