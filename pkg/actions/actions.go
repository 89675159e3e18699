// Package actions is the mutation boundary used by every transport. Each call
// takes an explicit session, delegates to the scoped services, publishes cache
// invalidations on success and converts failures into user-facing errors.
package actions

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"org-dashboard-backend/pkg/apperror"
	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/metrics"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/services"
)

// Identity failures
var (
	ErrNoOrganization   = apperror.Auth("Organization not found")
	ErrNotAuthenticated = apperror.Auth("User not authenticated")
)

// Actions exposes every dashboard operation
type Actions struct {
	posts    services.PostService
	products services.ProductService
	tasks    services.TaskService
	columns  services.ColumnService
	overview services.OverviewService

	publisher invalidation.Publisher
	metrics   *metrics.Metrics
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures Actions
type Option func(*Actions)

// WithPublisher sets where invalidation events go
func WithPublisher(p invalidation.Publisher) Option {
	return func(a *Actions) {
		if p != nil {
			a.publisher = p
		}
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Actions) {
		a.metrics = m
	}
}

// WithLogger sets the logger used for rejected and failed actions
func WithLogger(l *slog.Logger) Option {
	return func(a *Actions) {
		if l != nil {
			a.logger = l
		}
	}
}

// New wires the services over db
func New(db database.DatabaseInterface, opts ...Option) *Actions {
	a := &Actions{
		posts:     services.NewPostService(db),
		products:  services.NewProductService(db),
		tasks:     services.NewTaskService(db),
		columns:   services.NewColumnService(db),
		overview:  services.NewOverviewService(db),
		publisher: invalidation.Nop{},
		validator: newValidator(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func requireOrg(sess models.Session) error {
	if sess.OrgID == "" {
		return ErrNoOrganization
	}
	return nil
}

// requireMember is the stricter check used by creates, which record an author
func requireMember(sess models.Session) error {
	if err := requireOrg(sess); err != nil {
		return err
	}
	if sess.UserID == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// run executes fn under the action's name, recording metrics and surfacing errors.
// Domain errors keep their message; anything else becomes failure.
func run[T any](ctx context.Context, a *Actions, name, failure string, fn func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := fn(ctx)
	if err != nil {
		err = a.surface(name, failure, err)
	}
	a.metrics.ObserveAction(name, err, time.Since(start))
	return result, err
}

func (a *Actions) surface(name, failure string, err error) error {
	if apperror.IsDomain(err) {
		a.logger.Info("action rejected", "action", name, "kind", apperror.KindOf(err), "error", err)
		return err
	}
	a.logger.Error("action failed", "action", name, "error", err)
	return apperror.Unknown(failure, err)
}

// invalidate publishes the stale keys. The mutation already committed, so a
// publish failure is logged and otherwise ignored.
func (a *Actions) invalidate(ctx context.Context, orgID string, keys ...invalidation.Key) {
	event := invalidation.Event{OrgID: orgID, Keys: keys, At: a.now().UTC()}
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Warn("failed to publish invalidation", "org_id", orgID, "error", err)
	}
}

func collection(entity string) invalidation.Key {
	return invalidation.Key{Entity: entity}
}

func record(entity, id string) invalidation.Key {
	return invalidation.Key{Entity: entity, ID: id}
}
