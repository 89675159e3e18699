package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"org-dashboard-backend/pkg/models"
)

// ErrNotFound is returned when a row is absent or belongs to another organization.
// The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

// DatabaseInterface 定义数据库访问接口
// Every read and write is scoped by organization ID.
type DatabaseInterface interface {
	// Posts
	ListPosts(ctx context.Context, orgID string, filter PostFilter) ([]models.Post, error)
	GetPost(ctx context.Context, id, orgID string) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, id, orgID string, patch Patch) (*models.Post, error)
	DeletePost(ctx context.Context, id, orgID string) error
	CountPosts(ctx context.Context, orgID string, filter PostFilter) (int, error)

	// Products
	ListProducts(ctx context.Context, orgID string, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id, orgID string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id, orgID string, patch Patch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id, orgID string) error
	CountProducts(ctx context.Context, orgID string, filter ProductFilter) (int, error)

	// Tasks
	ListTasks(ctx context.Context, orgID string, filter TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id, orgID string) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, id, orgID string, patch Patch) (*models.Task, error)
	DeleteTask(ctx context.Context, id, orgID string) error
	CountTasks(ctx context.Context, orgID string, filter TaskFilter) (int, error)

	// Columns
	ListColumns(ctx context.Context, orgID string) ([]models.Column, error)
	GetColumn(ctx context.Context, id, orgID string) (*models.Column, error)
	CreateColumn(ctx context.Context, column *models.Column) error
	UpdateColumn(ctx context.Context, id, orgID string, patch Patch) (*models.Column, error)
	// DeleteColumn removes the column and unassigns its tasks in one transaction.
	DeleteColumn(ctx context.Context, id, orgID string) error
	// ReorderColumns sets order = index for every ID atomically. Any ID outside
	// the organization fails the whole batch with ErrNotFound.
	ReorderColumns(ctx context.Context, orgID string, ids []string) error
	CountColumns(ctx context.Context, orgID string) (int, error)

	// Schema
	Migrate(ctx context.Context) error
	VerifyTables(ctx context.Context) (map[string]int, error)

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 关闭连接
	Close() error
}

// PostFilter narrows post lists and counts
type PostFilter struct {
	AuthorID  string
	Published *bool
}

// ProductFilter narrows product lists and counts
type ProductFilter struct {
	AuthorID string
	Category string
}

// TaskFilter narrows task lists and counts
type TaskFilter struct {
	AuthorID string
	Status   models.TaskStatus
	ColumnID string
}

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver      string
	PostgresDSN string
	SQLitePath  string
	Debug       bool
}

// NewDatabase 根据配置选择数据库实现
func NewDatabase(ctx context.Context, config DatabaseConfig) (DatabaseInterface, error) {
	driver := strings.ToLower(strings.TrimSpace(config.Driver))
	if driver == "" {
		// Serverless deployments only ever talk to Postgres
		if isServerlessEnvironment() || config.PostgresDSN != "" {
			driver = DriverPostgres
		} else {
			driver = DriverSQLite
		}
	}

	switch driver {
	case DriverPostgres:
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres driver selected but POSTGRES_DSN is empty")
		}
		slog.Info("using postgres database")
		db, err := NewPostgresDatabase(ctx, config.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	case DriverSQLite:
		path := config.SQLitePath
		if path == "" {
			path = "dashboard.db"
		}
		slog.Info("using sqlite database", "path", path)
		db, err := NewSQLiteDatabase(ctx, path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
}

// isServerlessEnvironment 内部检查 Vercel / Lambda 环境
func isServerlessEnvironment() bool {
	return os.Getenv("VERCEL_ENV") != "" ||
		os.Getenv("VERCEL_URL") != "" ||
		os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}
