package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresDatabase 创建PostgreSQL数据库实例
func NewPostgresDatabase(ctx context.Context, dsn string, opts ...Option) (*SQLDatabase, error) {
	// Try a few connection variants; serverless runtimes are picky about TLS and timeouts.
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&connect_timeout=10"),
		dsn, // 最后尝试原始DSN
	}

	var lastErr error
	for i, strategy := range strategies {
		slog.Debug("trying postgres connection strategy", "strategy", i+1)

		db, err := sql.Open("postgres", strategy)
		if err != nil {
			slog.Warn("postgres strategy failed to open", "strategy", i+1, "error", err)
			lastErr = err
			continue
		}

		// 设置连接池参数，适合无服务器环境
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			slog.Warn("postgres strategy failed to ping", "strategy", i+1, "error", err)
			_ = db.Close()
			lastErr = err
			continue
		}

		slog.Info("postgres connection established", "strategy", i+1)
		return newSQLDatabase(db, postgresDialect, opts...), nil
	}

	return nil, fmt.Errorf("failed to connect to postgres with all strategies: %w", lastErr)
}

// addConnectionParams 添加连接参数到DSN
// Key/value DSNs get space-separated params, URLs get a query string.
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}

	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn + " " + strings.ReplaceAll(params, "&", " ")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + params
}
