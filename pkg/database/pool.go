package database

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// connectionTTL bounds how long an idle cached connection is trusted
const connectionTTL = 30 * time.Minute

// DatabasePool caches one store per process so warm serverless invocations
// reuse the connection.
type DatabasePool struct {
	instance DatabaseInterface
	config   DatabaseConfig
	mu       sync.RWMutex
	lastUsed time.Time
}

var (
	globalPool *DatabasePool
	poolMutex  sync.Mutex

	// opener is swapped in tests
	opener = NewDatabase
)

// GetDatabase 获取数据库连接（单例模式 + 连接池）
func GetDatabase(ctx context.Context, config DatabaseConfig) (DatabaseInterface, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool != nil && !shouldRecreateConnection(ctx, globalPool, config) {
		globalPool.mu.Lock()
		globalPool.lastUsed = time.Now()
		globalPool.mu.Unlock()

		slog.Debug("reusing existing database connection")
		return globalPool.instance, nil
	}

	slog.Info("creating new database connection pool", "driver", config.Driver)

	if globalPool != nil && globalPool.instance != nil {
		if err := globalPool.instance.Close(); err != nil {
			slog.Warn("failed to close previous database", "error", err)
		}
		globalPool = nil
	}

	instance, err := opener(ctx, config)
	if err != nil {
		return nil, err
	}
	globalPool = &DatabasePool{
		instance: instance,
		config:   config,
		lastUsed: time.Now(),
	}
	return instance, nil
}

// shouldRecreateConnection 判断是否需要重新创建连接
func shouldRecreateConnection(ctx context.Context, pool *DatabasePool, newConfig DatabaseConfig) bool {
	if pool == nil || pool.instance == nil {
		return true
	}

	if pool.config != newConfig {
		slog.Info("database configuration changed, recreating connection")
		return true
	}

	pool.mu.RLock()
	expired := time.Since(pool.lastUsed) > connectionTTL
	pool.mu.RUnlock()

	if expired {
		slog.Info("database connection expired, recreating")
		return true
	}

	if err := pool.instance.HealthCheck(ctx); err != nil {
		slog.Warn("database health check failed, recreating", "error", err)
		return true
	}

	return false
}

// CleanupIdleConnections closes the cached store once it has been idle for maxIdle
func CleanupIdleConnections(maxIdle time.Duration) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return
	}

	globalPool.mu.RLock()
	idle := time.Since(globalPool.lastUsed) > maxIdle
	globalPool.mu.RUnlock()

	if idle {
		slog.Info("cleaning up idle database connection")
		if globalPool.instance != nil {
			_ = globalPool.instance.Close()
		}
		globalPool = nil
	}
}

// GetConnectionStats 获取连接池统计信息
func GetConnectionStats() map[string]interface{} {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return map[string]interface{}{
			"status":    "no_connection",
			"last_used": nil,
		}
	}

	globalPool.mu.RLock()
	lastUsed := globalPool.lastUsed
	globalPool.mu.RUnlock()

	return map[string]interface{}{
		"status":    "connected",
		"last_used": lastUsed.Format(time.RFC3339),
		"age":       time.Since(lastUsed).String(),
		"driver":    globalPool.config.Driver,
	}
}
