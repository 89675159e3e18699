package handlers

import (
	"net/http"
	"time"

	"org-dashboard-backend/pkg/actions"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/utils"
)

// DashboardHandler serves the overview and the health check
type DashboardHandler struct {
	config  *config.Config
	db      database.DatabaseInterface
	actions *actions.Actions
	version string
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(cfg *config.Config, db database.DatabaseInterface, a *actions.Actions, version string) *DashboardHandler {
	return &DashboardHandler{config: cfg, db: db, actions: a, version: version}
}

// Overview returns the organization's dashboard counts
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.actions.GetOverview(r.Context(), session(r))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, overview)
}

// HealthCheck 健康检查
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "healthy"
	if err := h.db.HealthCheck(r.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"service":     "org-dashboard-backend",
		"version":     h.version,
		"environment": h.config.Environment,
		"database":    h.databaseType(),
		"db_status":   dbStatus,
		"timestamp":   time.Now().Unix(),
		"status":      status,
	})
}

// databaseType 获取数据库类型
func (h *DashboardHandler) databaseType() string {
	if d, ok := h.db.(interface{ Driver() string }); ok {
		return d.Driver()
	}
	return "unknown"
}
