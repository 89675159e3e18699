package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"org-dashboard-backend/pkg/actions"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/handlers"
	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/metrics"
	customMiddleware "org-dashboard-backend/pkg/middleware"
	"org-dashboard-backend/pkg/utils"
)

// Version is stamped at build time
var Version = "dev"

const maxBodyBytes = 1 << 20

// Deps are the collaborators the router is built from
type Deps struct {
	Config    *config.Config
	DB        database.DatabaseInterface
	Publisher invalidation.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

var (
	serverlessOnce   sync.Once
	serverlessRouter http.Handler
	serverlessErr    error
)

// Handler 是Serverless函数的入口点
// 所有API端点集中在一个Chi路由器中管理, built once per cold start.
func Handler(w http.ResponseWriter, r *http.Request) {
	serverlessOnce.Do(func() {
		serverlessRouter, serverlessErr = buildServerless(r.Context())
	})
	if serverlessErr != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+serverlessErr.Error())
		return
	}
	serverlessRouter.ServeHTTP(w, r)
}

func buildServerless(ctx context.Context) (http.Handler, error) {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 连接由连接池管理，无需手动关闭
	db, err := database.GetDatabase(context.WithoutCancel(ctx), DatabaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var publisher invalidation.Publisher = invalidation.Nop{}
	if cfg.NATSURL != "" {
		bus, err := invalidation.ConnectNATS(cfg.NATSURL, slog.Default())
		if err != nil {
			slog.Warn("invalidation bus unavailable", "error", err)
		} else {
			publisher = bus
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	return NewRouter(Deps{
		Config:    cfg,
		DB:        db,
		Publisher: publisher,
		Metrics:   m,
		Logger:    slog.Default(),
	}), nil
}

// DatabaseConfig derives the store settings from cfg
func DatabaseConfig(cfg *config.Config) database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:      cfg.DatabaseDriver,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	}
}

// NewRouter wires middleware, handlers and routes
func NewRouter(deps Deps) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	acts := actions.New(deps.DB,
		actions.WithPublisher(deps.Publisher),
		actions.WithMetrics(deps.Metrics),
		actions.WithLogger(deps.Logger),
	)

	router := chi.NewRouter()
	setupMiddleware(router, deps)
	setupRoutes(router, deps, acts)
	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, deps Deps) {
	cfg := deps.Config

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.RequestLogger(deps.Logger))
	router.Use(customMiddleware.Recovery(cfg, deps.Logger))
	if deps.Metrics != nil {
		router.Use(customMiddleware.Metrics(deps.Metrics))
	}

	router.Use(customMiddleware.CORS(cfg))
	if cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, deps Deps, acts *actions.Actions) {
	cfg := deps.Config

	dashboardHandler := handlers.NewDashboardHandler(cfg, deps.DB, acts, Version)
	postHandler := handlers.NewPostHandler(cfg, acts)
	productHandler := handlers.NewProductHandler(cfg, acts)
	taskHandler := handlers.NewTaskHandler(cfg, acts)
	columnHandler := handlers.NewColumnHandler(cfg, acts)

	// 健康检查端点
	router.Get("/", dashboardHandler.HealthCheck)

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// 数据库连接池状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.AuthMiddleware(utils.NewJWTService(cfg.JWTSecret), deps.Logger))
		r.Use(customMiddleware.ContentTypeJSON)
		r.Use(customMiddleware.MaxBodySize(maxBodyBytes))

		r.Get("/overview", dashboardHandler.Overview)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)
			r.Post("/", postHandler.CreatePost)
			r.Get("/{id}", postHandler.GetPost)
			r.Patch("/{id}", postHandler.UpdatePost)
			r.Delete("/{id}", postHandler.DeletePost)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/categories", productHandler.Categories)
			r.Get("/{id}", productHandler.GetProduct)
			r.Patch("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/{id}", taskHandler.GetTask)
			r.Patch("/{id}", taskHandler.UpdateTask)
			r.Delete("/{id}", taskHandler.DeleteTask)
		})

		r.Route("/columns", func(r chi.Router) {
			r.Get("/", columnHandler.ListColumns)
			r.Post("/", columnHandler.CreateColumn)
			r.Put("/order", columnHandler.ReorderColumns)
			r.Get("/{id}", columnHandler.GetColumn)
			r.Patch("/{id}", columnHandler.UpdateColumn)
			r.Delete("/{id}", columnHandler.DeleteColumn)
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
