package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	handler "org-dashboard-backend/api"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/logging"
	"org-dashboard-backend/pkg/metrics"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serveCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Init(os.Stderr, cfg)
	if cfg.UsesDefaultSecret() {
		logger.Warn("using default JWT secret (not recommended for production)")
	}

	db, err := database.NewDatabase(ctx, handler.DatabaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()

	var publisher invalidation.Publisher = invalidation.Nop{}
	if cfg.NATSURL != "" {
		bus, err := invalidation.ConnectNATS(cfg.NATSURL, logger)
		if err != nil {
			return fmt.Errorf("connect invalidation bus: %w", err)
		}
		defer bus.Close()
		publisher = bus
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	router := handler.NewRouter(handler.Deps{
		Config:    cfg,
		DB:        db,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes, then verify them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := logging.Init(os.Stderr, cfg)
			return migrate(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		},
	}
}

func migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	dbCfg := handler.DatabaseConfig(cfg)
	logger.Info("connecting to database", "driver", dbCfg.Driver, "dsn", redactDSN(dbCfg.PostgresDSN), "path", dbCfg.SQLitePath)

	// NewDatabase pings before returning
	db, err := database.NewDatabase(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	counts, err := db.VerifyTables(ctx)
	if err != nil {
		return fmt.Errorf("verify tables: %w", err)
	}
	for table, n := range counts {
		fmt.Fprintf(out, "%s: %d rows\n", table, n)
	}
	logger.Info("database ready", "tables", len(counts))
	return nil
}

func tokenCmd(configPath *string) *cobra.Command {
	var (
		userID string
		orgID  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("refusing to mint tokens in production")
			}
			tok, err := mintToken(cfg.JWTSecret, models.Session{UserID: userID, OrgID: orgID}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID (required)")
	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID")
	cmd.Flags().DurationVar(&ttl, "ttl", utils.AccessTokenTTL, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func mintToken(secret string, sess models.Session, ttl time.Duration) (string, error) {
	if sess.UserID == "" {
		return "", errors.New("user is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	tok, _, err := utils.NewJWTService(secret).GenerateToken(sess, models.TokenTypeAccess, ttl)
	return tok, err
}

// redactDSN hides the password of a URL-style DSN
func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
