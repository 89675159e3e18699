// Command board is a terminal kanban client for the dashboard API. Tasks and
// columns are moved with keyboard drag gestures.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"org-dashboard-backend/pkg/client"
	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/kanban"
	"org-dashboard-backend/pkg/querycache"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		server  string
		token   string
		org     string
		natsURL string
		policy  string
	)

	cmd := &cobra.Command{
		Use:          "board",
		Short:        "Terminal kanban board for the organization dashboard",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("an access token is required (--token or DASHBOARD_TOKEN)")
			}
			if org == "" {
				org = orgFromToken(token)
			}
			p, err := parsePolicy(policy)
			if err != nil {
				return err
			}

			queries := client.NewQueries(client.New(server, token), querycache.New(), org)
			m := newModel(cmd.Context(), queries, p)
			prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

			if natsURL != "" {
				bus, err := invalidation.ConnectNATS(natsURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
				if err != nil {
					return fmt.Errorf("connect invalidation bus: %w", err)
				}
				defer bus.Close()
				stop, err := queries.Listen(bus, func(invalidation.Event) { prog.Send(staleMsg{}) })
				if err != nil {
					return err
				}
				defer stop()
			}

			_, err = prog.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", envOr("DASHBOARD_URL", "http://localhost:3000"), "Dashboard API base URL")
	cmd.Flags().StringVarP(&token, "token", "t", os.Getenv("DASHBOARD_TOKEN"), "Access token")
	cmd.Flags().StringVar(&org, "org", "", "Organization ID (defaults to the token's org)")
	cmd.Flags().StringVar(&natsURL, "nats", os.Getenv("NATS_URL"), "NATS URL for live invalidation")
	cmd.Flags().StringVar(&policy, "persist", "over", "When task moves are saved: over or drop")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePolicy(s string) (kanban.PersistPolicy, error) {
	switch strings.ToLower(s) {
	case "", "over":
		return kanban.PersistOnOver, nil
	case "drop":
		return kanban.PersistOnDrop, nil
	default:
		return 0, fmt.Errorf("unknown persist policy %q", s)
	}
}

// orgFromToken reads the org claim without verifying the signature; the
// server verifies it on every request.
func orgFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	org, _ := claims["org_id"].(string)
	return org
}
