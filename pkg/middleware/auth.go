package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

// ContextKey 用于在context中存储会话信息的键
type ContextKey string

const (
	SessionContextKey ContextKey = "session"
	sessionHolderKey  ContextKey = "session-holder"
)

// TokenValidator resolves a bearer token into the caller session
type TokenValidator interface {
	ValidateAccessToken(token string) (models.Session, error)
}

// AuthMiddleware JWT认证中间件. The resolved session is stored in the request
// context; an organization is not required here, the actions enforce it.
func AuthMiddleware(tokens TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				utils.WriteUnauthorizedResponse(w, "Missing or malformed authorization header")
				return
			}

			sess, err := tokens.ValidateAccessToken(tokenString)
			if err != nil {
				logger.Debug("rejected token", "path", r.URL.Path, "error", err)
				message := "Invalid token"
				if errors.Is(err, utils.ErrTokenExpired) {
					message = "Token expired"
				}
				utils.WriteUnauthorizedResponse(w, message)
				return
			}

			if holder, ok := r.Context().Value(sessionHolderKey).(*sessionHolder); ok {
				holder.set(sess)
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	// 检查Bearer前缀
	tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || strings.TrimSpace(tokenString) == "" {
		return "", false
	}
	return strings.TrimSpace(tokenString), true
}

// WithSession stores sess in ctx
func WithSession(ctx context.Context, sess models.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, sess)
}

// GetSessionFromContext 从context中获取会话信息
func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(SessionContextKey).(models.Session)
	return sess, ok
}

// SessionFrom returns the session in ctx or the zero session, which every
// action rejects with an auth error.
func SessionFrom(ctx context.Context) models.Session {
	sess, _ := GetSessionFromContext(ctx)
	return sess
}

type sessionHolder struct {
	mu   sync.Mutex
	sess *models.Session
}

func (h *sessionHolder) set(sess models.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sess = &sess
}

func (h *sessionHolder) get() (models.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess == nil {
		return models.Session{}, false
	}
	return *h.sess, true
}

func withSessionHolder(ctx context.Context, h *sessionHolder) context.Context {
	return context.WithValue(ctx, sessionHolderKey, h)
}
