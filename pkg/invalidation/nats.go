package invalidation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is the root of every invalidation subject
const SubjectPrefix = "dashboard"

// ErrInvalidOrgID is returned when an organization ID cannot be used as a
// single subject token
var ErrInvalidOrgID = errors.New("organization id is not a valid subject token")

// Subject returns the NATS subject for an organization's invalidations.
// The ID must be one non-empty token: no whitespace, '.', '*' or '>'.
func Subject(orgID string) (string, error) {
	if orgID == "" || strings.ContainsAny(orgID, ".*> \t\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrgID, orgID)
	}
	return fmt.Sprintf("%s.%s.invalidate", SubjectPrefix, orgID), nil
}

// NATSBus publishes and subscribes to invalidation events over NATS
type NATSBus struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// ConnectNATS dials url and returns a bus owning the connection
func ConnectNATS(url string, logger *slog.Logger) (*NATSBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("org-dashboard"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSBus{conn: conn, logger: logger}, nil
}

// Publish encodes event as JSON on the organization's subject.
// NATS publish does not take a context, so cancellation is checked up front.
func (b *NATSBus) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	subject, err := Subject(event.OrgID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode invalidation event: %w", err)
	}
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish invalidation event: %w", err)
	}
	return nil
}

// Subscribe delivers decoded events for orgID to handler
func (b *NATSBus) Subscribe(orgID string, handler Handler) (func(), error) {
	subject, err := Subject(orgID)
	if err != nil {
		return nil, err
	}
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.logger.Warn("dropping malformed invalidation event", "subject", msg.Subject, "error", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			b.logger.Warn("failed to unsubscribe", "subject", sub.Subject, "error", err)
		}
	}, nil
}

// Close drains pending messages and closes the connection
func (b *NATSBus) Close() error {
	if b.conn.IsClosed() {
		return nil
	}
	return b.conn.Drain()
}
