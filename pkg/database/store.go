package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLDatabase implements DatabaseInterface on database/sql for every supported dialect
type SQLDatabase struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
	newID   func() string
}

// Option customises a SQLDatabase
type Option func(*SQLDatabase)

// WithClock overrides the timestamp source. Values are stored in UTC.
func WithClock(now func() time.Time) Option {
	return func(s *SQLDatabase) {
		s.now = now
	}
}

// WithIDGenerator overrides uuid-based ID assignment
func WithIDGenerator(newID func() string) Option {
	return func(s *SQLDatabase) {
		s.newID = newID
	}
}

func newSQLDatabase(db *sql.DB, d dialect, opts ...Option) *SQLDatabase {
	s := &SQLDatabase{
		db:      db,
		dialect: d,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver returns the dialect name
func (s *SQLDatabase) Driver() string {
	return s.dialect.name
}

func (s *SQLDatabase) timestamp() time.Time {
	return s.now().UTC()
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLDatabase) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	query, args = s.dialect.rebind(query, args)
	return q.ExecContext(ctx, query, args...)
}

func (s *SQLDatabase) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	query, args = s.dialect.rebind(query, args)
	return q.QueryContext(ctx, query, args...)
}

func (s *SQLDatabase) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	query, args = s.dialect.rebind(query, args)
	return q.QueryRowContext(ctx, query, args...)
}

// withTx runs fn in a transaction, committing only when fn succeeds
func (s *SQLDatabase) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Assignment is a single column = value pair of a partial update
type Assignment struct {
	Column string
	Value  any
}

// Patch is an ordered set of column assignments. An empty patch changes nothing,
// including updated_at.
type Patch []Assignment

// Set appends an assignment
func (p *Patch) Set(column string, value any) {
	*p = append(*p, Assignment{Column: column, Value: value})
}

// Empty reports whether the patch has no assignments
func (p Patch) Empty() bool {
	return len(p) == 0
}

// Has reports whether column is assigned
func (p Patch) Has(column string) bool {
	for _, a := range p {
		if a.Column == column {
			return true
		}
	}
	return false
}

// updateRow applies patch to the org-scoped row. Column names are checked
// against allowed before they reach the SQL text.
func (s *SQLDatabase) updateRow(ctx context.Context, table string, allowed map[string]bool, id, orgID string, patch Patch) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	if patch.Empty() {
		return s.rowExists(ctx, table, id, orgID)
	}

	setClauses := make([]string, 0, len(patch)+1)
	args := make([]any, 0, len(patch)+3)
	idx := 1

	add := func(col string, val any) {
		setClauses = append(setClauses, fmt.Sprintf("%s=$%d", col, idx))
		args = append(args, val)
		idx++
	}

	for _, a := range patch {
		if !allowed[a.Column] {
			return fmt.Errorf("column %q is not updatable on %s", a.Column, table)
		}
		add(a.Column, a.Value)
	}
	add("updated_at", s.timestamp())

	args = append(args, id, orgID)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id=$%d AND organization_id=$%d",
		table, strings.Join(setClauses, ", "), idx, idx+1)

	res, err := s.exec(ctx, s.db, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return requireAffected(res)
}

func (s *SQLDatabase) rowExists(ctx context.Context, table, id, orgID string) error {
	var one int
	err := s.queryRow(ctx, s.db,
		fmt.Sprintf("SELECT 1 FROM %s WHERE id=$1 AND organization_id=$2", table), id, orgID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *SQLDatabase) deleteRow(ctx context.Context, q querier, table, id, orgID string) error {
	res, err := s.exec(ctx, q, fmt.Sprintf("DELETE FROM %s WHERE id=$1 AND organization_id=$2", table), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return requireAffected(res)
}

func (s *SQLDatabase) count(ctx context.Context, table string, where *whereBuilder) (int, error) {
	var n int
	if err := s.queryRow(ctx, s.db, "SELECT COUNT(*) FROM "+table+where.String(), where.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// whereBuilder accumulates AND-ed conditions with sequential $N placeholders.
// Each expr carries a single %d verb for the placeholder index.
type whereBuilder struct {
	clauses []string
	args    []any
}

func scopedTo(orgID string) *whereBuilder {
	w := &whereBuilder{}
	w.add("organization_id=$%d", orgID)
	return w
}

func (w *whereBuilder) add(expr string, value any) {
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, fmt.Sprintf(expr, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// Migrate creates the schema if it does not exist
func (s *SQLDatabase) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// VerifyTables returns the row count of every managed table
func (s *SQLDatabase) VerifyTables(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(managedTables))
	for _, table := range managedTables {
		n, err := s.count(ctx, table, &whereBuilder{})
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

// HealthCheck 健康检查
func (s *SQLDatabase) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接
func (s *SQLDatabase) Close() error {
	return s.db.Close()
}
