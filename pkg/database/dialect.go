package database

import (
	"strconv"
	"strings"
)

// dialect captures the differences between the supported SQL backends.
// Queries are always written with $N placeholders.
type dialect struct {
	name string
	// numbered reports native support for $N placeholders
	numbered bool
	schema   []string
}

// rebind rewrites $N placeholders to positional ? markers and reorders args
// to match, so a query may reference the same placeholder more than once.
func (d dialect) rebind(query string, args []any) (string, []any) {
	if d.numbered || !strings.Contains(query, "$") {
		return query, args
	}

	var b strings.Builder
	b.Grow(len(query))
	out := make([]any, 0, len(args))

	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte(c)
			continue
		}
		n, err := strconv.Atoi(query[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			// leave malformed placeholders for the driver to reject
			b.WriteString(query[i:j])
		} else {
			b.WriteByte('?')
			out = append(out, args[n-1])
		}
		i = j - 1
	}
	return b.String(), out
}

var postgresDialect = dialect{
	name:     DriverPostgres,
	numbered: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			author_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_org_created ON posts (organization_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
			category TEXT NOT NULL,
			photo_url TEXT,
			author_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_org_created ON products (organization_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#3b82f6',
			position INTEGER NOT NULL DEFAULT 0,
			organization_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_org_position ON board_columns (organization_id, position)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL CHECK (status IN ('TODO', 'IN_PROGRESS', 'DONE')),
			column_id TEXT REFERENCES board_columns (id) ON DELETE SET NULL,
			author_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_org_created ON tasks (organization_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks (column_id)`,
	},
}

var sqliteDialect = dialect{
	name: DriverSQLite,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT,
			published BOOLEAN NOT NULL DEFAULT 0,
			author_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_org_created ON posts (organization_id, created_at DESC)`,
		// price is TEXT so decimals round-trip exactly
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price TEXT NOT NULL DEFAULT '0',
			category TEXT NOT NULL,
			photo_url TEXT,
			author_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_org_created ON products (organization_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#3b82f6',
			position INTEGER NOT NULL DEFAULT 0,
			organization_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_org_position ON board_columns (organization_id, position)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL CHECK (status IN ('TODO', 'IN_PROGRESS', 'DONE')),
			column_id TEXT REFERENCES board_columns (id) ON DELETE SET NULL,
			author_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_org_created ON tasks (organization_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks (column_id)`,
	},
}

// managedTables lists the tables created by Migrate, in dependency order
var managedTables = []string{"posts", "products", "board_columns", "tasks"}
