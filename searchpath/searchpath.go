// Package searchpath picks the default creation schema: the first entry of
// the active search_path, the same rule PostgreSQL applies when a CREATE
// statement names no schema.
package searchpath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/nefumc/pgrds/pgrdserr"
)

// Source yields the ordered candidate schema names of the active search path.
type Source interface {
	Default(ctx context.Context) ([]string, error)
}

// Verifier is optionally implemented by a Source that can check whether a
// schema still exists. A schema can be dropped between computing the search
// path and using its first entry; a Source that can detect this maps the
// case to the same no-schema-selected error as an empty path.
type Verifier interface {
	Exists(ctx context.Context, schema string) (bool, error)
}

// DefaultSchema returns the first entry of the source's search path.
// An empty path, or a first entry that no longer exists, both yield
// pgrdserr.ErrNoSchemaSelected.
func DefaultSchema(ctx context.Context, src Source) (string, error) {
	path, err := src.Default(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch search path: %w", err)
	}
	if len(path) == 0 {
		return "", pgrdserr.ErrNoSchemaSelected
	}

	first := path[0]
	if v, ok := src.(Verifier); ok {
		exists, err := v.Exists(ctx, first)
		if err != nil {
			return "", fmt.Errorf("verify schema %q: %w", first, err)
		}
		if !exists {
			return "", pgrdserr.ErrNoSchemaSelected
		}
	}
	return first, nil
}

// Static is a fixed search path, used by tests and by offline resolution
// where no database connection is available.
type Static []string

// Default implements Source.
func (s Static) Default(context.Context) ([]string, error) {
	return s, nil
}

// Querier is the subset of pgx used by PGSearchPath.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGSearchPath reads the session's effective search path from PostgreSQL.
type PGSearchPath struct {
	db     Querier
	logger *slog.Logger
}

// NewPGSearchPath creates a Source over an existing connection or transaction.
func NewPGSearchPath(db Querier, logger *slog.Logger) *PGSearchPath {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGSearchPath{
		db:     db,
		logger: logger.With("component", "searchpath"),
	}
}

// Default returns current_schemas(false): the explicit search_path entries
// that resolve to existing schemas, implicit system schemas excluded.
func (p *PGSearchPath) Default(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx,
		"SELECT s FROM unnest(pg_catalog.current_schemas(false)) AS s")
	if err != nil {
		return nil, fmt.Errorf("current_schemas: %w", err)
	}
	defer rows.Close()

	var path []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan search path entry: %w", err)
		}
		path = append(path, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read search path: %w", err)
	}

	p.logger.Debug("search path fetched", "path", path)
	return path, nil
}

// Exists implements Verifier against pg_catalog.pg_namespace.
func (p *PGSearchPath) Exists(ctx context.Context, schema string) (bool, error) {
	var found bool
	err := p.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_catalog.pg_namespace WHERE nspname = $1)",
		schema,
	).Scan(&found)
	if err != nil {
		return false, err
	}
	return found, nil
}
