// Package catalog answers "which version of this extension is installed"
// from the pg_extension system catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/nefumc/pgrds/pgrdserr"
)

// VersionSource reports the currently installed version of an extension.
type VersionSource interface {
	// CurrentVersion returns the version recorded for the named extension.
	// Returns *pgrdserr.ExtensionNotInstalledError when no record exists.
	CurrentVersion(ctx context.Context, extension string) (string, error)
}

// Querier is the subset of pgx used by PGCatalog. Both *pgx.Conn and pgx.Tx
// satisfy it, so lookups can run inside the caller's open transaction and
// observe that transaction's own installs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGCatalog looks up installed extensions in pg_catalog.pg_extension.
type PGCatalog struct {
	db     Querier
	logger *slog.Logger
}

// NewPGCatalog creates a catalog over an existing connection or transaction.
func NewPGCatalog(db Querier, logger *slog.Logger) *PGCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGCatalog{
		db:     db,
		logger: logger.With("component", "catalog"),
	}
}

// CurrentVersion performs an exact, case-sensitive lookup by extension name.
func (c *PGCatalog) CurrentVersion(ctx context.Context, extension string) (string, error) {
	var version *string
	err := c.db.QueryRow(ctx,
		"SELECT extversion FROM pg_catalog.pg_extension WHERE extname = $1",
		extension,
	).Scan(&version)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", &pgrdserr.ExtensionNotInstalledError{Extension: extension}
	}
	if err != nil {
		return "", fmt.Errorf("lookup extension %q: %w", extension, err)
	}
	// extversion is NOT NULL in a healthy catalog; a null here means the
	// catalog itself is damaged.
	if version == nil {
		return "", &pgrdserr.CorruptCatalogError{Extension: extension, Field: "extversion"}
	}

	c.logger.Debug("current version resolved", "extension", extension, "version", *version)
	return *version, nil
}

// Mem is an in-memory VersionSource for tests and offline resolution.
type Mem struct {
	mu       sync.RWMutex
	versions map[string]string
}

// NewMem creates an empty in-memory catalog.
func NewMem() *Mem {
	return &Mem{versions: make(map[string]string)}
}

// Install records an extension at the given version, overwriting any
// previous record.
func (m *Mem) Install(extension, version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[extension] = version
}

// Remove drops the record for an extension, if any.
func (m *Mem) Remove(extension string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.versions, extension)
}

// CurrentVersion implements VersionSource.
func (m *Mem) CurrentVersion(_ context.Context, extension string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.versions[extension]
	if !ok {
		return "", &pgrdserr.ExtensionNotInstalledError{Extension: extension}
	}
	return v, nil
}

// Installed returns the recorded extension names in sorted order.
func (m *Mem) Installed() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.versions))
	for name := range m.versions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
