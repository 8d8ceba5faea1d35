package pgrdserr

import (
	"errors"
	"fmt"
)

// ErrNoSchemaSelected is returned when neither the statement options, the
// control file, nor the search path yield a usable target schema. The message
// matches the one PostgreSQL emits in the same situation.
var ErrNoSchemaSelected = errors.New("no schema has been selected to create in")

// ControlFileNotFoundError indicates that an extension's control file is
// missing or unreadable at its expected location.
type ControlFileNotFoundError struct {
	Extension string
	Path      string
	Err       error
}

func (e *ControlFileNotFoundError) Error() string {
	return fmt.Sprintf("could not open extension control file %q: %v", e.Path, e.Err)
}

func (e *ControlFileNotFoundError) Unwrap() error {
	return e.Err
}

// ExtensionNotInstalledError indicates a catalog lookup for an extension
// that has no record in pg_extension.
type ExtensionNotInstalledError struct {
	Extension string
}

func (e *ExtensionNotInstalledError) Error() string {
	return fmt.Sprintf("extension %q does not exist", e.Extension)
}

// CorruptCatalogError indicates a catalog record that exists but lacks a
// required field. This is an internal-invariant violation of the catalog,
// not a user error.
type CorruptCatalogError struct {
	Extension string
	Field     string
}

func (e *CorruptCatalogError) Error() string {
	return fmt.Sprintf("catalog record for extension %q has null %s", e.Extension, e.Field)
}
