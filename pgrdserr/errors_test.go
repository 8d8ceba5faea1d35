package pgrdserr_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/nefumc/pgrds/pgrdserr"
)

func TestErrNoSchemaSelected(t *testing.T) {
	err := fmt.Errorf("resolve: %w", pgrdserr.ErrNoSchemaSelected)
	if !errors.Is(err, pgrdserr.ErrNoSchemaSelected) {
		t.Error("errors.Is should match ErrNoSchemaSelected")
	}
	if pgrdserr.ErrNoSchemaSelected.Error() != "no schema has been selected to create in" {
		t.Errorf("unexpected message: %q", pgrdserr.ErrNoSchemaSelected.Error())
	}
}

func TestControlFileNotFoundError(t *testing.T) {
	err := &pgrdserr.ControlFileNotFoundError{
		Extension: "hstore",
		Path:      "/usr/share/postgresql/extension/hstore.control",
		Err:       os.ErrNotExist,
	}

	var target *pgrdserr.ControlFileNotFoundError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match ControlFileNotFoundError")
	}
	if target.Extension != "hstore" {
		t.Errorf("Extension = %q, want hstore", target.Extension)
	}

	// Unwrap
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should match underlying cause via Unwrap")
	}

	// Wrapped
	wrapped := fmt.Errorf("read control: %w", err)
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should match through wrapping")
	}
}

func TestExtensionNotInstalledError(t *testing.T) {
	err := &pgrdserr.ExtensionNotInstalledError{Extension: "pgcrypto"}
	want := `extension "pgcrypto" does not exist`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCorruptCatalogError(t *testing.T) {
	err := &pgrdserr.CorruptCatalogError{Extension: "hstore", Field: "extversion"}
	var target *pgrdserr.CorruptCatalogError
	if !errors.As(fmt.Errorf("lookup: %w", err), &target) {
		t.Fatal("errors.As should match through wrapping")
	}
	if target.Field != "extversion" {
		t.Errorf("Field = %q, want extversion", target.Field)
	}
}
