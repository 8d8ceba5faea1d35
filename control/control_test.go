package control_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nefumc/pgrds/control"
	"github.com/nefumc/pgrds/pgrdserr"
)

// writeControl places a control file into a share-dir layout rooted at a
// temp directory and returns the share dir.
func writeControl(t *testing.T, name, content string) string {
	t.Helper()
	shareDir := t.TempDir()
	extDir := filepath.Join(shareDir, "extension")
	if err := os.MkdirAll(extDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(extDir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write control file: %v", err)
	}
	return shareDir
}

func TestRead_Basic(t *testing.T) {
	shareDir := writeControl(t, "hstore.control", `
# hstore extension
comment = 'data type for storing sets of (key, value) pairs'
default_version = '1.8'
module_pathname = '$libdir/hstore'
relocatable = true
`)

	r := control.NewReader(shareDir, nil)
	d, err := r.Read("hstore")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := d.DefaultVersion(); got != "1.8" {
		t.Errorf("DefaultVersion = %q, want 1.8", got)
	}
	if got := d.Schema(); got != "" {
		t.Errorf("Schema = %q, want empty", got)
	}
	if v, ok := d.Get("relocatable"); !ok || v != "true" {
		t.Errorf("Get(relocatable) = %q, %v", v, ok)
	}
}

func TestRead_SchemaKey(t *testing.T) {
	shareDir := writeControl(t, "pgrds.control", `
default_version = '1.2'
schema = 'public'
`)

	r := control.NewReader(shareDir, nil)
	d, err := r.Read("pgrds")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := d.Schema(); got != "public" {
		t.Errorf("Schema = %q, want public", got)
	}
}

func TestRead_FirstOccurrenceWins(t *testing.T) {
	shareDir := writeControl(t, "dup.control", `
default_version = '1.0'
schema = 'first'
default_version = '2.0'
schema = 'second'
`)

	r := control.NewReader(shareDir, nil)
	d, err := r.Read("dup")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := d.DefaultVersion(); got != "1.0" {
		t.Errorf("DefaultVersion = %q, want 1.0 (first occurrence)", got)
	}
	if got := d.Schema(); got != "first" {
		t.Errorf("Schema = %q, want first (first occurrence)", got)
	}
}

func TestRead_QuotedValues(t *testing.T) {
	shareDir := writeControl(t, "quoted.control", `
comment = 'it''s quoted'
default_version = 1.4
`)

	r := control.NewReader(shareDir, nil)
	d, err := r.Read("quoted")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v, _ := d.Get("comment"); v != "it's quoted" {
		t.Errorf("comment = %q", v)
	}
	if got := d.DefaultVersion(); got != "1.4" {
		t.Errorf("DefaultVersion = %q, want 1.4 (unquoted value)", got)
	}
}

func TestRead_Missing(t *testing.T) {
	r := control.NewReader(t.TempDir(), nil)
	_, err := r.Read("nosuch")
	if err == nil {
		t.Fatal("expected error for missing control file")
	}

	var notFound *pgrdserr.ControlFileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ControlFileNotFoundError, got %T: %v", err, err)
	}
	if notFound.Extension != "nosuch" {
		t.Errorf("Extension = %q, want nosuch", notFound.Extension)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("should unwrap to os.ErrNotExist")
	}
}

func TestRead_SyntaxError(t *testing.T) {
	shareDir := writeControl(t, "bad.control", "this line has no equals sign\n")

	r := control.NewReader(shareDir, nil)
	if _, err := r.Read("bad"); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestList_SkipsAuxiliaryFiles(t *testing.T) {
	shareDir := t.TempDir()
	extDir := filepath.Join(shareDir, "extension")
	if err := os.MkdirAll(extDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, f := range []string{"hstore.control", "hstore--1.5.control", "citext.control", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(extDir, f), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}

	r := control.NewReader(shareDir, nil)
	names, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"citext", "hstore"}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestReadVersion_AuxiliaryFile(t *testing.T) {
	shareDir := writeControl(t, "hstore--1.5.control", "schema = 'hstore_legacy'\n")

	r := control.NewReader(shareDir, nil)
	d, err := r.ReadVersion("hstore", "1.5")
	if err != nil {
		t.Fatalf("ReadVersion: %v", err)
	}
	if got := d.Schema(); got != "hstore_legacy" {
		t.Errorf("Schema = %q, want hstore_legacy", got)
	}
}
