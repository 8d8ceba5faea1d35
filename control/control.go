// Package control reads extension control files: the static key = value
// descriptors that declare an extension's default version and target schema.
// Files live under <share_dir>/extension/<name>.control, with optional
// version-specific auxiliary files named <name>--<version>.control.
package control

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nefumc/pgrds/pgrdserr"
)

// Descriptor holds the parsed key/value pairs of one control file.
// Only default_version and schema are consumed by the resolver; the other
// keys stay accessible through Get.
type Descriptor struct {
	Extension string
	Path      string
	fields    map[string]string
}

// Get returns the value for key and whether it was present.
func (d *Descriptor) Get(key string) (string, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// DefaultVersion returns the default_version entry, or "" if absent.
func (d *Descriptor) DefaultVersion() string {
	return d.fields["default_version"]
}

// Schema returns the schema entry, or "" if absent.
func (d *Descriptor) Schema() string {
	return d.fields["schema"]
}

// Reader locates and parses control files under a fixed share directory.
// The share directory is explicit configuration, not process-global state.
type Reader struct {
	shareDir string
	logger   *slog.Logger
}

// NewReader creates a Reader rooted at shareDir.
func NewReader(shareDir string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		shareDir: shareDir,
		logger:   logger.With("component", "control"),
	}
}

// Path returns the location of the primary control file for an extension.
func (r *Reader) Path(extension string) string {
	return filepath.Join(r.shareDir, "extension", extension+".control")
}

// Read parses the primary control file for the named extension.
// A missing or unreadable file is a hard error, never "no defaults".
func (r *Reader) Read(extension string) (*Descriptor, error) {
	return r.read(extension, r.Path(extension))
}

// ReadVersion parses the auxiliary control file for one specific version
// of the extension (<name>--<version>.control). The property resolver only
// ever reads the primary file; this exists for upgrade-script tooling.
func (r *Reader) ReadVersion(extension, version string) (*Descriptor, error) {
	path := filepath.Join(r.shareDir, "extension",
		fmt.Sprintf("%s--%s.control", extension, version))
	return r.read(extension, path)
}

func (r *Reader) read(extension, path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &pgrdserr.ControlFileNotFoundError{
			Extension: extension,
			Path:      path,
			Err:       err,
		}
	}
	defer func() { _ = f.Close() }()

	d := &Descriptor{
		Extension: extension,
		Path:      path,
		fields:    make(map[string]string),
	}

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: syntax error in control file: %q", path, lineno, line)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%s:%d: syntax error in control file: empty key", path, lineno)
		}
		value = unquote(strings.TrimSpace(value))

		// First occurrence wins; later duplicates are ignored.
		if _, seen := d.fields[key]; !seen {
			d.fields[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r.logger.Debug("control file parsed",
		"extension", extension,
		"path", path,
		"default_version", d.DefaultVersion(),
		"schema", d.Schema())

	return d, nil
}

// List returns the names of all extensions with a primary control file
// under the share directory, sorted. Auxiliary <name>--<version>.control
// files are skipped.
func (r *Reader) List() ([]string, error) {
	pattern := filepath.Join(r.shareDir, "extension", "*.control")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	var names []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".control")
		if strings.Contains(name, "--") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// unquote strips one level of single quotes and unescapes doubled quotes,
// the quoting convention of the GUC file format.
func unquote(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return strings.ReplaceAll(v[1:len(v)-1], "''", "'")
	}
	return v
}
