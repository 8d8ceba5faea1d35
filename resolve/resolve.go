// Package resolve merges the three sources of truth for an extension
// install or upgrade — explicit statement options, the control file on
// disk, and the active search path — into the effective target schema and
// version pair. Precedence is strict: an explicit option is never
// overridden by a control file default, and the search path is consulted
// only when both other sources are silent about the schema.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nefumc/pgrds/catalog"
	"github.com/nefumc/pgrds/control"
	"github.com/nefumc/pgrds/metrics"
	"github.com/nefumc/pgrds/searchpath"
)

// Option is one named entry of a statement option list. Value is nil for
// flag-only options, which count as absent for the keys this package reads.
type Option struct {
	Name  string
	Value *string
}

// Options is the option list of one CREATE/ALTER EXTENSION statement.
// Names are not required to be unique; for the recognized keys the last
// occurrence wins. Unrecognized names are ignored, never rejected — any
// validation of those belongs to the statement parser, not here.
type Options []Option

// String builds an option carrying a literal value.
func String(name, value string) Option {
	return Option{Name: name, Value: &value}
}

// Flag builds an option with no literal value.
func Flag(name string) Option {
	return Option{Name: name}
}

// lookup returns the value of the last occurrence of name. A last
// occurrence without a literal value counts as absent, even when an
// earlier duplicate carried one.
func (o Options) lookup(name string) (string, bool) {
	var last *Option
	for i := range o {
		if o[i].Name == name {
			last = &o[i]
		}
	}
	if last == nil || last.Value == nil {
		return "", false
	}
	return *last.Value, true
}

// Properties is the outcome of a resolution. Schema and NewVersion are
// always set on success; OldVersion only for upgrade flows.
type Properties struct {
	Schema     string `json:"schema"`
	OldVersion string `json:"old_version,omitempty"`
	NewVersion string `json:"new_version"`
}

// ControlSource reads the primary control file for an extension.
// *control.Reader is the production implementation.
type ControlSource interface {
	Read(extension string) (*control.Descriptor, error)
}

// Resolver computes extension properties from options, control files, and
// the search path. The catalog source is consulted only by ResolveUpgrade.
type Resolver struct {
	control ControlSource
	path    searchpath.Source
	catalog catalog.VersionSource
	logger  *slog.Logger
}

// New creates a Resolver. catalog may be nil when only installs are
// resolved; ResolveUpgrade requires it.
func New(ctrl ControlSource, path searchpath.Source, cat catalog.VersionSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		control: ctrl,
		path:    path,
		catalog: cat,
		logger:  logger.With("component", "resolve"),
	}
}

// Resolve computes the effective properties for installing the named
// extension. The checks run in a fixed order:
//
//  1. scan the option list for schema, old_version, new_version;
//  2. if new_version or schema is still missing, read the control file and
//     fill only whichever is still missing;
//  3. if schema is still missing, take the first search path entry.
//
// Every failure is fatal to the whole resolution; no partial result is
// ever returned.
func (r *Resolver) Resolve(ctx context.Context, extension string, opts Options) (Properties, error) {
	start := time.Now()
	props, err := r.resolve(ctx, extension, opts)
	metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Resolutions.WithLabelValues("error").Inc()
		return Properties{}, err
	}
	metrics.Resolutions.WithLabelValues("ok").Inc()
	return props, nil
}

func (r *Resolver) resolve(ctx context.Context, extension string, opts Options) (Properties, error) {
	if extension == "" {
		return Properties{}, fmt.Errorf("extension name must not be empty")
	}

	var props Properties
	var haveSchema, haveNew bool
	props.Schema, haveSchema = opts.lookup("schema")
	props.OldVersion, _ = opts.lookup("old_version")
	props.NewVersion, haveNew = opts.lookup("new_version")

	if !haveNew || !haveSchema {
		desc, err := r.control.Read(extension)
		if err != nil {
			metrics.ControlReads.WithLabelValues("error").Inc()
			return Properties{}, err
		}
		metrics.ControlReads.WithLabelValues("ok").Inc()

		// Fill only what the options left open.
		if !haveNew {
			if v, ok := desc.Get("default_version"); ok {
				props.NewVersion = v
				haveNew = true
			}
		}
		if !haveSchema {
			if s, ok := desc.Get("schema"); ok {
				props.Schema = s
				haveSchema = true
			}
		}
	}

	if !haveNew {
		return Properties{}, fmt.Errorf("version to install for extension %q must be specified", extension)
	}

	if !haveSchema {
		schema, err := searchpath.DefaultSchema(ctx, r.path)
		if err != nil {
			return Properties{}, err
		}
		props.Schema = schema
	}

	r.logger.Debug("properties resolved",
		"extension", extension,
		"schema", props.Schema,
		"old_version", props.OldVersion,
		"new_version", props.NewVersion)

	return props, nil
}

// ResolveUpgrade computes the properties for upgrading an already
// installed extension. When old_version is not given explicitly, the
// currently recorded version is fetched from the catalog first; an
// extension with no catalog record fails here, before any control file
// is touched.
func (r *Resolver) ResolveUpgrade(ctx context.Context, extension string, opts Options) (Properties, error) {
	if _, ok := opts.lookup("old_version"); !ok {
		if r.catalog == nil {
			return Properties{}, fmt.Errorf("upgrade resolution for %q requires a catalog source", extension)
		}
		current, err := r.catalog.CurrentVersion(ctx, extension)
		if err != nil {
			metrics.CatalogLookups.WithLabelValues("error").Inc()
			return Properties{}, err
		}
		metrics.CatalogLookups.WithLabelValues("ok").Inc()
		opts = append(opts, String("old_version", current))
	}
	return r.Resolve(ctx, extension, opts)
}
