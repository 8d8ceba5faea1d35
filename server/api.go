package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nefumc/pgrds/allowlist"
	"github.com/nefumc/pgrds/control"
	"github.com/nefumc/pgrds/metrics"
	"github.com/nefumc/pgrds/pgrdserr"
	"github.com/nefumc/pgrds/resolve"
)

// Server exposes property resolution over HTTP.
type Server struct {
	resolver *resolve.Resolver
	reader   *control.Reader
	allowed  *allowlist.List
	logger   *slog.Logger
}

// New creates a Server around a configured resolver.
func New(resolver *resolve.Resolver, reader *control.Reader, allowed *allowlist.List, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		resolver: resolver,
		reader:   reader,
		allowed:  allowed,
		logger:   logger.With("component", "server"),
	}
}

// Handler returns the chi router with the resolution REST API.
//
//	POST /api/v1/resolve          — resolve install properties
//	POST /api/v1/resolve/upgrade  — resolve upgrade properties
//	GET  /api/v1/extensions       — list extensions with control files
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Post("/api/v1/resolve", s.handleResolve(false))
	r.Post("/api/v1/resolve/upgrade", s.handleResolve(true))
	r.Get("/api/v1/extensions", s.handleListExtensions)

	return r
}

// resolveRequest mirrors the statement option list: an ordered sequence of
// named entries whose value may be null (flag-only).
type resolveRequest struct {
	Extension string `json:"extension"`
	Options   []struct {
		Name  string  `json:"name"`
		Value *string `json:"value"`
	} `json:"options"`
}

func (s *Server) handleResolve(upgrade bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
		if req.Extension == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "extension is required"})
			return
		}

		if !s.allowed.Allowed(req.Extension) {
			metrics.AllowlistRejections.Inc()
			s.logger.Warn("extension not on allowlist", "extension", req.Extension)
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "extension " + req.Extension + " is not allowed",
			})
			return
		}

		opts := make(resolve.Options, 0, len(req.Options))
		for _, o := range req.Options {
			opts = append(opts, resolve.Option{Name: o.Name, Value: o.Value})
		}

		var (
			props resolve.Properties
			err   error
		)
		if upgrade {
			props, err = s.resolver.ResolveUpgrade(r.Context(), req.Extension, opts)
		} else {
			props, err = s.resolver.Resolve(r.Context(), req.Extension, opts)
		}
		if err != nil {
			writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, props)
	}
}

type extensionInfo struct {
	Name           string `json:"name"`
	DefaultVersion string `json:"default_version,omitempty"`
	Schema         string `json:"schema,omitempty"`
	Allowed        bool   `json:"allowed"`
}

func (s *Server) handleListExtensions(w http.ResponseWriter, r *http.Request) {
	names, err := s.reader.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	infos := make([]extensionInfo, 0, len(names))
	for _, name := range names {
		info := extensionInfo{Name: name, Allowed: s.allowed.Allowed(name)}
		if d, err := s.reader.Read(name); err == nil {
			info.DefaultVersion = d.DefaultVersion()
			info.Schema = d.Schema()
		}
		infos = append(infos, info)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"extensions": infos,
		"count":      len(infos),
	})
}

// statusFor maps resolution error kinds to HTTP statuses. Catalog damage is
// the only 500; everything else is a client-visible condition.
func statusFor(err error) int {
	var (
		notFound     *pgrdserr.ControlFileNotFoundError
		notInstalled *pgrdserr.ExtensionNotInstalledError
		corrupt      *pgrdserr.CorruptCatalogError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &notInstalled):
		return http.StatusNotFound
	case errors.Is(err, pgrdserr.ErrNoSchemaSelected):
		return http.StatusConflict
	case errors.As(err, &corrupt):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
