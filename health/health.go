// Package health reports whether the resolver's two external dependencies
// — the share directory and the catalog connection — are usable.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
)

// Status represents the health state of a dependency.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Probe checks one dependency. A nil error means up.
type Probe func(ctx context.Context) error

// Checker evaluates registered probes on each request.
type Checker struct {
	mu     sync.RWMutex
	probes map[string]Probe
}

// NewChecker creates a Checker with no registered probes.
func NewChecker() *Checker {
	return &Checker{probes: make(map[string]Probe)}
}

// Register adds a named probe.
func (c *Checker) Register(name string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = p
}

type response struct {
	Status     Status            `json:"status"`
	Components map[string]Status `json:"components"`
}

// ServeHTTP runs every probe and responds with the aggregated status.
// Returns 200 when all probes pass, 503 when any fails.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	probes := make(map[string]Probe, len(c.probes))
	for name, p := range c.probes {
		probes[name] = p
	}
	c.mu.RUnlock()

	overall := StatusUp
	comps := make(map[string]Status, len(probes))
	for name, p := range probes {
		if err := p(r.Context()); err != nil {
			comps[name] = StatusDown
			overall = StatusDown
		} else {
			comps[name] = StatusUp
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if overall == StatusDown {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(response{
		Status:     overall,
		Components: comps,
	})
}

// ShareDirProbe checks that the extension subdirectory of the share dir
// exists and is a directory.
func ShareDirProbe(dir string) Probe {
	return func(context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return &os.PathError{Op: "stat", Path: dir, Err: os.ErrInvalid}
		}
		return nil
	}
}

// Pinger is satisfied by *pgx.Conn and pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogProbe checks database connectivity.
func CatalogProbe(p Pinger) Probe {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}
