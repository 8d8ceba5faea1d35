package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true,
}

// Validate performs structural validation on the config.
func (c Config) Validate() error {
	var errs []string

	if c.ShareDir == "" {
		errs = append(errs, "share_dir is required")
	}
	if c.DatabaseURL == "" && len(c.SearchPath) == 0 {
		errs = append(errs, "either database_url or search_path must be set")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "shutdown_timeout must be > 0")
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	for _, s := range c.SearchPath {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, "search_path entries must not be empty")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
