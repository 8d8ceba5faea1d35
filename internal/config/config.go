package config

import "time"

type Config struct {
	// DatabaseURL is the connection string used for catalog lookups and
	// search path resolution. Empty means offline mode: the CLI falls back
	// to the configured SearchPath and no catalog is available.
	DatabaseURL string `mapstructure:"database_url"`

	// ShareDir is the PostgreSQL share directory; control files are read
	// from <share_dir>/extension.
	ShareDir string `mapstructure:"share_dir"`

	// SearchPath is the schema fallback used when no database connection
	// provides one.
	SearchPath []string `mapstructure:"search_path"`

	// AllowedExtensions is the comma-separated allowlist. Empty permits
	// nothing.
	AllowedExtensions string `mapstructure:"allowed_extensions"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	ListenAddr      string        `mapstructure:"listen_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func Default() Config {
	return Config{
		ShareDir:        "/usr/share/postgresql",
		SearchPath:      []string{"public"},
		LogLevel:        "info",
		LogFormat:       "text",
		ListenAddr:      ":8080",
		ShutdownTimeout: 5 * time.Second,
	}
}
