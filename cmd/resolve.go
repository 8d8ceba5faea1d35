package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/nefumc/pgrds/allowlist"
	"github.com/nefumc/pgrds/catalog"
	"github.com/nefumc/pgrds/control"
	"github.com/nefumc/pgrds/internal/config"
	"github.com/nefumc/pgrds/resolve"
	"github.com/nefumc/pgrds/searchpath"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <extension>",
	Short: "Resolve the effective schema and versions for an extension",
	Long: `Computes the {schema, old_version, new_version} triple for installing or
upgrading an extension. Explicit flags always win over control file defaults;
the search path supplies the schema only when both are silent.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	f := resolveCmd.Flags()
	f.String("schema", "", "target schema (overrides the control file)")
	f.String("old-version", "", "version to upgrade from (upgrade mode only)")
	f.String("new-version", "", "version to install (overrides default_version)")
	f.Bool("upgrade", false, "resolve an upgrade: fetch old_version from the catalog when not given")
	f.Bool("skip-allowlist", false, "do not enforce the extension allowlist")
	f.Bool("json", false, "print the result as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	extension := args[0]
	ctx := cmd.Context()
	logger := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	skipAllowlist, _ := cmd.Flags().GetBool("skip-allowlist")
	if !skipAllowlist {
		allowed := allowlist.Parse(cfg.AllowedExtensions)
		if !allowed.Allowed(extension) {
			return fmt.Errorf("extension %q is not on the allowlist", extension)
		}
	}

	var opts resolve.Options
	for flag, opt := range map[string]string{
		"schema":      "schema",
		"old-version": "old_version",
		"new-version": "new_version",
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			opts = append(opts, resolve.String(opt, v))
		}
	}

	resolver, cleanup, err := buildResolver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	upgrade, _ := cmd.Flags().GetBool("upgrade")
	var props resolve.Properties
	if upgrade {
		props, err = resolver.ResolveUpgrade(ctx, extension, opts)
	} else {
		props, err = resolver.Resolve(ctx, extension, opts)
	}
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(props)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema:      %s\n", props.Schema)
	if props.OldVersion != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "old_version: %s\n", props.OldVersion)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "new_version: %s\n", props.NewVersion)
	return nil
}

// buildResolver wires the resolver from config. With a database URL the
// search path and catalog come from the live session; otherwise the
// configured static path is used and upgrades need an explicit old version.
func buildResolver(ctx context.Context, cfg config.Config, logger *slog.Logger) (*resolve.Resolver, func(), error) {
	reader := control.NewReader(cfg.ShareDir, logger)

	if cfg.DatabaseURL == "" {
		return resolve.New(reader, searchpath.Static(cfg.SearchPath), nil, logger), func() {}, nil
	}

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	cleanup := func() { _ = conn.Close(context.Background()) }

	resolver := resolve.New(
		reader,
		searchpath.NewPGSearchPath(conn, logger),
		catalog.NewPGCatalog(conn, logger),
		logger,
	)
	return resolver, cleanup, nil
}
