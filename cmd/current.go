package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/nefumc/pgrds/catalog"
)

var currentCmd = &cobra.Command{
	Use:   "current <extension>",
	Short: "Show the installed version of an extension",
	Long:  `Looks up the version currently recorded for an extension in pg_extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCurrent,
}

func init() {
	rootCmd.AddCommand(currentCmd)
}

func runCurrent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("current requires database_url (or --database-url)")
	}

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	version, err := catalog.NewPGCatalog(conn, slog.Default()).CurrentVersion(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
