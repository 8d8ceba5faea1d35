package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nefumc/pgrds/allowlist"
	"github.com/nefumc/pgrds/control"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List extensions available in the share directory",
	Long:  `Lists every extension with a control file under <share_dir>/extension, with its default version, target schema, and allowlist status.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader := control.NewReader(cfg.ShareDir, slog.Default())
	allowed := allowlist.Parse(cfg.AllowedExtensions)

	names, err := reader.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDEFAULT VERSION\tSCHEMA\tALLOWED")
	for _, name := range names {
		version, schema := "?", ""
		if d, err := reader.Read(name); err == nil {
			version = d.DefaultVersion()
			schema = d.Schema()
		}
		mark := ""
		if allowed.Allowed(name) {
			mark = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, version, schema, mark)
	}
	return w.Flush()
}
