package cli

import (
	"fmt"

	"github.com/nikbrunner/dex/internal/storage"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/nikbrunner/dex/internal/cli.version=...".
var (
	version = "dev"
	commit  = "none"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the dex version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version":      version,
					"commit":       commit,
					"configFormat": storage.ConfigFormatVersion,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dex version %s (commit: %s, config format %s)\n",
				version, commit, storage.ConfigFormatVersion)
			return nil
		},
	}
}
