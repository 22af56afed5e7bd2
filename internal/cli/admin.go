package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nikbrunner/dex/internal/admin"
	"github.com/nikbrunner/dex/internal/importer"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Curate the catalog (admin role required)",
	}
	cmd.AddCommand(
		newAdminAddCmd(a),
		newAdminEntryCmd(a, "deactivate", "Soft-delete an entry", func(cmd *cobra.Command, id int) error {
			if err := a.admin().Deactivate(cmd.Context(), id); err != nil {
				return err
			}
			printSuccess(cmd, "Deactivated #%d", id)
			return nil
		}),
		newAdminEntryCmd(a, "hide", "Hide an entry from search", func(cmd *cobra.Command, id int) error {
			if err := a.admin().SetHidden(cmd.Context(), id, true); err != nil {
				return err
			}
			printSuccess(cmd, "Hid #%d", id)
			return nil
		}),
		newAdminEntryCmd(a, "unhide", "Show a hidden entry in search again", func(cmd *cobra.Command, id int) error {
			if err := a.admin().SetHidden(cmd.Context(), id, false); err != nil {
				return err
			}
			printSuccess(cmd, "Unhid #%d", id)
			return nil
		}),
		newAdminStatsCmd(a),
		newAdminImportCmd(a),
		newAdminNotifyCmd(a),
		newAdminSeedCmd(a),
		newAdminGrantCmd(a),
	)
	return cmd
}

func newAdminAddCmd(a *app) *cobra.Command {
	var (
		params      model.NewEntryParams
		detailsPath string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a catalog entry by hand",
		Example: `  dex admin add --id 152 --name chikorita --height 9 --weight 64 --details chikorita.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if detailsPath != "" {
				data, err := os.ReadFile(detailsPath)
				if err != nil {
					return err
				}
				if !json.Valid(data) {
					return fmt.Errorf("%s is not valid JSON", detailsPath)
				}
				params.Details = data
			}

			e, err := a.admin().AddEntry(cmd.Context(), params)
			if err != nil {
				return err
			}
			if a.opts.json {
				return printJSON(cmd.OutOrStdout(), newEntryView(*e, a.sess.Library))
			}
			printSuccess(cmd, "Added %s #%d", e.DisplayName(), e.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&params.ID, "id", 0, "PokeAPI id")
	f.StringVar(&params.Name, "name", "", "name")
	f.IntVar(&params.Height, "height", 0, "height in decimetres")
	f.IntVar(&params.Weight, "weight", 0, "weight in hectograms")
	f.StringVar(&params.SpeciesURL, "species-url", "", "PokeAPI species URL")
	f.StringVar(&detailsPath, "details", "", "JSON file with types, abilities, stats and sprites")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAdminEntryCmd(a *app, use, short string, fn func(*cobra.Command, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return fn(cmd, id)
		},
	}
}

func newAdminStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset and usage counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.admin().Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.opts.json {
				return printJSON(out, st)
			}
			fmt.Fprintf(out, "Users             %d\n", st.Users)
			fmt.Fprintf(out, "Library rows      %d\n", st.LibraryRows)
			fmt.Fprintf(out, "Favorite rows     %d\n", st.FavoriteRows)
			fmt.Fprintf(out, "Active entries    %d\n", st.ActiveEntries)
			fmt.Fprintf(out, "Hidden entries    %d\n", st.HiddenEntries)
			fmt.Fprintf(out, "Inactive entries  %d\n", st.InactiveEntries)
			return nil
		},
	}
}

func newAdminImportCmd(a *app) *cobra.Command {
	var start, end int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a range of ids from PokeAPI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.admin().ImportRange(cmd.Context(), start, end, progress(cmd.ErrOrStderr(), "importing"))
			if err != nil {
				return err
			}
			if a.opts.json {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printSuccess(cmd, "Successfully imported Pokemon %d to %d (%d entries)", start, end, res.Imported)
			if len(res.Failed) > 0 {
				errorLabel.Fprintf(cmd.OutOrStdout(), "Failed ids: %v\n", res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", importer.DefaultStart, "first id")
	cmd.Flags().IntVar(&end, "end", importer.DefaultEnd, "last id")
	return cmd
}

func newAdminNotifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notify <id>",
		Short: "Email opted-in users about an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := a.admin().Notify(cmd.Context(), id, progress(cmd.ErrOrStderr(), "sending"))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.opts.json {
				return printJSON(out, res)
			}
			printSuccess(cmd, "%s", res.Message)
			if res.Details != nil {
				for _, r := range res.Details.Results {
					if !r.Success {
						errorLabel.Fprintf(out, "  ✗ %s: %s\n", r.Email, r.Error)
					}
				}
			}
			return nil
		},
	}
}

func newAdminSeedCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Apply a JSON or YAML seed file, or write one with --dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			if dump {
				if !a.sess.IsAdmin() {
					return fmt.Errorf("dump: %w", admin.ErrNotAuthorized)
				}
				seed, err := a.store.DumpSeed(ctx)
				if err != nil {
					return err
				}
				if err := storage.SaveSeed(path, seed); err != nil {
					return err
				}
				printSuccess(cmd, "Wrote %d entries and %d profiles to %s", len(seed.Entries), len(seed.Profiles), path)
				return nil
			}

			if _, err := os.Stat(path); err != nil {
				return err
			}
			seed, err := storage.LoadSeed(path)
			if err != nil {
				return fmt.Errorf("load seed %s: %w", path, err)
			}
			if err := a.admin().Seed(ctx, seed); err != nil {
				return err
			}
			printSuccess(cmd, "Applied %d entries and %d profiles", len(seed.Entries), len(seed.Profiles))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "write the current catalog and profiles to <file>")
	return cmd
}

func newAdminGrantCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <user>",
		Short: "Give a user the admin role",
		Long: `Give a user the admin role. While no admin exists yet, you may grant the
role to yourself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// Make sure the target has a profile row to update.
			if _, err := a.sessions.Profiles().Get(ctx, args[0]); err != nil {
				return err
			}
			if err := a.admin().Grant(ctx, args[0]); err != nil {
				return err
			}
			printSuccess(cmd, "%s is now an admin", args[0])
			return nil
		},
	}
}
