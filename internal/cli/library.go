package cli

import (
	"fmt"
	"time"

	"github.com/nikbrunner/dex/internal/exporter"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/search"
	"github.com/spf13/cobra"
)

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage your library",
	}
	cmd.AddCommand(
		newLibraryListCmd(a),
		newMembershipCmd(a, "add", "Add entries to your library", func(cmd *cobra.Command, e model.Entry) error {
			if err := a.sess.Library.AddToLibrary(cmd.Context(), e); err != nil {
				return err
			}
			printSuccess(cmd, "Added %s to library", e.DisplayName())
			return nil
		}),
		newMembershipCmd(a, "remove", "Remove entries from your library", func(cmd *cobra.Command, e model.Entry) error {
			if err := a.sess.Library.RemoveFromLibrary(cmd.Context(), e.ID); err != nil {
				return err
			}
			printSuccess(cmd, "Removed %s from library", e.DisplayName())
			return nil
		}),
		newLibraryExportCmd(a),
	)
	return cmd
}

func newFavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favorites"},
		Short:   "Manage favorites",
	}
	cmd.AddCommand(
		newMembershipCmd(a, "add", "Mark entries as favorites", func(cmd *cobra.Command, e model.Entry) error {
			if err := a.sess.Library.AddToFavorites(cmd.Context(), e); err != nil {
				return err
			}
			printSuccess(cmd, "Added %s to favorites", e.DisplayName())
			return nil
		}),
		newMembershipCmd(a, "remove", "Unmark favorites", func(cmd *cobra.Command, e model.Entry) error {
			if err := a.sess.Library.RemoveFromFavorites(cmd.Context(), e.ID); err != nil {
				return err
			}
			printSuccess(cmd, "Removed %s from favorites", e.DisplayName())
			return nil
		}),
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List favorites",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				entries, err := a.sess.Library.Favorites(cmd.Context())
				if err != nil {
					return err
				}
				return a.printEntries(cmd, entries, "No favorites yet")
			},
		},
	)
	return cmd
}

// newMembershipCmd builds an add/remove subcommand that applies fn to each referenced entry.
func newMembershipCmd(a *app, use, short string, fn func(*cobra.Command, model.Entry) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name|id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ref := range args {
				e, err := a.resolveEntry(cmd, ref)
				if err != nil {
					return err
				}
				if err := fn(cmd, *e); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newLibraryListCmd(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List library entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.sess.Library.Entries(cmd.Context())
			if err != nil {
				return err
			}
			if filter != "" {
				matches := search.FilterEntries(entries, filter)
				entries = make([]model.Entry, len(matches))
				for i, m := range matches {
					entries[i] = m.Entry
				}
			}
			return a.printEntries(cmd, entries, "Library is empty")
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy filter by name")
	return cmd
}

func (a *app) printEntries(cmd *cobra.Command, entries []model.Entry, empty string) error {
	out := cmd.OutOrStdout()
	if a.opts.json {
		return printJSON(out, entryViews(entries, a.sess.Library))
	}
	if len(entries) == 0 {
		mutedLabel.Fprintln(out, empty)
		return nil
	}
	for _, e := range entries {
		printEntryLine(out, e, a.sess.Library)
	}
	return nil
}

func newLibraryExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export your library to YAML or JSON",
		Long: `Export the library with favorite flags. The format follows the file extension
unless --format is given. Without a path the file goes to
~/Downloads/dex-library-YYYY-MM-DD.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := exporter.Format(format)
			if f != "" && f != exporter.FormatYAML && f != exporter.FormatJSON {
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}

			var path string
			if len(args) == 1 {
				path = args[0]
				if f == "" {
					f = exporter.FormatFromPath(path)
				}
			} else {
				if f == "" {
					f = exporter.FormatYAML
				}
				p, err := exporter.DefaultExportPath(f)
				if err != nil {
					return err
				}
				path = p
			}

			entries, err := a.sess.Library.Entries(cmd.Context())
			if err != nil {
				return err
			}
			doc := exporter.NewDocument(a.sess.UserID(), entries, a.sess.Library, time.Now())

			if path == "-" {
				return exporter.Write(cmd.OutOrStdout(), doc, f)
			}
			if err := exporter.WriteFile(path, doc, f); err != nil {
				return err
			}
			printSuccess(cmd, "Exported %d entries to %s", doc.Count, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "yaml or json")
	return cmd
}
