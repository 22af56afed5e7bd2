package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/picker"
	"github.com/nikbrunner/dex/internal/search"
	"github.com/spf13/cobra"
)

func (a *app) newSearcher(cmd *cobra.Command) *search.Searcher {
	s := search.NewSearcher(a.store, search.Options{RequireSubstring: a.cfg.Search.RequireSubstring})
	s.Refresh(cmd.Context())
	return s
}

func newSearchCmd(a *app) *cobra.Command {
	var noPick bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search the catalog",
		Long: `Search the catalog by name. With several results an interactive picker opens
and the chosen entry is shown. Use --json or --no-pick for scripting.`,
		Example: `  dex search pika
  dex search chr --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			results, err := a.newSearcher(cmd).Results(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}

			if a.opts.json {
				return printJSON(out, entryViews(results, a.sess.Library))
			}

			switch {
			case len(results) == 0:
				fmt.Fprintf(out, "No Pokemon found for '%s'\n", query)
				return nil
			case len(results) == 1:
				printEntryDetail(out, results[0], a.sess.Library)
				return nil
			case noPick:
				for _, e := range results {
					printEntryLine(out, e, a.sess.Library)
				}
				return nil
			}

			selected, err := pick(cmd, results, query)
			if err != nil || selected == nil {
				return err
			}
			printEntryDetail(out, *selected, a.sess.Library)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPick, "no-pick", false, "list results instead of opening the picker")
	return cmd
}

// pick runs the one-shot picker. A nil entry means the user cancelled.
func pick(cmd *cobra.Command, results []model.Entry, query string) (*model.Entry, error) {
	program := tea.NewProgram(
		picker.New(results, query),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
		tea.WithContext(cmd.Context()),
	)
	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running picker: %w", err)
	}

	p := finalModel.(picker.Picker)
	if p.Cancelled() {
		return nil, nil
	}
	return p.Selected(), nil
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Print name suggestions for a partial query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.newSearcher(cmd).Suggestions(strings.Join(args, " "))
			if names == nil {
				names = []string{}
			}
			if a.opts.json {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "show <name|id>",
		Short:   "Show one catalog entry",
		Example: "  dex show pikachu\n  dex show 25",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.resolveEntry(cmd, args[0])
			if err != nil {
				return err
			}
			if a.opts.json {
				return printJSON(cmd.OutOrStdout(), newEntryView(*e, a.sess.Library))
			}
			printEntryDetail(cmd.OutOrStdout(), *e, a.sess.Library)
			return nil
		},
	}
}
