package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/dex/internal/tui"
	"github.com/spf13/cobra"
)

// runTUI runs the full interactive TUI.
func runTUI(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()

	params := tui.AppParams{
		Context:         ctx,
		Session:         a.sess,
		Searcher:        a.newSearcher(cmd),
		Debounce:        a.cfg.Search.DebounceDelay(),
		SuggestionGrace: a.cfg.Search.SuggestionGrace(),
	}
	if a.sess.IsAdmin() {
		params.Moderator = a.admin()
	}

	p := tea.NewProgram(tui.NewApp(params), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
