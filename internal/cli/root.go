// Package cli implements the dex command line. Running dex without a subcommand
// opens the terminal UI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/nikbrunner/dex/internal/logtrace"
	"github.com/nikbrunner/dex/internal/session"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrAlreadyHandled is returned by commands that already printed their error.
var ErrAlreadyHandled = errors.New("already handled")

// skipSetup marks commands that run without config, logging or a database.
const skipSetup = "skip-setup"

var (
	errorLabel   = color.New(color.FgRed)
	successLabel = color.New(color.FgGreen)
	mutedLabel   = color.New(color.FgHiBlack)
)

type options struct {
	configPath string
	userID     string
	json       bool
}

// app carries what commands share: flags, config, the store and the signed-in session.
type app struct {
	opts options

	cfg      *storage.Config
	store    *storage.SQLiteStorage
	sessions *session.Manager
	sess     *session.Session
	logFile  *os.File
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrAlreadyHandled) {
			errorLabel.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "dex",
		Short: "Search the Pokemon catalog and keep a personal library",
		Long: `dex searches a local Pokemon catalog imported from PokeAPI and keeps a
per-user library of entries with favorites.

Run without arguments to open the terminal UI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}

	root.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "config file (default ~/.config/dex/config.toml)")
	root.PersistentFlags().StringVarP(&a.opts.userID, "user", "u", "", "user id to act as (overrides config)")
	root.PersistentFlags().BoolVarP(&a.opts.json, "json", "j", false, "print JSON output")

	root.AddCommand(
		newSearchCmd(a),
		newSuggestCmd(a),
		newShowCmd(a),
		newLibraryCmd(a),
		newFavCmd(a),
		newProfileCmd(a),
		newAdminCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)

	return root
}

// setup loads .env and config, configures logging, opens the store and signs in.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}
	ctx := cmd.Context()

	dataDir, err := storage.DefaultDataDir()
	if err != nil {
		return err
	}
	if err := storage.LoadEnv(".env", filepath.Join(dataDir, ".env")); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	configPath := a.opts.configPath
	if configPath == "" {
		if configPath, err = storage.DefaultConfigFilePath(); err != nil {
			return err
		}
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if a.opts.userID != "" {
		cfg.User.ID = a.opts.userID
	}
	a.cfg = cfg

	if err := a.initLogger(cmd); err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.store = store
	a.sessions = session.NewManager(store)

	sess, err := a.sessions.SignIn(ctx, cfg.User.ID)
	if err != nil {
		return err
	}
	a.sess = sess

	log.Ctx(ctx).Debug().Str("user", sess.UserID()).Str("db", store.Path()).Msg("signed in")
	return nil
}

// initLogger sends logs to the log file for the TUI and to stderr otherwise.
func (a *app) initLogger(cmd *cobra.Command) error {
	var w io.Writer = zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: color.NoColor}
	if cmd.Parent() == nil {
		f, err := logtrace.OpenLogFile(a.cfg.Log.File)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		w = f
	}
	return logtrace.InitLogger(a.cfg.Log.Level, w)
}

func (a *app) close() {
	if a.sessions != nil {
		a.sessions.SignOut()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
