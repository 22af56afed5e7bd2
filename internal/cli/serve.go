package cli

import (
	"github.com/nikbrunner/dex/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the import and notification HTTP functions",
		Long: `Serve POST /functions/v1/import-pokemon and
POST /functions/v1/send-pokemon-notification until interrupted. When
server.import_schedule is set, imports also run on that cron schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc := a.cfg.Server
			if addr == "" {
				addr = sc.Addr
			}

			im := a.importer()
			srv := server.New(ctx, server.Config{
				Addr: addr,
				RateLimit: server.RateLimitConfig{
					RequestsPerSecond: sc.RequestsPerSecond,
					Burst:             sc.Burst,
				},
			}, im, a.notifier())

			if sc.ImportSchedule != "" {
				sched, err := server.NewImportScheduler(ctx, sc.ImportSchedule, im, sc.ImportStart, sc.ImportEnd)
				if err != nil {
					return err
				}
				sched.Start(ctx)
				defer sched.Stop()
			} else {
				log.Ctx(ctx).Debug().Msg("no import schedule configured")
			}

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8787)")
	return cmd
}
