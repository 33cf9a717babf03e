package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "odincal/internal/log"
	"odincal/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and calendar feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				app.conf.Listen = listen
			}
			return app.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

func (a *App) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := web.NewServer(web.Deps{
		Config:   a.conf,
		Location: a.loc,
		Events:   a.events,
		Roster:   a.roster,
		Now:      a.now,
	})

	// Drop the cached window at the configured rollover so the display
	// advances with the calendar date.
	sched := cron.New(cron.WithLocation(a.loc))
	if _, err := sched.AddFunc(a.conf.Rollover, srv.Rollover); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		<-sched.Stop().Done()
	}()

	appLog.Info("odincal starting",
		"listen", a.conf.Listen,
		"timezone", a.loc.String(),
		"rollover", a.conf.Rollover,
	)

	err := srv.ListenAndServe(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	appLog.Info("odincal exiting")
	return err
}
