// Package cli wires configuration, storage and the planner into the
// odincal command tree.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"odincal/internal/config"
	appLog "odincal/internal/log"
	"odincal/internal/planner"
	"odincal/internal/store"
	"odincal/internal/store/sqlite"
)

// App holds the state shared by every subcommand.
type App struct {
	ConfigPath string
	Verbose    bool

	conf   *config.Config
	loc    *time.Location
	kv     store.KV
	events *planner.Events
	roster *planner.Roster

	// now is overridable in tests.
	now func() time.Time
}

// NewRootCmd builds the odincal command tree.
func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:          "odincal",
		Short:        "Activity planner for game characters",
		SilenceUsage: true,
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if skipsOpen(cmd) {
			return nil
		}
		return app.open(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", config.DefaultPath(), "Path to config file")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newAgendaCmd(app))
	cmd.AddCommand(newResetGlobalCmd(app))
	cmd.AddCommand(newExportICSCmd(app))
	cmd.AddCommand(newImportICSCmd(app))

	return cmd
}

// skipsOpen reports whether cmd only prints help or completion scripts and
// so must not touch the config file or the database.
func skipsOpen(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// open loads config, opens the database and seeds first-run state.
func (a *App) open(cmd *cobra.Command) error {
	conf, err := config.Load(a.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", a.ConfigPath, err)
	}
	if err := conf.ApplyEnv(); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	a.conf = conf

	level := appLog.ParseLevel(conf.LogLevel)
	if a.Verbose {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)
	if cmd.Name() != "serve" {
		appLog.Console()
	}

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("unknown timezone; using local time", err, "timezone", conf.Timezone)
	}
	a.loc = loc

	kv, err := sqlite.New(conf.DataPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.kv = kv

	opts := planner.Options{
		Location:         loc,
		HalfRangeDays:    conf.HalfRangeDays,
		MaxSubCharacters: conf.MaxSubCharacters,
		Now:              a.now,
	}
	a.events = planner.NewEvents(kv, opts)
	a.roster = planner.NewRoster(kv, opts)

	ctx := cmd.Context()
	if err := a.events.Init(ctx); err != nil {
		return err
	}
	if err := a.roster.Init(ctx); err != nil {
		return err
	}

	appLog.Debug("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"data_path", conf.DataPath,
		"half_range_days", conf.HalfRangeDays,
		"max_sub_characters", conf.MaxSubCharacters,
	)
	return nil
}

func (a *App) close() error {
	if a.kv == nil {
		return nil
	}
	err := a.kv.Close()
	a.kv = nil
	return err
}
