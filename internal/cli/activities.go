package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"odincal/internal/ics"
	appLog "odincal/internal/log"
	"odincal/internal/model"
	"odincal/internal/schedule"
)

func newResetGlobalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-global",
		Short: "Restore the built-in global events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.events.ResetGlobal(cmd.Context(), app.now()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "global events reset")
			return nil
		},
	}
}

func newExportICSCmd(app *App) *cobra.Command {
	var (
		out       string
		character string
	)

	cmd := &cobra.Command{
		Use:   "export-ics",
		Short: "Write the expanded window as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.events.Processed(cmd.Context(), app.now())
			if err != nil {
				return err
			}
			occ := p.Occurrences
			if character != "" {
				occ = schedule.FilterFor(occ, &character)
			}
			body := ics.Export(occ, ics.ExportConfig{Stamp: app.now()})

			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return err
			}
			appLog.Info("ics exported", "path", out, "events", len(occ))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&character, "character", "", "Limit to global events plus this character's")
	return cmd
}

func newImportICSCmd(app *App) *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "import-ics <file|url>",
		Short: "Import events from an iCalendar file or URL for a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, _, ok, err := app.roster.GetCharacter(ctx, character); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("unknown character %q", character)
			}

			body, err := ics.NewFetcher(app.conf.ICSCacheDir).Read(ctx, args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			parsed, err := ics.ParseICS(body, app.loc)
			if err != nil {
				return err
			}

			imported := 0
			for _, a := range parsed {
				a.CharacterID = model.StringPtr(character)
				a.IsGlobal = false
				if _, err := app.events.Add(ctx, a); err != nil {
					appLog.Error("skipping event", err, "title", a.Title)
					continue
				}
				imported++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d events\n", imported, len(parsed))
			return nil
		},
	}
	cmd.Flags().StringVar(&character, "character", "", "Character id owning the imported events")
	_ = cmd.MarkFlagRequired("character")
	return cmd
}
