package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"odincal/internal/model"
	"odincal/internal/schedule"
)

var (
	agendaHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	agendaTimeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	agendaGlobalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12")).Bold(true)
	agendaEmptyStyle  = lipgloss.NewStyle().Faint(true)
)

func newAgendaCmd(app *App) *cobra.Command {
	var (
		character string
		date      string
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "List the activities starting on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := schedule.Today(app.now(), app.loc)
			if date != "" {
				d, err := time.ParseInLocation(time.DateOnly, date, app.loc)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				day = d
			}

			p, err := app.events.Processed(cmd.Context(), app.now())
			if err != nil {
				return err
			}

			var who *string
			if character != "" {
				if _, _, ok, err := app.roster.GetCharacter(cmd.Context(), character); err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("unknown character %q", character)
				}
				who = &character
			}
			occ := schedule.OnDay(schedule.FilterFor(p.Occurrences, who), day)
			return renderAgenda(cmd.OutOrStdout(), day, occ)
		},
	}
	cmd.Flags().StringVar(&character, "character", "", "Character id (default: global events only)")
	cmd.Flags().StringVar(&date, "date", "", "Day to list as YYYY-MM-DD (default: today)")
	return cmd
}

// renderAgenda writes one line per occurrence with a swatch in its color.
func renderAgenda(w io.Writer, day time.Time, occ []model.Activity) error {
	if _, err := fmt.Fprintln(w, agendaHeaderStyle.Render(day.Format("Monday, 2006-01-02"))); err != nil {
		return err
	}
	if len(occ) == 0 {
		_, err := fmt.Fprintln(w, agendaEmptyStyle.Render("  nothing scheduled"))
		return err
	}
	for _, o := range occ {
		color := o.Color
		if color == "" {
			color = model.FallbackColor
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
		span := agendaTimeStyle.Render(o.Start.Format("15:04") + "-" + o.End.Format("15:04"))
		title := o.Title
		if o.IsGlobal {
			title = agendaGlobalStyle.Render(title)
		}
		if _, err := fmt.Fprintf(w, "  %s %s %s\n", swatch, span, title); err != nil {
			return err
		}
	}
	return nil
}
