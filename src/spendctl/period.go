package main

import (
	"fmt"
	"io"
	"spendtracker/src/period"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type selectionFlags struct {
	mode   string
	offset int
	from   string
	to     string
	today  string
}

func (f *selectionFlags) register(cmd *cobra.Command, defMode string) {
	cmd.Flags().StringVar(&f.mode, "mode", defMode, "period mode (all, custom, weekly, monthly)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "periods relative to the current one (weekly and monthly mode)")
	cmd.Flags().StringVar(&f.from, "from", "", "first day of a custom range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day of a custom range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.today, "today", "", "reference date instead of the current day (YYYY-MM-DD)")
}

func (f *selectionFlags) selection() (period.Selection, error) {
	return period.ParseSelection(f.mode, fmt.Sprint(f.offset), f.from, f.to)
}

func (f *selectionFlags) reference() (civil.Date, error) {
	if f.today == "" {
		return period.Today(time.Now()), nil
	}
	return period.ParseDate(f.today)
}

func weekStart() (time.Weekday, error) {
	return period.ParseWeekStart(viper.GetString("week_start"))
}

func periodCmd() *cobra.Command {
	var flags selectionFlags

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Resolve a reporting period",
		Long: `Resolve a period selection to its date range, display label and the query
parameters the API expects for it. Nothing is sent to the server.`,
		Example: `  spendctl period --mode monthly --offset -1
  spendctl period --mode custom --from 2025-01-01 --to 2025-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := flags.selection()
			if err != nil {
				return err
			}
			today, err := flags.reference()
			if err != nil {
				return err
			}
			ws, err := weekStart()
			if err != nil {
				return err
			}
			renderPeriod(cmd.OutOrStdout(), sel, today, ws)
			return nil
		},
	}
	flags.register(cmd, string(period.ModeMonthly))
	return cmd
}

func renderPeriod(w io.Writer, sel period.Selection, today civil.Date, ws time.Weekday) {
	r := period.Resolve(sel, today, ws)
	query := r.QueryValues().Encode()
	if query == "" {
		query = "(none)"
	}

	fmt.Fprintln(w, titleStyle.Render(period.Label(sel, today, ws)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("mode: "), sel.Mode)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("range:"), r)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("query:"), query)
}
