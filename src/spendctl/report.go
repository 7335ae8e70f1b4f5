package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"spendtracker/src/analytics"
	"spendtracker/src/currency"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"spendtracker/src/report"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	creditStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	debitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func reportCmd() *cobra.Command {
	var (
		flags    selectionFlags
		input    string
		category string
		metric   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a spending report for a period",
		Long: `Summarize the ledger for a period: totals, the breakdown by category and the
monthly trend. Transactions are fetched from the API, or read from a CSV
export with --input.`,
		Example: `  spendctl report --mode monthly
  spendctl report --mode weekly --offset -1 --metric credited
  spendctl report --input transactions.csv --mode all`,
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
			cat, err := analytics.ParseCategorySelector(category)
			if err != nil {
				return err
			}
			m, err := analytics.ParseMetric(metric)
			if err != nil {
				return err
			}
			f, err := currency.NewFormatter(viper.GetString("locale"), viper.GetString("currency"))
			if err != nil {
				return err
			}

			var (
				txns []models.Transaction
				cats []models.Category
			)
			if input != "" {
				file, err := os.Open(input)
				if err != nil {
					return err
				}
				defer file.Close()
				txns, cats, err = readExportCSV(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", input, err)
				}
			} else {
				client, err := clientFromConfig(true)
				if err != nil {
					return err
				}
				if cats, err = client.categories(cmd.Context()); err != nil {
					return err
				}
				if txns, err = client.transactions(cmd.Context(), nil); err != nil {
					return err
				}
			}
			log.Debug().Int("transactions", len(txns)).Int("categories", len(cats)).Msg("Loaded ledger")

			rep := report.Build(report.Input{
				Transactions: txns,
				Categories:   cats,
				Selection:    sel,
				Category:     cat,
				Today:        today,
				WeekStart:    ws,
				Metric:       m,
				Formatter:    f,
			})
			return renderReport(cmd.OutOrStdout(), rep)
		},
	}
	flags.register(cmd, string(period.ModeMonthly))
	cmd.Flags().StringVarP(&input, "input", "i", "", "read transactions from a CSV export instead of the API")
	cmd.Flags().StringVar(&category, "category", "all", "restrict the report to one category id")
	cmd.Flags().StringVar(&metric, "metric", string(analytics.MetricDebited), "breakdown metric (debited, credited, net)")
	return cmd
}

// readExportCSV parses a file written by the export endpoint. Categories are
// recovered from their names and numbered in order of first appearance.
// Export files list the newest row first, so ids are assigned in reverse to
// keep ledger order.
func readExportCSV(r io.Reader) ([]models.Transaction, []models.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.ExportColumns)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty file")
		}
		return nil, nil, err
	}
	for i, name := range models.ExportColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, nil, fmt.Errorf("unexpected column %q, want %q", header[i], name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	cats := []models.Category{}
	byName := map[string]int64{}
	txns := make([]models.Transaction, 0, len(records))
	for i, rec := range records {
		t, err := parseExportRow(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		t.ID = int64(len(records) - i)

		if name := strings.TrimSpace(rec[1]); name != "" && name != analytics.UncategorizedName {
			id, ok := byName[name]
			if !ok {
				id = int64(len(cats) + 1)
				byName[name] = id
				cats = append(cats, models.Category{ID: id, Name: name})
			}
			t.CategoryID = &id
			t.CategoryName = &name
		}
		txns = append(txns, t)
	}
	return txns, cats, nil
}

func parseExportRow(rec []string) (models.Transaction, error) {
	var t models.Transaction
	date, err := civil.ParseDate(strings.TrimSpace(rec[0]))
	if err != nil {
		return t, fmt.Errorf("invalid date %q", rec[0])
	}
	t.Date = date
	t.Description = rec[2]
	t.Notes = rec[6]

	for _, field := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"credited", rec[3], &t.Credited},
		{"debited", rec[4], &t.Debited},
		{"balance", rec[5], &t.Balance},
	} {
		raw := strings.TrimSpace(field.raw)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return t, fmt.Errorf("invalid %s amount %q", field.name, field.raw)
		}
		*field.dst = d
	}
	return t, nil
}

func renderReport(w io.Writer, rep report.Report) error {
	s := rep.Summary
	fs := rep.Formatted.Summary

	summary := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(rep.Label),
		fmt.Sprintf("%s %s", labelStyle.Render("Income:      "), creditStyle.Render(fs["total_credited"])),
		fmt.Sprintf("%s %s", labelStyle.Render("Spending:    "), debitStyle.Render(fs["total_debited"])),
		fmt.Sprintf("%s %s", labelStyle.Render("Net:         "), fs["net_amount"]),
		fmt.Sprintf("%s %s", labelStyle.Render("Balance:     "), fs["current_balance"]),
		fmt.Sprintf("%s %d", labelStyle.Render("Transactions:"), s.TransactionCount),
	)
	if s.SavingsRate != nil {
		summary = lipgloss.JoinVertical(lipgloss.Left, summary,
			fmt.Sprintf("%s %s%%", labelStyle.Render("Savings rate:"), s.SavingsRate.StringFixed(1)))
	}
	fmt.Fprintln(w, boxStyle.Render(summary))

	if s.TransactionCount == 0 {
		fmt.Fprintln(w, labelStyle.Render("No transactions in this period."))
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("By category"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tTotal\tShare\tCount")
	for i, b := range rep.Breakdown {
		share := "-"
		if b.Share != nil {
			share = b.Share.StringFixed(1) + "%"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", b.CategoryName, rep.Formatted.Breakdown[i]["total_amount"], share, b.TransactionCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("By month"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Month\tIncome\tSpending\tNet")
	for i, m := range rep.Trend {
		ft := rep.Formatted.Trend[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Month, ft["credited"], ft["debited"], ft["net"])
	}
	return tw.Flush()
}
