package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"spendtracker/src/importer"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type importSummary struct {
	Imported    int `json:"imported"`
	Skipped     int `json:"skipped"`
	Parsed      int `json:"parsed"`
	ZeroAmount  int `json:"zero_amount"`
	Categorized int `json:"categorized"`
}

func importCmd() *cobra.Command {
	var (
		dryRun   bool
		category string
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an OFX or QFX statement",
		Long: `Upload a bank or credit card statement. Rows already imported are skipped.
Without --category the server's category rules decide each row's category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			out := cmd.OutOrStdout()
			if dryRun {
				return previewStatement(cmd, file, out)
			}

			client, err := clientFromConfig(true)
			if err != nil {
				return err
			}
			query := url.Values{}
			if category != "" {
				query.Set("category_id", category)
			}

			var res importSummary
			err = client.do(cmd.Context(), http.MethodPost, "/api/import/ofx", query, file, "application/x-ofx", &res)
			if err != nil {
				return err
			}
			log.Info().Str("file", args[0]).Int("imported", res.Imported).Msg("Statement uploaded")

			fmt.Fprintf(out, "%s %d parsed, %d imported, %d already present, %d categorized",
				headerStyle.Render("Imported:"), res.Parsed, res.Imported, res.Skipped, res.Categorized)
			if res.ZeroAmount > 0 {
				fmt.Fprintf(out, ", %d zero-amount rows ignored", res.ZeroAmount)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file locally and list what would be imported")
	cmd.Flags().StringVar(&category, "category", "", "assign every imported row to this category id")
	return cmd
}

func previewStatement(cmd *cobra.Command, r io.Reader, out io.Writer) error {
	st, err := importer.ParseOFX(cmd.Context(), r)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %d transactions from %d account(s)\n",
		headerStyle.Render("Dry run:"), len(st.Transactions), len(st.Accounts))
	if st.Skipped > 0 {
		fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("%d zero-amount rows would be ignored", st.Skipped)))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tDescription\tCredited\tDebited")
	for _, t := range st.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Date, t.Description, t.Credited.StringFixed(2), t.Debited.StringFixed(2))
	}
	return tw.Flush()
}
