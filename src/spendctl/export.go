package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"spendtracker/src/models"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		output   string
		from     string
		to       string
		category string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download transactions as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromConfig(true)
			if err != nil {
				return err
			}

			query := url.Values{}
			if from != "" {
				query.Set("from_date", from)
			}
			if to != "" {
				query.Set("to_date", to)
			}
			if category != "" {
				query.Set("category_id", category)
			}

			var exp models.CSVExport
			if err := client.getJSON(cmd.Context(), "/api/export/csv", query, &exp); err != nil {
				return err
			}

			path := output
			if path == "" {
				path = exp.Filename
			}
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, exp.Filename)
			}
			if err := os.WriteFile(path, []byte(exp.CSVData), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			log.Info().Str("file", path).Int("bytes", len(exp.CSVData)).Msg("Export written")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", headerStyle.Render("Saved"), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write (default: the server's filename)")
	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "only export this category id")
	return cmd
}
