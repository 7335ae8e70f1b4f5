package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"spendtracker/src/analytics"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"spendtracker/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

// buildCSV renders txns newest first.
func buildCSV(txns []models.Transaction) (string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(models.ExportColumns); err != nil {
		return "", err
	}
	for i := len(txns) - 1; i >= 0; i-- {
		t := txns[i]
		category := analytics.UncategorizedName
		if t.CategoryName != nil {
			category = *t.CategoryName
		}
		row := []string{
			t.Date.String(),
			category,
			t.Description,
			t.Credited.StringFixed(2),
			t.Debited.StringFixed(2),
			t.Balance.StringFixed(2),
			t.Notes,
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	return buf.String(), cw.Error()
}

// ExportCSV returns the filtered ledger as CSV text inside the JSON envelope.
func ExportCSV(pool *pgxpool.Pool, settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		q, err := transactionQuery(r)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		txns, err := db.ListAllTransactions(r.Context(), pool, userID, q)
		if err != nil {
			writeStoreError(w, r, err, "transactions")
			return
		}
		data, err := buildCSV(txns)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to build CSV export")
			util.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		filename := "transactions_" + settings.now().Format("20060102_150405") + ".csv"
		logger.FromContext(r.Context()).Info().Int("rows", len(txns)).Msg("Exported transactions")
		util.WriteJSON(w, http.StatusOK, models.CSVExport{CSVData: data, Filename: filename}, "")
	}
}
