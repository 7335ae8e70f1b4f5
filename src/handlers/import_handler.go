package handlers

import (
	"errors"
	"net/http"
	"spendtracker/src/analytics"
	dbcache "spendtracker/src/db"
	db "spendtracker/src/db/sql"
	"spendtracker/src/importer"
	"spendtracker/src/logger"
	"spendtracker/src/rules"
	"spendtracker/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxStatementBytes = 10 << 20

type importResponse struct {
	db.ImportResult
	Parsed      int `json:"parsed"`
	ZeroAmount  int `json:"zero_amount"`
	Categorized int `json:"categorized"`
}

// ImportOFX loads an OFX/QFX statement from the request body. With a
// category_id every row gets that category, otherwise the user's category
// rules are applied.
func ImportOFX(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())

		cat, err := analytics.ParseCategorySelector(r.URL.Query().Get(analytics.CategoryParam))
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		st, err := importer.ParseOFX(r.Context(), http.MaxBytesReader(w, r.Body, maxStatementBytes))
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp := importResponse{Parsed: len(st.Transactions), ZeroAmount: st.Skipped}
		for i := range st.Transactions {
			st.Transactions[i].UserID = userID
		}

		if id, ok := cat.ID(); ok {
			if err := checkCategory(r.Context(), pool, userID, &id); err != nil {
				if errors.Is(err, errUnknownCategory) {
					util.WriteError(w, http.StatusBadRequest, err.Error())
					return
				}
				writeStoreError(w, r, err, "category")
				return
			}
			for i := range st.Transactions {
				categoryID := id
				st.Transactions[i].CategoryID = &categoryID
			}
			resp.Categorized = len(st.Transactions)
		} else {
			ruleList, err := db.GetCategoryRules(r.Context(), pool, userID)
			if err != nil {
				writeStoreError(w, r, err, "category rules")
				return
			}
			resp.Categorized = rules.NewSet(ruleList).Categorize(st.Transactions)
		}

		result, err := db.ImportTransactions(r.Context(), pool, userID, st.Transactions)
		if err != nil {
			writeStoreError(w, r, err, "transactions")
			return
		}
		resp.ImportResult = result
		if result.Imported > 0 {
			invalidate(r, cache, userID)
		}

		log.Info().
			Int("imported", result.Imported).
			Int("skipped", result.Skipped).
			Int("categorized", resp.Categorized).
			Msg("Imported OFX statement")
		util.WriteJSON(w, http.StatusOK, resp, "Statement imported")
	}
}
