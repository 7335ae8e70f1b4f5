package handlers

import (
	"errors"
	"net/http"
	"spendtracker/src/analytics"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"spendtracker/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type budgetRequest struct {
	CategoryID int64           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `json:"period"`
}

func decodeBudget(w http.ResponseWriter, r *http.Request, pool *pgxpool.Pool, userID int64) (models.Budget, bool) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		util.WriteError(w, http.StatusBadRequest, err.Error())
		return models.Budget{}, false
	}
	if req.Period == "" {
		req.Period = models.BudgetMonthly
	}
	b := models.Budget{UserID: userID, CategoryID: req.CategoryID, Amount: req.Amount, Period: req.Period}
	if err := util.ValidateBudget(b); err != nil {
		util.WriteError(w, http.StatusBadRequest, err.Error())
		return models.Budget{}, false
	}
	if err := checkCategory(r.Context(), pool, userID, &b.CategoryID); err != nil {
		if errors.Is(err, errUnknownCategory) {
			util.WriteError(w, http.StatusBadRequest, err.Error())
		} else {
			writeStoreError(w, r, err, "category")
		}
		return models.Budget{}, false
	}
	return b, true
}

func GetBudgets(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		budgets, err := db.GetBudgetsForUser(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "budgets")
			return
		}
		util.WriteJSON(w, http.StatusOK, budgets, "")
	}
}

func CreateBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		budget, ok := decodeBudget(w, r, pool, userID)
		if !ok {
			return
		}
		created, err := db.CreateBudget(r.Context(), pool, budget)
		if err != nil {
			writeStoreError(w, r, err, "budget")
			return
		}
		logger.FromContext(r.Context()).Info().Int64("budget_id", created.ID).Int64("category_id", created.CategoryID).Msg("Created budget")
		util.WriteJSON(w, http.StatusCreated, created, "Budget created")
	}
}

func UpdateBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		budgetID, err := pathID(r, "budget_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		budget, ok := decodeBudget(w, r, pool, userID)
		if !ok {
			return
		}
		budget.ID = budgetID

		updated, err := db.UpdateBudget(r.Context(), pool, budget)
		if err != nil {
			writeStoreError(w, r, err, "budget")
			return
		}
		logger.FromContext(r.Context()).Info().Int64("budget_id", budgetID).Msg("Updated budget")
		util.WriteJSON(w, http.StatusOK, updated, "Budget updated")
	}
}

func DeleteBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		budgetID, err := pathID(r, "budget_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := db.DeleteBudget(r.Context(), pool, userID, budgetID); err != nil {
			writeStoreError(w, r, err, "budget")
			return
		}
		logger.FromContext(r.Context()).Info().Int64("budget_id", budgetID).Msg("Deleted budget")
		util.WriteJSON(w, http.StatusOK, nil, "Budget deleted")
	}
}

type budgetProgressResponse struct {
	Period  PeriodView              `json:"period"`
	Budgets []models.BudgetProgress `json:"budgets"`
}

// GetBudgetProgress compares every budget with the spending of the selected
// period, the current month by default.
func GetBudgetProgress(pool *pgxpool.Pool, settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		sel, err := selectionParams(r, period.ModeMonthly)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		code, err := settings.currencyCode(r)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		view := describePeriod(sel, settings.today(), settings)

		budgets, err := db.GetBudgetsForUser(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "budgets")
			return
		}
		categories, txns, err := loadLedger(r.Context(), pool, userID, db.TransactionQuery{Range: view.Range})
		if err != nil {
			writeStoreError(w, r, err, "transactions")
			return
		}

		progress := analytics.BudgetProgress(budgets, categories, txns, sel.Mode)
		f := settings.formatter()
		for i := range progress {
			p := &progress[i]
			p.Formatted = f.FormatAll(code, map[string]decimal.Decimal{
				"limit":     p.Limit,
				"spent":     p.Spent,
				"remaining": p.Remaining,
			})
		}
		util.WriteJSON(w, http.StatusOK, budgetProgressResponse{Period: view, Budgets: progress}, "")
	}
}
