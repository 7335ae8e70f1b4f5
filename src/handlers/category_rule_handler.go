package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	dbcache "spendtracker/src/db"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"spendtracker/src/rules"
	"spendtracker/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

type categoryRuleRequest struct {
	Name       string          `json:"name"`
	Conditions json.RawMessage `json:"conditions"`
	CategoryID int64           `json:"category_id"`
	Priority   int             `json:"priority"`
}

// decodeRule reads and validates a rule body. It writes the error response
// itself and reports whether the caller may continue.
func decodeRule(w http.ResponseWriter, r *http.Request, pool *pgxpool.Pool, userID int64) (models.CategoryRule, bool) {
	var req categoryRuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		util.WriteError(w, http.StatusBadRequest, err.Error())
		return models.CategoryRule{}, false
	}
	name, err := util.ValidateRuleName(req.Name)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, err.Error())
		return models.CategoryRule{}, false
	}
	if _, err := rules.Parse(req.Conditions); err != nil {
		util.WriteError(w, http.StatusBadRequest, err.Error())
		return models.CategoryRule{}, false
	}
	if err := checkCategory(r.Context(), pool, userID, &req.CategoryID); err != nil {
		if errors.Is(err, errUnknownCategory) {
			util.WriteError(w, http.StatusBadRequest, err.Error())
		} else {
			writeStoreError(w, r, err, "category")
		}
		return models.CategoryRule{}, false
	}
	return models.CategoryRule{
		UserID:     userID,
		Name:       name,
		Conditions: req.Conditions,
		CategoryID: req.CategoryID,
		Priority:   req.Priority,
	}, true
}

func GetCategoryRules(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		list, err := db.GetCategoryRules(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "category rules")
			return
		}
		util.WriteJSON(w, http.StatusOK, list, "")
	}
}

func GetCategoryRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ruleID, err := pathID(r, "rule_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		rule, err := db.GetCategoryRule(r.Context(), pool, userID, ruleID)
		if err != nil {
			writeStoreError(w, r, err, "category rule")
			return
		}
		util.WriteJSON(w, http.StatusOK, rule, "")
	}
}

func CreateCategoryRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		rule, ok := decodeRule(w, r, pool, userID)
		if !ok {
			return
		}
		created, err := db.CreateCategoryRule(r.Context(), pool, rule)
		if err != nil {
			writeStoreError(w, r, err, "category rule")
			return
		}
		logger.FromContext(r.Context()).Info().Int64("rule_id", created.ID).Msg("Created category rule")
		util.WriteJSON(w, http.StatusCreated, created, "Rule created")
	}
}

func UpdateCategoryRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ruleID, err := pathID(r, "rule_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		rule, ok := decodeRule(w, r, pool, userID)
		if !ok {
			return
		}
		rule.ID = ruleID

		updated, err := db.UpdateCategoryRule(r.Context(), pool, rule)
		if err != nil {
			writeStoreError(w, r, err, "category rule")
			return
		}
		logger.FromContext(r.Context()).Info().Int64("rule_id", ruleID).Msg("Updated category rule")
		util.WriteJSON(w, http.StatusOK, updated, "Rule updated")
	}
}

func DeleteCategoryRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ruleID, err := pathID(r, "rule_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := db.DeleteCategoryRule(r.Context(), pool, userID, ruleID); err != nil {
			writeStoreError(w, r, err, "category rule")
			return
		}
		logger.FromContext(r.Context()).Info().Int64("rule_id", ruleID).Msg("Deleted category rule")
		util.WriteJSON(w, http.StatusOK, nil, "Rule deleted")
	}
}

// ApplyCategoryRules categorizes the user's uncategorized transactions with
// the first matching rule.
func ApplyCategoryRules(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())

		list, err := db.GetCategoryRules(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "category rules")
			return
		}
		set := rules.NewSet(list)
		if len(set.Invalid()) > 0 {
			log.Warn().Ints64("rule_ids", set.Invalid()).Msg("Skipping invalid category rules")
		}

		txns, err := db.ListAllTransactions(r.Context(), pool, userID, db.TransactionQuery{})
		if err != nil {
			writeStoreError(w, r, err, "transactions")
			return
		}
		updated, err := db.AssignCategories(r.Context(), pool, userID, set.Assign(txns))
		if err != nil {
			writeStoreError(w, r, err, "transactions")
			return
		}
		if updated > 0 {
			invalidate(r, cache, userID)
		}

		log.Info().Int("updated", updated).Msg("Applied category rules")
		util.WriteJSON(w, http.StatusOK, map[string]any{
			"updated":       updated,
			"invalid_rules": set.Invalid(),
		}, "Rules applied")
	}
}
