package handlers

import (
	"net/http"
	dbcache "spendtracker/src/db"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"spendtracker/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

func GetCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		categories, err := db.GetCategoriesForUser(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "categories")
			return
		}
		util.WriteJSON(w, http.StatusOK, categories, "")
	}
}

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req models.CreateCategoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := util.NormalizeCategory(&req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		category, err := db.CreateCategory(r.Context(), pool, userID, req)
		if err != nil {
			writeStoreError(w, r, err, "category")
			return
		}

		logger.FromContext(r.Context()).Info().Int64("category_id", category.ID).Msg("Created category")
		util.WriteJSON(w, http.StatusCreated, category, "Category added successfully")
	}
}

// DeleteCategory soft-deletes one of the caller's categories. Its
// transactions show as uncategorized afterwards.
func DeleteCategory(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		categoryID, err := pathID(r, "category_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := db.DeleteCategory(r.Context(), pool, userID, categoryID); err != nil {
			writeStoreError(w, r, err, "category")
			return
		}
		invalidate(r, cache, userID)

		logger.FromContext(r.Context()).Info().Int64("category_id", categoryID).Msg("Deleted category")
		util.WriteJSON(w, http.StatusOK, nil, "Category deleted successfully")
	}
}
