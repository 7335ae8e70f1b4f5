package handlers

import (
	"context"
	"errors"
	"net/http"
	dbcache "spendtracker/src/db"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"spendtracker/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

var errUnknownCategory = errors.New("category does not exist")

// checkCategory verifies that an optional category is visible to the user.
func checkCategory(ctx context.Context, pool *pgxpool.Pool, userID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	_, err := db.GetVisibleCategory(ctx, pool, userID, *categoryID)
	if errors.Is(err, db.ErrNotFound) {
		return errUnknownCategory
	}
	return err
}

func GetTransactions(pool *pgxpool.Pool) http.HandlerFunc {
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
		page, limit, err := pageParams(r)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := db.ListTransactions(r.Context(), pool, userID, q, page, limit)
		if err != nil {
			writeStoreError(w, r, err, "transactions")
			return
		}
		util.WriteJSON(w, http.StatusOK, result, "")
	}
}

func CreateTransaction(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req models.TransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		txn, err := util.ParseTransactionRequest(userID, req)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := checkCategory(r.Context(), pool, userID, txn.CategoryID); err != nil {
			if errors.Is(err, errUnknownCategory) {
				util.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeStoreError(w, r, err, "category")
			return
		}

		created, err := db.CreateTransaction(r.Context(), pool, txn)
		if err != nil {
			writeStoreError(w, r, err, "transaction")
			return
		}
		invalidate(r, cache, userID)

		logger.FromContext(r.Context()).Info().Int64("transaction_id", created.ID).Msg("Created transaction")
		util.WriteJSON(w, http.StatusCreated, created, "Transaction added successfully")
	}
}

func UpdateTransaction(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		transactionID, err := pathID(r, "transaction_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		var req models.TransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		txn, err := util.ParseTransactionRequest(userID, req)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := checkCategory(r.Context(), pool, userID, txn.CategoryID); err != nil {
			if errors.Is(err, errUnknownCategory) {
				util.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeStoreError(w, r, err, "category")
			return
		}
		txn.ID = transactionID

		updated, err := db.UpdateTransaction(r.Context(), pool, txn)
		if err != nil {
			writeStoreError(w, r, err, "transaction")
			return
		}
		invalidate(r, cache, userID)

		logger.FromContext(r.Context()).Info().Int64("transaction_id", transactionID).Msg("Updated transaction")
		util.WriteJSON(w, http.StatusOK, updated, "Transaction updated successfully")
	}
}

func DeleteTransaction(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		transactionID, err := pathID(r, "transaction_id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := db.DeleteTransaction(r.Context(), pool, userID, transactionID); err != nil {
			writeStoreError(w, r, err, "transaction")
			return
		}
		invalidate(r, cache, userID)

		logger.FromContext(r.Context()).Info().Int64("transaction_id", transactionID).Msg("Deleted transaction")
		util.WriteJSON(w, http.StatusOK, nil, "Transaction deleted successfully")
	}
}
