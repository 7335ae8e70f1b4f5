package db

import (
	"context"
	"fmt"
	"spendtracker/src/analytics"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `
	t.id, t.user_id, t.category_id, t.transaction_date, t.description,
	t.credited, t.debited, t.balance, t.notes, t.external_id,
	c.name, c.color, t.created_at, t.updated_at`

const transactionFrom = `
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id AND c.is_active`

// rebalanceQuery recomputes every running balance of one user in ledger
// order and only touches rows whose balance changed.
const rebalanceQuery = `
	UPDATE transactions t
	SET balance = r.running
	FROM (
		SELECT id, SUM(credited - debited) OVER (ORDER BY transaction_date, id) AS running
		FROM transactions
		WHERE user_id = $1 AND is_active
	) r
	WHERE t.id = r.id AND t.balance IS DISTINCT FROM r.running`

// TransactionQuery narrows a listing to one category and a date range.
type TransactionQuery struct {
	Category analytics.CategorySelector
	Range    period.DateRange
}

func (q TransactionQuery) where(userID int64) (string, []any) {
	clauses := []string{"t.user_id = $1", "t.is_active"}
	args := []any{userID}

	if id, ok := q.Category.ID(); ok {
		args = append(args, id)
		clauses = append(clauses, fmt.Sprintf("t.category_id = $%d", len(args)))
	}
	if q.Range.IsMalformed() {
		clauses = append(clauses, "FALSE")
	}
	if !q.Range.From.IsZero() {
		args = append(args, q.Range.From)
		clauses = append(clauses, fmt.Sprintf("t.transaction_date >= $%d", len(args)))
	}
	if !q.Range.To.IsZero() {
		args = append(args, q.Range.To)
		clauses = append(clauses, fmt.Sprintf("t.transaction_date <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&t.Date,
		&t.Description,
		&t.Credited,
		&t.Debited,
		&t.Balance,
		&t.Notes,
		&t.ExternalID,
		&t.CategoryName,
		&t.CategoryColor,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// ListTransactions returns one page of the filtered ledger, newest first.
func ListTransactions(ctx context.Context, pool *pgxpool.Pool, userID int64, q TransactionQuery, page, limit int) (*models.TransactionPage, error) {
	where, args := q.where(userID)

	var total int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	query := `SELECT ` + transactionColumns + transactionFrom + `
		WHERE ` + where + fmt.Sprintf(`
		ORDER BY t.transaction_date DESC, t.id DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return &models.TransactionPage{
		Transactions: txns,
		Pagination:   models.NewPagination(page, limit, total),
	}, nil
}

// ListAllTransactions returns every matching transaction in ledger order
// (date, then id).
func ListAllTransactions(ctx context.Context, pool *pgxpool.Pool, userID int64, q TransactionQuery) ([]models.Transaction, error) {
	where, args := q.where(userID)
	query := `SELECT ` + transactionColumns + transactionFrom + `
		WHERE ` + where + `
		ORDER BY t.transaction_date, t.id`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func GetTransaction(ctx context.Context, pool *pgxpool.Pool, userID, transactionID int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionFrom + `
		WHERE t.id = $1 AND t.user_id = $2 AND t.is_active`
	return scanTransaction(pool.QueryRow(ctx, query, transactionID, userID))
}

func rebalance(ctx context.Context, tx pgx.Tx, userID int64) error {
	if _, err := tx.Exec(ctx, rebalanceQuery, userID); err != nil {
		return fmt.Errorf("rebalance: %w", err)
	}
	return nil
}

// CreateTransaction inserts t and recomputes the user's running balances in
// the same database transaction.
func CreateTransaction(ctx context.Context, pool *pgxpool.Pool, t models.Transaction) (*models.Transaction, error) {
	var id int64
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO transactions (user_id, category_id, transaction_date, description, credited, debited, notes, external_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			t.UserID, t.CategoryID, t.Date, t.Description, t.Credited, t.Debited, t.Notes, t.ExternalID,
		).Scan(&id)
		if err != nil {
			return err
		}
		return rebalance(ctx, tx, t.UserID)
	})
	if err != nil {
		return nil, translate(err)
	}
	return GetTransaction(ctx, pool, t.UserID, id)
}

// UpdateTransaction replaces the editable fields of an existing transaction.
func UpdateTransaction(ctx context.Context, pool *pgxpool.Pool, t models.Transaction) (*models.Transaction, error) {
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE transactions
			SET category_id = $1, transaction_date = $2, description = $3,
				credited = $4, debited = $5, notes = $6, updated_at = NOW()
			WHERE id = $7 AND user_id = $8 AND is_active`,
			t.CategoryID, t.Date, t.Description, t.Credited, t.Debited, t.Notes, t.ID, t.UserID,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return rebalance(ctx, tx, t.UserID)
	})
	if err != nil {
		return nil, translate(err)
	}
	return GetTransaction(ctx, pool, t.UserID, t.ID)
}

// DeleteTransaction soft-deletes a transaction and shifts the balances after it.
func DeleteTransaction(ctx context.Context, pool *pgxpool.Pool, userID, transactionID int64) error {
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE transactions SET is_active = FALSE, updated_at = NOW()
			WHERE id = $1 AND user_id = $2 AND is_active`,
			transactionID, userID,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return rebalance(ctx, tx, userID)
	})
	return translate(err)
}

// ImportResult counts the outcome of a bulk import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportTransactions inserts txns for userID in one database transaction.
// Rows whose external id was already imported are skipped.
func ImportTransactions(ctx context.Context, pool *pgxpool.Pool, userID int64, txns []models.Transaction) (ImportResult, error) {
	var result ImportResult
	if len(txns) == 0 {
		return result, nil
	}

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range txns {
			batch.Queue(`
				INSERT INTO transactions (user_id, category_id, transaction_date, description, credited, debited, notes, external_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (user_id, external_id) WHERE external_id IS NOT NULL AND is_active DO NOTHING`,
				userID, t.CategoryID, t.Date, t.Description, t.Credited, t.Debited, t.Notes, t.ExternalID,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range txns {
			cmd, err := br.Exec()
			if err != nil {
				br.Close()
				return err
			}
			if cmd.RowsAffected() == 0 {
				result.Skipped++
			} else {
				result.Imported++
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
		if result.Imported == 0 {
			return nil
		}
		return rebalance(ctx, tx, userID)
	})
	if err != nil {
		return ImportResult{}, translate(err)
	}
	return result, nil
}

// AssignCategories sets the category of still-uncategorized transactions,
// keyed by transaction id. It returns how many rows changed.
func AssignCategories(ctx context.Context, pool *pgxpool.Pool, userID int64, assignments map[int64]int64) (int, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	updated := 0
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for txnID, categoryID := range assignments {
			batch.Queue(`
				UPDATE transactions SET category_id = $1, updated_at = NOW()
				WHERE id = $2 AND user_id = $3 AND category_id IS NULL AND is_active`,
				categoryID, txnID, userID,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()
		for range assignments {
			cmd, err := br.Exec()
			if err != nil {
				return err
			}
			updated += int(cmd.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return updated, nil
}
