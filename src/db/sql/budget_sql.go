package db

import (
	"context"
	"spendtracker/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `id, user_id, category_id, amount, period, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// CreateBudget returns ErrConflict when the category already has a budget.
func CreateBudget(ctx context.Context, pool *pgxpool.Pool, budget models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, category_id, amount, period)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + budgetColumns
	return scanBudget(pool.QueryRow(ctx, query, budget.UserID, budget.CategoryID, budget.Amount, budget.Period))
}

func GetBudget(ctx context.Context, pool *pgxpool.Pool, userID, budgetID int64) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`
	return scanBudget(pool.QueryRow(ctx, query, budgetID, userID))
}

func GetBudgetsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1
		ORDER BY category_id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func UpdateBudget(ctx context.Context, pool *pgxpool.Pool, budget models.Budget) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET category_id = $1, amount = $2, period = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING ` + budgetColumns
	return scanBudget(pool.QueryRow(ctx, query,
		budget.CategoryID, budget.Amount, budget.Period, budget.ID, budget.UserID,
	))
}

func DeleteBudget(ctx context.Context, pool *pgxpool.Pool, userID, budgetID int64) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
