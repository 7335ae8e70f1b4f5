package db

import (
	"context"
	"spendtracker/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ruleColumns = `id, user_id, name, conditions, category_id, priority, created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }) (*models.CategoryRule, error) {
	var r models.CategoryRule
	var conditions []byte
	err := row.Scan(&r.ID, &r.UserID, &r.Name, &conditions, &r.CategoryID, &r.Priority, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	r.Conditions = conditions
	return &r, nil
}

func CreateCategoryRule(ctx context.Context, pool *pgxpool.Pool, rule models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		INSERT INTO category_rules (user_id, name, conditions, category_id, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + ruleColumns
	return scanRule(pool.QueryRow(ctx, query, rule.UserID, rule.Name, string(rule.Conditions), rule.CategoryID, rule.Priority))
}

func GetCategoryRule(ctx context.Context, pool *pgxpool.Pool, userID, ruleID int64) (*models.CategoryRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM category_rules WHERE id = $1 AND user_id = $2`
	return scanRule(pool.QueryRow(ctx, query, ruleID, userID))
}

// GetCategoryRules returns the user's rules in evaluation order.
func GetCategoryRules(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.CategoryRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM category_rules
		WHERE user_id = $1
		ORDER BY priority, id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.CategoryRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

func UpdateCategoryRule(ctx context.Context, pool *pgxpool.Pool, rule models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		UPDATE category_rules
		SET name = $1, conditions = $2, category_id = $3, priority = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING ` + ruleColumns
	return scanRule(pool.QueryRow(ctx, query,
		rule.Name, string(rule.Conditions), rule.CategoryID, rule.Priority, rule.ID, rule.UserID,
	))
}

func DeleteCategoryRule(ctx context.Context, pool *pgxpool.Pool, userID, ruleID int64) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM category_rules WHERE id = $1 AND user_id = $2`, ruleID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
