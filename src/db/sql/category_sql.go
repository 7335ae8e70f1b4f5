package db

import (
	"context"
	"spendtracker/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, user_id, name, description, color, icon, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetCategoriesForUser returns the built-in categories plus the user's own,
// ordered by name.
func GetCategoriesForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE (user_id = $1 OR user_id IS NULL) AND is_active
		ORDER BY name, id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetVisibleCategory returns the category when it is built-in or owned by the user.
func GetVisibleCategory(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int64) (*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND (user_id = $2 OR user_id IS NULL) AND is_active
	`
	return scanCategory(pool.QueryRow(ctx, query, categoryID, userID))
}

// CreateCategory returns ErrConflict when the name is already used by a
// built-in category or by another of the user's categories.
func CreateCategory(ctx context.Context, pool *pgxpool.Pool, userID int64, req models.CreateCategoryRequest) (*models.Category, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE LOWER(name) = LOWER($1) AND (user_id = $2 OR user_id IS NULL) AND is_active
		)`, req.Name, userID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	query := `
		INSERT INTO categories (user_id, name, description, color, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + categoryColumns
	return scanCategory(pool.QueryRow(ctx, query, userID, req.Name, req.Description, req.Color, req.Icon))
}

// DeleteCategory soft-deletes one of the user's own categories. Built-in
// categories are never matched, so they report ErrNotFound.
func DeleteCategory(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int64) error {
	cmd, err := pool.Exec(ctx, `
		UPDATE categories SET is_active = FALSE
		WHERE id = $1 AND user_id = $2 AND is_active
	`, categoryID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
