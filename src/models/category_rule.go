package models

import (
	"encoding/json"
	"time"
)

// CategoryRule assigns CategoryID to transactions matching Conditions.
type CategoryRule struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Name       string          `json:"name"`
	Conditions json.RawMessage `json:"conditions"` // JSONB
	CategoryID int64           `json:"category_id"`
	Priority   int             `json:"priority"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
