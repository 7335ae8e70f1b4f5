package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one ledger row. Credited and Debited are non-negative and
// Balance is the running balance maintained by the store.
type Transaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	CategoryID    *int64          `json:"category_id"`
	Date          civil.Date      `json:"transaction_date"`
	Description   string          `json:"description"`
	Credited      decimal.Decimal `json:"credited"`
	Debited       decimal.Decimal `json:"debited"`
	Balance       decimal.Decimal `json:"balance"`
	Notes         string          `json:"notes"`
	ExternalID    *string         `json:"external_id,omitempty"`
	CategoryName  *string         `json:"category_name"`
	CategoryColor *string         `json:"category_color"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ExportColumns is the header row of a CSV export.
var ExportColumns = []string{"Date", "Category", "Description", "Credited", "Debited", "Balance", "Notes"}

// CSVExport carries a rendered export and its suggested file name.
type CSVExport struct {
	CSVData  string `json:"csv_data"`
	Filename string `json:"filename"`
}

// TransactionPage is one page of a filtered transaction listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
