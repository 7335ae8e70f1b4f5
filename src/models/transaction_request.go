package models

import "github.com/shopspring/decimal"

// TransactionRequest is the body of create and update calls. Missing amounts
// decode as zero.
type TransactionRequest struct {
	CategoryID  *int64          `json:"category_id"`
	Date        string          `json:"transaction_date"`
	Description string          `json:"description"`
	Credited    decimal.Decimal `json:"credited"`
	Debited     decimal.Decimal `json:"debited"`
	Notes       string          `json:"notes"`
}
