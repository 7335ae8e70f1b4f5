package util

import (
	"spendtracker/src/models"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Secret123"))
	assert.False(t, ValidatePassword("Sec12"))
	assert.False(t, ValidatePassword("secret123"))
	assert.False(t, ValidatePassword("SECRET123"))
	assert.False(t, ValidatePassword("SecretSecret"))
}

func TestValidateEmailAndUsername(t *testing.T) {
	assert.True(t, ValidateEmail("jane@example.com"))
	assert.False(t, ValidateEmail("jane@example"))
	assert.True(t, ValidateUsername("bob"))
	assert.False(t, ValidateUsername("bo"))
	assert.False(t, ValidateUsername(strings.Repeat("x", 31)))
}

func TestNormalizeCategory(t *testing.T) {
	req := models.CreateCategoryRequest{Name: "  Pets "}
	require.NoError(t, NormalizeCategory(&req))
	assert.Equal(t, "Pets", req.Name)
	assert.Equal(t, DefaultCategoryColor, req.Color)
	assert.Equal(t, DefaultCategoryIcon, req.Icon)

	assert.Error(t, NormalizeCategory(&models.CreateCategoryRequest{Name: "  "}))
	assert.Error(t, NormalizeCategory(&models.CreateCategoryRequest{Name: strings.Repeat("n", 51)}))
	assert.Error(t, NormalizeCategory(&models.CreateCategoryRequest{Name: "Pets", Color: "red"}))
}

func TestParseTransactionRequest(t *testing.T) {
	cat := int64(4)
	txn, err := ParseTransactionRequest(9, models.TransactionRequest{
		CategoryID:  &cat,
		Date:        "2025-03-14",
		Description: " Groceries ",
		Debited:     decimal.RequireFromString("42.10"),
		Notes:       "weekly shop",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), txn.UserID)
	assert.Equal(t, "Groceries", txn.Description)
	assert.Equal(t, "2025-03-14", txn.Date.String())
	assert.True(t, txn.Credited.IsZero())
	assert.Equal(t, &cat, txn.CategoryID)

	bad := []models.TransactionRequest{
		{Description: "no date", Debited: decimal.NewFromInt(1)},
		{Date: "2025-03-14", Debited: decimal.NewFromInt(1)},
		{Date: "14/03/2025", Description: "x", Debited: decimal.NewFromInt(1)},
		{Date: "2025-03-14", Description: "zero"},
		{Date: "2025-03-14", Description: "neg", Debited: decimal.NewFromInt(-1)},
		{Date: "2025-03-14", Description: "cents", Debited: decimal.RequireFromString("1.005")},
		{Date: "2025-03-14", Description: "huge", Credited: decimal.RequireFromString("1000000000000")},
	}
	for _, req := range bad {
		_, err := ParseTransactionRequest(1, req)
		assert.Error(t, err, "%+v", req)
	}
}

func TestParseTransactionRequestAcceptsBothAmounts(t *testing.T) {
	txn, err := ParseTransactionRequest(1, models.TransactionRequest{
		Date:        "2025-03-14",
		Description: "refund and fee",
		Credited:    decimal.NewFromInt(10),
		Debited:     decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	assert.True(t, txn.Credited.Equal(decimal.NewFromInt(10)))
	assert.True(t, txn.Debited.Equal(decimal.NewFromInt(2)))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount("credited", decimal.Zero))
	assert.NoError(t, ValidateAmount("credited", MaxAmount))
	assert.NoError(t, ValidateAmount("credited", decimal.RequireFromString("12.50")))

	err := ValidateAmount("credited", MaxAmount.Add(decimal.RequireFromString("0.01")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "999999999999.99")
	assert.Error(t, ValidateAmount("debited", decimal.RequireFromString("1e15")))
	assert.Error(t, ValidateAmount("debited", decimal.NewFromInt(-1)))
}

func TestValidateBudget(t *testing.T) {
	ok := models.Budget{CategoryID: 1, Amount: decimal.NewFromInt(300), Period: models.BudgetMonthly}
	assert.NoError(t, ValidateBudget(ok))

	noCat := ok
	noCat.CategoryID = 0
	assert.Error(t, ValidateBudget(noCat))

	badPeriod := ok
	badPeriod.Period = "yearly"
	assert.Error(t, ValidateBudget(badPeriod))

	negative := ok
	negative.Amount = decimal.NewFromInt(-5)
	assert.Error(t, ValidateBudget(negative))
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	signed, err := IssueToken(secret, 12, "alice", time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseToken(secret, signed)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, err = ParseToken("another-secret-value", signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	signed, err := IssueToken(secret, 12, "alice", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseToken(secret, signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(secret, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
