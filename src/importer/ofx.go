package importer

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

const maxDescription = 255

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Statement is the content of one OFX/QFX file.
type Statement struct {
	Accounts     []string
	Transactions []models.Transaction
	// Skipped counts zero-amount rows, which the ledger cannot hold.
	Skipped int
}

// normalize fixes formatting issues common in bank exports.
func normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// ParseOFX reads bank and credit card statements from r. The returned
// transactions carry an ExternalID of "<account>:<FITID>" and no owner or
// category.
func ParseOFX(ctx context.Context, r io.Reader) (*Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(normalize(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	st := &Statement{Transactions: []models.Transaction{}}
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		st.add(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList)
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		st.add(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList)
	}

	logger.FromContext(ctx).Info().
		Int("transactions", len(st.Transactions)).
		Int("accounts", len(st.Accounts)).
		Int("skipped", st.Skipped).
		Msg("Parsed OFX file")

	return st, nil
}

func (st *Statement) add(account string, list *ofxgo.TransactionList) {
	st.Accounts = append(st.Accounts, account)
	if list == nil {
		return
	}
	for _, tx := range list.Transactions {
		t, ok := convert(account, tx)
		if !ok {
			st.Skipped++
			continue
		}
		st.Transactions = append(st.Transactions, t)
	}
}

// convert maps an OFX transaction onto the ledger. OFX amounts are signed,
// negative meaning money left the account.
func convert(account string, tx ofxgo.Transaction) (models.Transaction, bool) {
	amount := decimal.NewFromBigRat(&tx.TrnAmt.Rat, 2)
	if amount.IsZero() {
		return models.Transaction{}, false
	}

	externalID := account + ":" + string(tx.FiTID)
	t := models.Transaction{
		Date:        civil.DateOf(tx.DtPosted.Time),
		Description: description(tx),
		Notes:       notes(tx),
		ExternalID:  &externalID,
	}
	if amount.IsNegative() {
		t.Debited = amount.Neg()
	} else {
		t.Credited = amount
	}
	return t, true
}

// description prefers the payee, then a cleaned NAME, then MEMO when NAME
// is generic.
func description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && strings.TrimSpace(string(tx.Payee.Name)) != "" {
		return truncate(strings.TrimSpace(string(tx.Payee.Name)))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || genericNames[strings.ToUpper(name)]) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}
	// "MM/DD " left behind by card prefixes
	if len(name) > 6 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	if name == "" {
		name = tx.TrnType.String()
	}
	return truncate(name)
}

func notes(tx ofxgo.Transaction) string {
	var parts []string
	if tx.CheckNum != "" {
		parts = append(parts, "Check "+string(tx.CheckNum))
	}
	if memo := strings.TrimSpace(string(tx.Memo)); memo != "" && memo != description(tx) {
		parts = append(parts, memo)
	}
	return strings.Join(parts, "; ")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDescription {
		return s
	}
	return string([]rune(s)[:maxDescription])
}
