package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"spendtracker/src/analytics"
	"spendtracker/src/currency"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"spendtracker/src/report"
	"strconv"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportSample = `Date,Category,Description,Credited,Debited,Balance,Notes
2025-06-20,Groceries,Market,0.00,80.00,2340.00,
2025-06-10,Uncategorized,Refund,20.00,0.00,2420.00,
2025-06-02,Salary,Payroll,2500.00,0.00,2400.00,June
2025-05-28,Groceries,Market,0.00,100.00,-100.00,
`

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success":   status < http.StatusBadRequest,
		"message":   message,
		"data":      data,
		"timestamp": time.Now().UTC(),
	})
}

func TestReadExportCSV(t *testing.T) {
	txns, cats, err := readExportCSV(strings.NewReader(exportSample))
	require.NoError(t, err)
	require.Len(t, txns, 4)

	require.Len(t, cats, 2)
	assert.Equal(t, "Groceries", cats[0].Name)
	assert.Equal(t, int64(1), cats[0].ID)
	assert.Equal(t, "Salary", cats[1].Name)

	// Newest row first in the file, highest id.
	assert.Equal(t, int64(4), txns[0].ID)
	assert.Equal(t, int64(1), txns[3].ID)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.June, Day: 20}, txns[0].Date)
	assert.True(t, decimal.RequireFromString("80").Equal(txns[0].Debited))
	assert.True(t, decimal.RequireFromString("2340").Equal(txns[0].Balance))
	require.NotNil(t, txns[0].CategoryID)
	assert.Equal(t, int64(1), *txns[0].CategoryID)
	assert.Equal(t, *txns[0].CategoryID, *txns[3].CategoryID)

	assert.Nil(t, txns[1].CategoryID)
	assert.Equal(t, "June", txns[2].Notes)
}

func TestReadExportCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "When,Category,Description,Credited,Debited,Balance,Notes\n"},
		{"bad date", "Date,Category,Description,Credited,Debited,Balance,Notes\n06/20/2025,,x,0,1,0,\n"},
		{"bad amount", "Date,Category,Description,Credited,Debited,Balance,Notes\n2025-06-20,,x,ten,0,0,\n"},
		{"short row", "Date,Category,Description,Credited,Debited,Balance,Notes\n2025-06-20,,x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readExportCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestRenderReport(t *testing.T) {
	txns, cats, err := readExportCSV(strings.NewReader(exportSample))
	require.NoError(t, err)

	rep := report.Build(report.Input{
		Transactions: txns,
		Categories:   cats,
		Selection:    period.Selection{Mode: period.ModeMonthly},
		Category:     analytics.AllCategories,
		Today:        civil.Date{Year: 2025, Month: time.June, Day: 25},
		WeekStart:    time.Monday,
		Formatter:    currency.MustFormatter("en-US", "USD"),
	})

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "June 2025")
	assert.Contains(t, out, "$2,520.00")
	assert.Contains(t, out, "$80.00")
	assert.Contains(t, out, "$2,340.00")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "2025-06")
	assert.NotContains(t, out, "2025-05")
}

func TestRenderReportEmptyPeriod(t *testing.T) {
	rep := report.Build(report.Input{
		Selection: period.Selection{Mode: period.ModeWeekly},
		Today:     civil.Date{Year: 2025, Month: time.June, Day: 25},
		WeekStart: time.Monday,
	})

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, rep))
	assert.Contains(t, buf.String(), "Jun 23 - Jun 29, 2025")
	assert.Contains(t, buf.String(), "No transactions in this period.")
	assert.NotContains(t, buf.String(), "By category")
}

func TestPeriodCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "previous month",
			args: []string{"--mode", "monthly", "--offset", "-1", "--today", "2025-06-04"},
			want: []string{"May 2025", "2025-05-01..2025-05-31", "from_date=2025-05-01&to_date=2025-05-31"},
		},
		{
			name: "current week",
			args: []string{"--mode", "weekly", "--today", "2025-06-04"},
			want: []string{"Jun 02 - Jun 08, 2025", "2025-06-02..2025-06-08"},
		},
		{
			name: "all time",
			args: []string{"--mode", "all", "--today", "2025-06-04"},
			want: []string{"All Time", "(none)"},
		},
		{
			name: "custom",
			args: []string{"--mode", "custom", "--from", "2025-01-01", "--to", "2025-03-31"},
			want: []string{"Jan 01, 2025 - Mar 31, 2025", "from_date=2025-01-01&to_date=2025-03-31"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := periodCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&buf)
			require.NoError(t, cmd.Execute())
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestPeriodCommandRejectsBadMode(t *testing.T) {
	cmd := periodCmd()
	cmd.SetArgs([]string{"--mode", "yearly"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestClientDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/categories":
			writeEnvelope(w, http.StatusOK, []models.Category{{ID: 1, Name: "Groceries"}}, "")
		default:
			writeEnvelope(w, http.StatusNotFound, nil, "Route not found")
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL+"/", "tok")
	cats, err := c.categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Groceries", cats[0].Name)

	err = c.getJSON(context.Background(), "/api/nope", nil, nil)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Route not found", apiErr.Message)
}

func TestClientPagesThroughTransactions(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, r.URL.Query().Get("page"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("from_date"))
		writeEnvelope(w, http.StatusOK, models.TransactionPage{
			Transactions: []models.Transaction{{
				ID:          int64(page),
				Date:        civil.Date{Year: 2025, Month: time.January, Day: page},
				Description: "row",
			}},
			Pagination: models.NewPagination(page, 500, 3*500),
		}, "")
	}))
	defer srv.Close()

	q := period.DateRange{From: civil.Date{Year: 2025, Month: time.January, Day: 1}}.QueryValues()
	txns, err := newClient(srv.URL, "tok").transactions(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, []string{"1", "2", "3"}, pages)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 3}, txns[2].Date)
}

func TestLoginCommandPrintsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username != "demo_user" || req.Password != "secret" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, models.AuthResponse{Token: "signed.jwt", User: &models.User{Username: "demo_user"}}, "")
	}))
	defer srv.Close()

	viper.Set("api.url", srv.URL)
	defer viper.Set("api.url", "")

	var buf bytes.Buffer
	cmd := loginCmd()
	cmd.SetArgs([]string{"--username", "demo_user"})
	cmd.SetIn(strings.NewReader("secret\n"))
	cmd.SetOut(&buf)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "signed.jwt\n", buf.String())

	cmd = loginCmd()
	cmd.SetArgs([]string{"--username", "demo_user", "--password", "wrong"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

const statementSample = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250101120000[0:GMT]
<DTEND>20250131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2025011501
<NAME>Corner Coffee
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1974.50
<DTASOF>20250131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "january.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statementSample), 0o600))

	var buf bytes.Buffer
	cmd := importCmd()
	cmd.SetArgs([]string{"--dry-run", path})
	cmd.SetOut(&buf)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "1 transactions from 1 account(s)")
	assert.Contains(t, out, "2025-01-15")
	assert.Contains(t, out, "Corner Coffee")
	assert.Contains(t, out, "25.50")
}

func TestImportUploadsStatement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/import/ofx", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("category_id"))
		writeEnvelope(w, http.StatusOK, importSummary{Parsed: 1, Imported: 1, Categorized: 1}, "Statement imported")
	}))
	defer srv.Close()

	viper.Set("api.url", srv.URL)
	viper.Set("api.token", "tok")
	defer func() {
		viper.Set("api.url", "")
		viper.Set("api.token", "")
	}()

	path := filepath.Join(t.TempDir(), "january.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statementSample), 0o600))

	var buf bytes.Buffer
	cmd := importCmd()
	cmd.SetArgs([]string{"--category", "7", path})
	cmd.SetOut(&buf)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, buf.String(), "1 parsed, 1 imported, 0 already present, 1 categorized")
}

func TestExportWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("from_date"))
		writeEnvelope(w, http.StatusOK, models.CSVExport{CSVData: exportSample, Filename: "transactions_20250601_120000.csv"}, "")
	}))
	defer srv.Close()

	viper.Set("api.url", srv.URL)
	viper.Set("api.token", "tok")
	defer func() {
		viper.Set("api.url", "")
		viper.Set("api.token", "")
	}()

	dir := t.TempDir()
	cmd := exportCmd()
	cmd.SetArgs([]string{"--from", "2025-06-01", "--output", dir})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	b, err := os.ReadFile(filepath.Join(dir, "transactions_20250601_120000.csv"))
	require.NoError(t, err)
	assert.Equal(t, exportSample, string(b))
}
