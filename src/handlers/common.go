package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"spendtracker/src/analytics"
	"spendtracker/src/currency"
	dbcache "spendtracker/src/db"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/middleware"
	"spendtracker/src/period"
	"spendtracker/src/util"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
	maxPage          = 1_000_000
	maxBodyBytes     = 1 << 20
)

// Settings carries the display preferences and clock shared by handlers.
type Settings struct {
	WeekStart time.Weekday
	Currency  string
	Formatter *currency.Formatter
	Now       func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Settings) today() civil.Date {
	return period.Today(s.now())
}

func (s Settings) formatter() *currency.Formatter {
	if s.Formatter != nil {
		return s.Formatter
	}
	return currency.MustFormatter("en-US", currency.DefaultCode)
}

// currencyCode validates the optional currency query parameter.
func (s Settings) currencyCode(r *http.Request) (string, error) {
	code := r.URL.Query().Get("currency")
	if code == "" {
		return s.formatter().Code(s.Currency), nil
	}
	return currency.ParseCode(code)
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		util.WriteError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", strings.ReplaceAll(name, "_", " "))
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// transactionQuery reads category_id, from_date and to_date.
func transactionQuery(r *http.Request) (db.TransactionQuery, error) {
	q := r.URL.Query()
	cat, err := analytics.ParseCategorySelector(q.Get(analytics.CategoryParam))
	if err != nil {
		return db.TransactionQuery{}, err
	}
	rng, err := period.ParseDateRange(q.Get(period.FromParam), q.Get(period.ToParam))
	if err != nil {
		return db.TransactionQuery{}, err
	}
	return db.TransactionQuery{Category: cat, Range: rng}, nil
}

// pageParams reads page (default 1) and limit (default 50, at most 500).
func pageParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	page, limit := 1, defaultPageLimit
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPage {
			return 0, 0, fmt.Errorf("page must be between 1 and %d", maxPage)
		}
		page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageLimit {
			return 0, 0, fmt.Errorf("limit must be between 1 and %d", maxPageLimit)
		}
		limit = n
	}
	return page, limit, nil
}

// selectionParams reads mode, offset, from_date and to_date. An absent mode
// falls back to def.
func selectionParams(r *http.Request, def period.Mode) (period.Selection, error) {
	q := r.URL.Query()
	mode := q.Get("mode")
	if mode == "" {
		mode = string(def)
	}
	return period.ParseSelection(mode, q.Get("offset"), q.Get(period.FromParam), q.Get(period.ToParam))
}

// writeStoreError maps store sentinels to 404 and 409 and logs the rest.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		util.WriteError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, db.ErrConflict):
		util.WriteError(w, http.StatusConflict, what+" already exists")
	default:
		logger.FromContext(r.Context()).Error().Err(err).Str("entity", what).Msg("Database operation failed")
		util.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// invalidate drops cached analytics after a ledger write.
func invalidate(r *http.Request, cache dbcache.Cache, userID int64) {
	if cache != nil {
		cache.InvalidateUser(r.Context(), userID)
	}
}
