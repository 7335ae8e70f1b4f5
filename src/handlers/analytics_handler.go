package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"spendtracker/src/analytics"
	dbcache "spendtracker/src/db"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"spendtracker/src/report"
	"spendtracker/src/util"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTrendMonths = 12
	maxTrendMonths     = 120
)

// serveCached answers from the analytics cache when possible. compute runs
// on a miss and its result is stored under the user's key set.
func serveCached(w http.ResponseWriter, r *http.Request, cache dbcache.Cache, userID int64, name string, query url.Values, compute func(ctx context.Context) (any, error)) {
	ctx := r.Context()
	key := dbcache.CacheKey(userID, name, query)
	if cache != nil {
		if b, ok := cache.Get(ctx, key); ok {
			w.Header().Set("X-Cache", "HIT")
			util.WriteJSON(w, http.StatusOK, json.RawMessage(b), "")
			return
		}
	}

	data, err := compute(ctx)
	if err != nil {
		writeStoreError(w, r, err, name)
		return
	}

	if cache != nil {
		if b, err := json.Marshal(data); err == nil {
			cache.Set(ctx, userID, key, b)
		} else {
			logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to encode analytics payload")
		}
	}
	w.Header().Set("X-Cache", "MISS")
	util.WriteJSON(w, http.StatusOK, data, "")
}

// loadLedger fetches the user's categories and the matching transactions
// concurrently.
func loadLedger(ctx context.Context, pool *pgxpool.Pool, userID int64, q db.TransactionQuery) ([]models.Category, []models.Transaction, error) {
	var categories []models.Category
	var txns []models.Transaction

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = db.GetCategoriesForUser(ctx, pool, userID)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = db.ListAllTransactions(ctx, pool, userID, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return categories, txns, nil
}

// GetSummary totals the transactions matching category_id, from_date and to_date.
func GetSummary(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		q, err := transactionQuery(r)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		serveCached(w, r, cache, userID, "summary", r.URL.Query(), func(ctx context.Context) (any, error) {
			txns, err := db.ListAllTransactions(ctx, pool, userID, q)
			if err != nil {
				return nil, err
			}
			return analytics.Summarize(analytics.Filter(txns, q.Category, q.Range)), nil
		})
	}
}

// GetCategorySpending breaks the date-filtered ledger down by category.
func GetCategorySpending(pool *pgxpool.Pool, cache dbcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		rng, err := period.ParseDateRange(r.URL.Query().Get(period.FromParam), r.URL.Query().Get(period.ToParam))
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		metric, err := analytics.ParseMetric(r.URL.Query().Get("metric"))
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		serveCached(w, r, cache, userID, "category-spending", r.URL.Query(), func(ctx context.Context) (any, error) {
			categories, txns, err := loadLedger(ctx, pool, userID, db.TransactionQuery{Range: rng})
			if err != nil {
				return nil, err
			}
			filtered := analytics.Filter(txns, analytics.AllCategories, rng)
			return analytics.BreakdownByCategory(filtered, categories, metric), nil
		})
	}
}

// trendWindow returns the range covering the last months calendar months,
// the current one included.
func trendWindow(today civil.Date, months int) period.DateRange {
	first := period.MonthBounds(today).From
	return period.DateRange{From: period.ShiftMonths(first, -(months - 1))}
}

// GetMonthlyTrends groups the ledger by month. Without from_date/to_date
// the window is the last `months` months (default 12).
func GetMonthlyTrends(pool *pgxpool.Pool, cache dbcache.Cache, settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		q, err := transactionQuery(r)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		months := defaultTrendMonths
		if v := r.URL.Query().Get("months"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxTrendMonths {
				util.WriteError(w, http.StatusBadRequest, "months must be between 1 and 120")
				return
			}
			months = n
		}

		today := settings.today()
		if q.Range.IsUnbounded() {
			q.Range = trendWindow(today, months)
		}
		key := r.URL.Query()
		key.Set("today", today.String())

		serveCached(w, r, cache, userID, "monthly-trends", key, func(ctx context.Context) (any, error) {
			txns, err := db.ListAllTransactions(ctx, pool, userID, q)
			if err != nil {
				return nil, err
			}
			return analytics.TrendByMonth(analytics.Filter(txns, q.Category, q.Range)), nil
		})
	}
}

// GetDashboard runs the full report pipeline for a period selection.
func GetDashboard(pool *pgxpool.Pool, cache dbcache.Cache, settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		sel, err := selectionParams(r, period.ModeAll)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		cat, err := analytics.ParseCategorySelector(r.URL.Query().Get(analytics.CategoryParam))
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		metric, err := analytics.ParseMetric(r.URL.Query().Get("metric"))
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		code, err := settings.currencyCode(r)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		today := settings.today()
		rng := period.Resolve(sel, today, settings.WeekStart)
		key := r.URL.Query()
		key.Set("today", today.String())

		serveCached(w, r, cache, userID, "dashboard", key, func(ctx context.Context) (any, error) {
			categories, txns, err := loadLedger(ctx, pool, userID, db.TransactionQuery{Category: cat, Range: rng})
			if err != nil {
				return nil, err
			}
			return report.Build(report.Input{
				Transactions: txns,
				Categories:   categories,
				Selection:    sel,
				Category:     cat,
				Today:        today,
				WeekStart:    settings.WeekStart,
				Metric:       metric,
				Currency:     code,
				Formatter:    settings.formatter(),
			}), nil
		})
	}
}
