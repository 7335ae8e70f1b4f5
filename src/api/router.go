package api

import (
	"net/http"
	dbcache "spendtracker/src/db"
	"spendtracker/src/handlers"
	"spendtracker/src/middleware"
	"spendtracker/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Deps is everything the routes need.
type Deps struct {
	Pool           *pgxpool.Pool
	Cache          dbcache.Cache
	Logger         zerolog.Logger
	Auth           handlers.AuthConfig
	Settings       handlers.Settings
	AllowedOrigins []string
	DemoMode       bool
}

func NewRouter(d Deps) *chi.Mux {
	pool, cache, settings := d.Pool, d.Cache, d.Settings

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(d.AllowedOrigins))
	r.Use(middleware.DemoMode(d.DemoMode))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", handlers.Health(pool))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handlers.Register(pool, d.Auth))
		r.Post("/auth/login", handlers.Login(pool, d.Auth))
		r.Post("/auth/demo-login", handlers.DemoLogin(pool, d.Auth))

		// Protected routes
		r.With(middleware.JWTAuth(d.Auth.Secret)).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetUser(pool))
			r.Put("/user", handlers.UpdateUser(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))

			// Categories
			r.Get("/categories", handlers.GetCategories(pool))
			r.Post("/categories", handlers.CreateCategory(pool))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(pool, cache))

			// Transactions
			r.Get("/transactions", handlers.GetTransactions(pool))
			r.Post("/transactions", handlers.CreateTransaction(pool, cache))
			r.Get("/transactions/summary", handlers.GetSummary(pool, cache))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(pool, cache))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(pool, cache))

			// Analytics
			r.Get("/analytics/category-spending", handlers.GetCategorySpending(pool, cache))
			r.Get("/analytics/monthly-trends", handlers.GetMonthlyTrends(pool, cache, settings))
			r.Get("/analytics/dashboard", handlers.GetDashboard(pool, cache, settings))

			// Period
			r.Get("/period", handlers.GetPeriod(settings))
			r.Post("/period/transition", handlers.TransitionPeriod(settings))

			// Import / export
			r.Get("/export/csv", handlers.ExportCSV(pool, settings))
			r.Post("/import/ofx", handlers.ImportOFX(pool, cache))

			// Category rules
			r.Get("/category-rules", handlers.GetCategoryRules(pool))
			r.Post("/category-rules", handlers.CreateCategoryRule(pool))
			r.Post("/category-rules/apply", handlers.ApplyCategoryRules(pool, cache))
			r.Get("/category-rules/{rule_id}", handlers.GetCategoryRule(pool))
			r.Put("/category-rules/{rule_id}", handlers.UpdateCategoryRule(pool))
			r.Delete("/category-rules/{rule_id}", handlers.DeleteCategoryRule(pool))

			// Budgets
			r.Get("/budgets", handlers.GetBudgets(pool))
			r.Post("/budgets", handlers.CreateBudget(pool))
			r.Get("/budgets/progress", handlers.GetBudgetProgress(pool, settings))
			r.Put("/budgets/{budget_id}", handlers.UpdateBudget(pool))
			r.Delete("/budgets/{budget_id}", handlers.DeleteBudget(pool))
		})
	})

	return r
}
