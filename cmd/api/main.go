// @title           SettleUp API
// @version         1.0
// @description     Shared-expense ledger with split calculation and settlement optimization.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/ykuznetsov/settleup/docs"
	"github.com/ykuznetsov/settleup/internal/auth"
	"github.com/ykuznetsov/settleup/internal/config"
	"github.com/ykuznetsov/settleup/internal/database"
	"github.com/ykuznetsov/settleup/internal/expense"
	"github.com/ykuznetsov/settleup/internal/expense/split"
	"github.com/ykuznetsov/settleup/internal/group"
	"github.com/ykuznetsov/settleup/internal/metrics"
	"github.com/ykuznetsov/settleup/internal/notification"
	"github.com/ykuznetsov/settleup/internal/settlement"
	"github.com/ykuznetsov/settleup/internal/user"
	mw "github.com/ykuznetsov/settleup/pkg/middleware"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg)

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}
	logger.Info().Msg("connected to database")

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	splitFactory := split.NewFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Auth feature
	authService := auth.NewService(userRepo, jwtManager)
	authHandler := auth.NewHandler(authService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, notificationService)
	groupHandler := group.NewHandler(groupService)

	// Expense feature
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, splitFactory, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature reads expenses through the repository directly
	settlementService := settlement.NewService(expenseRepo, groupService)
	settlementHandler := settlement.NewHandler(settlementService)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(metrics.Middleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	// Session middleware: Bearer JWT, with the test-user header shortcut in
	// development.
	protect := func(next http.Handler) http.Handler {
		h := mw.Auth(jwtManager)(next)
		if cfg.Environment == "development" {
			h = mw.TestUser(h)
		}
		return h
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(protect))

		r.Group(func(r chi.Router) {
			r.Use(protect)

			r.Mount("/users", userHandler.Routes())
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/balances", settlementHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Environment).Msg("server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}
