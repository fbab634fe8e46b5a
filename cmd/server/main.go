package main

import (
	"database/sql"
	"fmt"
	"net/http"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/config"
	"commerce-mollie/internal/db"
	"commerce-mollie/internal/logger"
	"commerce-mollie/internal/provider"
	"commerce-mollie/internal/server"
	"commerce-mollie/internal/store"

	"go.uber.org/zap"
)

// Seams for testing.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	handler := newServer(cfg, database)

	logger.L().Info("mollie payment adapter listening",
		zap.String("port", cfg.AppPort),
		zap.String("callback_path", server.CallbackPath),
		zap.Bool("test_mode", cfg.Provider.TestMode),
	)

	return startServerFunc(":"+cfg.AppPort, handler)
}

// newServer wires the provider and callback endpoint onto a router with a
// health check.
func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	services := commerce.StaticServices{
		Currency: commerce.Currency{ID: cfg.Currency, Code: cfg.Currency},
	}

	p := provider.New(cfg.Provider, services)
	repo := store.NewRepository(database)
	srv := server.New(p, repo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	mux.Handle(server.CallbackPath, srv.Handler())

	return mux
}
