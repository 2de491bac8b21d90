package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	"github.com/lending-office/backoffice/internal/config"
	"github.com/lending-office/backoffice/internal/handler"
	"github.com/lending-office/backoffice/internal/integrations/marketdata"
	"github.com/lending-office/backoffice/internal/repository"
	"github.com/lending-office/backoffice/internal/scheduler"
	"github.com/lending-office/backoffice/internal/service"
	"github.com/lending-office/backoffice/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	sender := email.NewSender(cfg, logger)
	svc := service.NewService(repo, sender, logger, cfg)
	h := handler.NewHandler(svc)
	prices := marketdata.NewClient(cfg, logger)

	// Daily revaluation and report runs
	sched := scheduler.NewScheduler(svc, repo, prices, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/reports/npa", h.NPAReport).Methods("GET")
	r.HandleFunc("/reports/exposure", h.ExposureReport).Methods("GET")
	r.HandleFunc("/reports/liquidity", h.LiquidityReport).Methods("GET")
	r.HandleFunc("/reports/rebalancing", h.RebalancingReport).Methods("GET")
	r.HandleFunc("/reports/forecast", h.ForecastReport).Methods("GET")
	r.HandleFunc("/loans/{id}/schedule", h.LoanSchedule).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
