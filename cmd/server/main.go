package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/ysekkat/payroll-engine/internal/config"
	"github.com/ysekkat/payroll-engine/internal/handler"
	"github.com/ysekkat/payroll-engine/internal/repository"
	"github.com/ysekkat/payroll-engine/internal/service"
	"github.com/ysekkat/payroll-engine/pkg/response"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	elementRepo := repository.NewElementRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	payslipRepo := repository.NewPayslipRepository(db)

	// Initialize services
	payrollService := service.NewPayrollService(employeeRepo, elementRepo, ruleRepo, loanRepo, payslipRepo, cfg)
	loanService := service.NewLoanService(loanRepo, employeeRepo, redisClient, cfg)

	payrollHandler := handler.NewPayrollHandler(payrollService)
	loanHandler := handler.NewLoanHandler(loanService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := setupRoutes(payrollHandler, loanHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(payrollHandler *handler.PayrollHandler, loanHandler *handler.LoanHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(response.JSONMiddleware)

	// Payroll
	api.HandleFunc("/payslips/compute", payrollHandler.ComputePayslip).Methods("POST")
	api.HandleFunc("/payslips/correct", payrollHandler.CorrectPayslip).Methods("POST")
	api.HandleFunc("/payslips/finalize", payrollHandler.FinalizePayslip).Methods("POST")
	api.HandleFunc("/payroll/runs", payrollHandler.RunPayroll).Methods("POST")

	// Loans and salary advances
	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/advances", loanHandler.CreateAdvance).Methods("POST")
	api.HandleFunc("/loans/{loanId}/schedule", loanHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/progress", loanHandler.GetProgress).Methods("GET")
	api.HandleFunc("/installments/{installmentId}/payment", loanHandler.RecordPayment).Methods("POST")

	return router
}
