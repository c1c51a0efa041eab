package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/ysekkat/payroll-engine/internal/config"
	"github.com/ysekkat/payroll-engine/internal/repository"
	"github.com/ysekkat/payroll-engine/internal/service"
)

func main() {
	log.Println("Starting payroll scheduler...")

	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	loanService := service.NewLoanService(loanRepo, employeeRepo, redisClient, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	setupCronJobs(c, cfg, loanService)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loanService *service.LoanService) {
	// Daily job to flip pending installments past their due date to overdue
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		log.Println("Running overdue installment update job...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		affected, err := loanService.MarkOverdueInstallments(ctx, time.Now())
		if err != nil {
			log.Printf("Overdue installment update failed: %v", err)
			return
		}
		log.Printf("Overdue installment update complete, %d installments marked", affected)
	})
	if err != nil {
		log.Printf("Error scheduling overdue installment update job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
