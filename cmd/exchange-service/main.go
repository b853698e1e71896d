package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/humanistic-tech/exchange-service/internal/config"
	"github.com/humanistic-tech/exchange-service/internal/delivery/http/handlers"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/kafka"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/logger"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/metrics"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/migrate"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/postgres"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/postgres/repository"
	"github.com/humanistic-tech/exchange-service/internal/usecase/exchange"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger.Init(cfg.LogConfig)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.Migrations.Path != "" {
		if err := migrate.Run(db, cfg.Migrations.Path); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init repositories
	txRepo := repository.NewDefaultTransactionRepository(db)
	logRepo, err := repository.NewDefaultRequestLogRepository(db)
	if err != nil {
		log.Fatalf("failed to init request log repository: %v", err)
	}

	// Init metrics
	exchangeMetrics := metrics.NewExchangeMetrics()

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	kafkaPublisher := kafka.NewKafkaPublisher(brokers, cfg.KafkaService.Topic)
	defer kafkaPublisher.Close()

	// Init exchange usecase
	uc := exchange.NewDefaultExchangeUsecase(
		txRepo,
		logRepo,
		cfg.Gateway,
		kafkaPublisher,
		exchangeMetrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start polling scheduler. The scheduler gets its own context so a stop
	// signal lets the in-flight pass finish instead of aborting it.
	scheduler := exchange.NewScheduler(uc, cfg.Scheduler.PollInterval)
	scheduler.Start(context.Background())

	// Start HTTP intake API
	handler := handlers.NewExchangeHandler(uc)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: handlers.NewRouter(handler),
	}

	go func() {
		log.Printf("HTTP server started on %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to serve: %v\n", err)
		}
	}()

	<-ctx.Done()

	// Finish the in-flight poll pass before exiting
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Printf("scheduler shutdown error: %v", err)
	}
}
