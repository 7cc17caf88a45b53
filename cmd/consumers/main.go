package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tixbay/cmd/consumers/jobs"
	"tixbay/internal/config"
	"tixbay/internal/consumers"
	"tixbay/internal/logger"
	"tixbay/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	cfg.NATS.ClientID = "tixbay-consumers"

	log.Info("Starting consumers service")

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	// The expiration sweep shares this process with the subscribers.
	repos := consumerService.Repos()
	bookingService := service.NewBookingService(repos.Bookings, repos.Tickets, consumerService.NATS())
	expirationJob := jobs.NewBookingExpirationJob(bookingService, cfg.BookingTTL, cfg.ExpiryCheckEvery)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	expirationJob.Start(jobCtx)

	log.Info("Consumers service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service")

	expirationJob.Stop()
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
