package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ATU2119/Reservation-System/internal/config"
	"github.com/ATU2119/Reservation-System/internal/logging"
	"github.com/ATU2119/Reservation-System/internal/service"
	"github.com/ATU2119/Reservation-System/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("reservation system failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	cleanup()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	reservations := store.New(cfg.Location(), logger)
	svc := service.NewReservationService(reservations, logger)

	if err := svc.Bootstrap(ctx); err != nil {
		return err
	}
	return svc.RunChecks(ctx, os.Stdout)
}
