package main

import (
	"context"
	_ "time/tzdata"

	auditHandler "k9harmony/internal/audit/handler"
	availabilityHandler "k9harmony/internal/availability/handler"
	bookingHandler "k9harmony/internal/bookings/handler"
	locksHandler "k9harmony/internal/locks/handler"
	"k9harmony/internal/services"
	"k9harmony/internal/store"
	"k9harmony/pkg/app"
	"k9harmony/pkg/config"
	"k9harmony/pkg/contracts"
)

const ServiceName = "booking"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetRedis()

	cfg.Log.Info("Starting Booking service")
	svc, err := services.Build(cfg, nil, nil)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}

	handlers := contracts.Handlers{
		availabilityHandler.NewAvailabilityHandler(svc.Availability, cfg.Log),
		bookingHandler.NewBookingHandler(svc.Bookings, cfg.Log),
		locksHandler.NewSlotLockHandler(svc.Locks, svc.Trainers, cfg.Log),
		auditHandler.NewAuditHandler(svc.Audit, cfg.Log),
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers, readiness(cfg, svc.Store))
	serverApp.OnShutdown(func(ctx context.Context) {
		if err := svc.Close(ctx); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
		cfg.GracefulShutdown()
	})
	serverApp.Run()
}

func readiness(cfg *config.Config, st store.Store) map[string]app.Pinger {
	checks := map[string]app.Pinger{}
	if p, ok := st.(store.Pinger); ok {
		checks["store"] = p
	}
	if cfg.Client.Redis != nil {
		checks["redis"] = app.PingFunc(func(ctx context.Context) error {
			return cfg.Client.Redis.Ping(ctx).Err()
		})
	}
	return checks
}
