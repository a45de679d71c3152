// Package services assembles the booking engine from configuration. The API server and
// bookingctl share it so both run against the same store and gateway wiring.
package services

import (
	"context"
	"fmt"

	auditrepo "k9harmony/internal/audit/repository"
	auditservice "k9harmony/internal/audit/service"
	availabilityservice "k9harmony/internal/availability/service"
	"k9harmony/internal/bookings/reconciliation"
	bookingsrepo "k9harmony/internal/bookings/repository"
	bookingservice "k9harmony/internal/bookings/service"
	bookingsvalidator "k9harmony/internal/bookings/validator"
	"k9harmony/internal/events"
	locksrepo "k9harmony/internal/locks/repository"
	locksservice "k9harmony/internal/locks/service"
	"k9harmony/internal/payments"
	"k9harmony/internal/store"
	trainersrepo "k9harmony/internal/trainers/repository"
	trainerservice "k9harmony/internal/trainers/service"
	trainersvalidator "k9harmony/internal/trainers/validator"
	"k9harmony/pkg/clock"
	"k9harmony/pkg/config"
	kafka_config "k9harmony/pkg/kafka/config"
)

type Services struct {
	Store        store.Store
	Trainers     trainerservice.TrainerService
	Locks        locksservice.LockManager
	Availability availabilityservice.AvailabilityService
	Bookings     bookingservice.BookingService
	Audit        auditservice.Recorder
	Gateway      payments.Gateway
	Events       events.Publisher
	Journal      *reconciliation.FileJournal
}

// Build wires every component on top of st. A nil st uses the configured backend.
func Build(cfg *config.Config, st store.Store, clk clock.Clock) (*Services, error) {
	if st == nil {
		st = store.FromConfig(cfg)
	}
	if clk == nil {
		clk = clock.NewSystem()
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return nil, err
	}

	trainers := trainerservice.NewTrainerService(
		trainersrepo.NewTrainerRepository(st),
		trainersvalidator.NewTrainerValidator(cfg.Log),
		cfg,
	)
	reservations := bookingsrepo.NewReservationRepository(st)
	locks := locksservice.NewLockManager(locksrepo.NewSlotLockRepository(st), clk, cfg.LockTTL, cfg.Log.Component("locks"))
	availability := availabilityservice.NewAvailabilityService(trainers, reservations, locks, nil, clk, cfg.Log.Component("availability"))
	audit := auditservice.NewRecorder(auditrepo.NewAuditRepository(st), clk, cfg.Log.Component("audit"))
	gateway := newGateway(cfg, clk)
	journal := reconciliation.NewFileJournal(cfg.ReconciliationJournal)

	bookings := bookingservice.NewBookingService(bookingservice.Dependencies{
		Reservations: reservations,
		Transactions: bookingsrepo.NewTransactionLogRepository(st),
		Trainers:     trainers,
		Availability: availability,
		Locks:        locks,
		Gateway:      gateway,
		Audit:        audit,
		Events:       publisher,
		Journal:      journal,
		Validator:    bookingsvalidator.NewBookingValidator(cfg.Log),
		Clock:        clk,
	}, cfg)

	return &Services{
		Store:        st,
		Trainers:     trainers,
		Locks:        locks,
		Availability: availability,
		Bookings:     bookings,
		Audit:        audit,
		Gateway:      gateway,
		Events:       publisher,
		Journal:      journal,
	}, nil
}

// Close flushes the event producers.
func (s *Services) Close(_ context.Context) error {
	return s.Events.Close()
}

func newGateway(cfg *config.Config, clk clock.Clock) payments.Gateway {
	if cfg.PaymentGatewayURL == "" {
		cfg.Log.Warn("PAYMENT_GATEWAY_URL not set, using the sandbox gateway")
		return payments.NewSandbox(clk)
	}
	return payments.NewSquare(
		cfg.PaymentGatewayURL,
		cfg.PaymentGatewayToken,
		cfg.PaymentLocationID,
		cfg.PaymentTimeout,
		cfg.Log.Component("payments"),
	)
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if !cfg.EventsEnabled {
		return events.Nop(), nil
	}
	kcfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	publisher, err := events.NewKafkaPublisher(cfg, kcfg, cfg.Log.Component("events"))
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	cfg.Log.Info("Publishing booking events to Kafka", "topic", cfg.EventsTopic, "brokers", kcfg.Brokers)
	return publisher, nil
}
