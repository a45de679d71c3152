package service

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	auditservice "k9harmony/internal/audit/service"
	bookingserrors "k9harmony/internal/bookings/errors"
	"k9harmony/internal/bookings/reconciliation"
	"k9harmony/internal/bookings/repository"
	"k9harmony/internal/bookings/validator"
	"k9harmony/internal/events"
	"k9harmony/internal/payments"
	"k9harmony/pkg/clock"
	"k9harmony/pkg/config"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/model"
)

type TrainerSource interface {
	GetBookable(ctx context.Context, code string) (*model.TrainerConfig, error)
}

type SlotChecker interface {
	IsBookable(ctx context.Context, trainer *model.TrainerConfig, start time.Time, duration time.Duration, holder string) (bool, error)
}

type Locker interface {
	Acquire(ctx context.Context, trainerID string, start, end time.Time, holder string, ttl time.Duration) (*model.SlotLock, error)
	Release(ctx context.Context, lockID, holder string) error
}

type BookingService interface {
	// BookAndPay locks the slot, charges the customer and stores a confirmed reservation.
	// Retrying with the same idempotency token returns the stored reservation without charging again.
	BookAndPay(ctx context.Context, draft *model.ReservationDraft, payment *model.PaymentDraft, idempotencyToken string) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error)
	// FindDoubleBookings reports overlapping confirmed reservations. An empty trainerID scans every trainer.
	FindDoubleBookings(ctx context.Context, trainerID string) ([]DoubleBooking, error)
}

type Dependencies struct {
	Reservations repository.ReservationRepository
	Transactions repository.TransactionLogRepository
	Trainers     TrainerSource
	Availability SlotChecker
	Locks        Locker
	Gateway      payments.Gateway
	Audit        auditservice.Recorder
	Events       events.Publisher
	Journal      reconciliation.Journal
	Validator    *validator.BookingValidator
	Clock        clock.Clock
}

type bookingService struct {
	repo         repository.ReservationRepository
	txlog        repository.TransactionLogRepository
	trainers     TrainerSource
	availability SlotChecker
	locks        Locker
	gateway      payments.Gateway
	audit        auditservice.Recorder
	events       events.Publisher
	journal      reconciliation.Journal
	validator    *validator.BookingValidator
	clock        clock.Clock
	cfg          *config.Config
}

func NewBookingService(deps Dependencies, cfg *config.Config) BookingService {
	if deps.Events == nil {
		deps.Events = events.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	return &bookingService{
		repo:         deps.Reservations,
		txlog:        deps.Transactions,
		trainers:     deps.Trainers,
		availability: deps.Availability,
		locks:        deps.Locks,
		gateway:      deps.Gateway,
		audit:        deps.Audit,
		events:       deps.Events,
		journal:      deps.Journal,
		validator:    deps.Validator,
		clock:        deps.Clock,
		cfg:          cfg,
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to load reservation", "id", id, "error", err)
		return nil, unavailable(err)
	}
	return r, nil
}

func (s *bookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error) {
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, apperrors.Validation("Invalid cancel request", map[string]any{"errors": err})
	}

	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if model.ActorType(req.ActorType) == model.ActorCustomer && req.ActorID != r.CustomerID {
		return nil, apperrors.Forbidden("Customers can only cancel their own reservations")
	}

	switch r.Status {
	case model.StatusCancelled:
		return r, nil
	case model.StatusExpired:
		return nil, apperrors.Validation("Expired reservations cannot be cancelled", map[string]any{
			"reservation_id": id,
			"status":         string(r.Status),
		}).WithCause(bookingserrors.ErrNotCancellable)
	}

	before := r.AuditView()
	now := s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled, now); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return nil, unavailable(err)
	}
	r.Status = model.StatusCancelled
	r.UpdatedAt = now

	after := r.AuditView()
	if req.Reason != "" {
		after["cancel_reason"] = req.Reason
	}
	actorType := model.ActorType(req.ActorType)
	s.audit.Record(ctx, model.EntityReservation, r.ID, model.ActionUpdate, actorType, req.ActorID, before, after)
	if err := s.events.ReservationCancelled(ctx, r, actorType, req.ActorID, req.Reason); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation cancelled event", "id", r.ID, "error", err)
	}

	s.cfg.Log.Info("Reservation cancelled",
		"id", r.ID,
		"code", r.Code,
		"actor_type", req.ActorType,
		"actor_id", req.ActorID,
	)
	return r, nil
}

func unavailable(err error) error {
	return apperrors.Unavailable("Reservation store").WithCause(err)
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// reservationCode builds the human reference R-YYYYMMDD-XXXXXX from the lesson date in the trainer's zone.
func reservationCode(start time.Time, loc *time.Location) string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "R-" + start.In(loc).Format("20060102") + "-" + string(buf)
}
