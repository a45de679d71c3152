package service

import (
	"context"
	"fmt"
	"time"

	"k9harmony/pkg/clock"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"
)

type TrainerSource interface {
	GetBookable(ctx context.Context, code string) (*model.TrainerConfig, error)
}

type ReservationSource interface {
	// FindBlocking returns the trainer's reservations that intersect [from, to).
	FindBlocking(ctx context.Context, trainerID string, from, to time.Time) ([]*model.Reservation, error)
}

type LockSource interface {
	LiveLocks(ctx context.Context, trainerID string) ([]*model.SlotLock, error)
}

// Days maps YYYY-MM-DD to the chronologically sorted HH:MM starts offered that day.
type Days map[string][]string

type AvailabilityService interface {
	ComputeAvailability(ctx context.Context, trainerCode string, year int, month time.Month, multiAnimal bool, holder string) (Days, error)
	// IsBookable re-checks one candidate against hours, horizon, reservations and other holders' locks.
	IsBookable(ctx context.Context, trainer *model.TrainerConfig, start time.Time, duration time.Duration, holder string) (bool, error)
}

type availabilityService struct {
	trainers     TrainerSource
	reservations ReservationSource
	locks        LockSource
	travel       TravelProvider
	clock        clock.Clock
	log          *logger.Logger
}

func NewAvailabilityService(
	trainers TrainerSource,
	reservations ReservationSource,
	locks LockSource,
	travel TravelProvider,
	clk clock.Clock,
	log *logger.Logger,
) AvailabilityService {
	if travel == nil {
		travel = StaticTravel{}
	}
	return &availabilityService{
		trainers:     trainers,
		reservations: reservations,
		locks:        locks,
		travel:       travel,
		clock:        clk,
		log:          log,
	}
}

func (s *availabilityService) ComputeAvailability(ctx context.Context, trainerCode string, year int, month time.Month, multiAnimal bool, holder string) (Days, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid month: %d", month))
	}
	trainer, err := s.trainers.GetBookable(ctx, trainerCode)
	if err != nil {
		return nil, err
	}

	loc := trainer.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	p, err := s.plan(ctx, trainer, first, next, trainer.LessonDuration(multiAnimal), holder)
	if err != nil {
		return nil, err
	}

	days := make(Days)
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		days[day.Format(model.DateLayout)] = p.slotsOn(day)
	}

	s.log.Debug("Availability computed",
		"trainer_code", trainer.Code,
		"year_month", first.Format("2006-01"),
		"multi_animal", multiAnimal,
		"reservations", len(p.reservations),
		"locks", len(p.locks),
	)
	return days, nil
}

func (s *availabilityService) IsBookable(ctx context.Context, trainer *model.TrainerConfig, start time.Time, duration time.Duration, holder string) (bool, error) {
	local := start.In(trainer.Location())
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())

	p, err := s.plan(ctx, trainer, dayStart, dayStart.AddDate(0, 0, 1), duration, holder)
	if err != nil {
		return false, err
	}
	if reason := p.reject(local); reason != "" {
		s.log.Debug("Slot not bookable",
			"trainer_code", trainer.Code,
			"start", start,
			"reason", reason,
		)
		return false, nil
	}
	return true, nil
}

func (s *availabilityService) plan(ctx context.Context, trainer *model.TrainerConfig, from, to time.Time, duration time.Duration, holder string) (*plan, error) {
	buffer := trainer.Buffer()
	if est, err := s.travel.EstimateTransit(ctx, trainer); err == nil {
		buffer = est
	}

	reservations, err := s.reservations.FindBlocking(ctx, trainer.ID, from.Add(-buffer-duration), to.Add(buffer+duration))
	if err != nil {
		s.log.Error("Failed to load reservations", "trainer_id", trainer.ID, "error", err)
		return nil, apperrors.Unavailable("Reservation store").WithCause(err)
	}
	locks, err := s.locks.LiveLocks(ctx, trainer.ID)
	if err != nil {
		s.log.Error("Failed to load slot locks", "trainer_id", trainer.ID, "error", err)
		return nil, apperrors.Unavailable("Lock store").WithCause(err)
	}

	now := s.clock.Now().In(trainer.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	p := &plan{
		trainer:  trainer,
		duration: duration,
		buffer:   buffer,
		now:      now,
		today:    today,
		horizon:  today.AddDate(0, 0, trainer.MaxAdvanceDays),
	}
	for _, r := range reservations {
		if r.BlocksSlots() {
			p.reservations = append(p.reservations, r)
		}
	}
	for _, l := range locks {
		if l.Holder != holder || holder == "" {
			p.locks = append(p.locks, l)
		}
	}
	return p, nil
}
