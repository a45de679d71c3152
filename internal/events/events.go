package events

import (
	"context"
	"time"

	"k9harmony/pkg/model"
)

const (
	TypeReservationConfirmed = "reservation.confirmed"
	TypeReservationCancelled = "reservation.cancelled"
	TypeCompensationFailed   = "booking.compensation_failed"

	SchemaVersion = "1"
	Source        = "k9harmony-booking"
)

// Publisher announces reservation lifecycle changes. Callers treat failures as non-fatal.
type Publisher interface {
	ReservationConfirmed(ctx context.Context, r *model.Reservation) error
	ReservationCancelled(ctx context.Context, r *model.Reservation, actorType model.ActorType, actorID, reason string) error
	CompensationFailed(ctx context.Context, rec *model.ReconciliationRecord) error
	Close() error
}

type ReservationEvent struct {
	ReservationID   string                  `json:"reservation_id"`
	ReservationCode string                  `json:"reservation_code"`
	CustomerID      string                  `json:"customer_id"`
	AnimalID        string                  `json:"animal_id"`
	TrainerID       string                  `json:"trainer_id"`
	TrainerCode     string                  `json:"trainer_code"`
	StartTime       time.Time               `json:"start_time"`
	EndTime         time.Time               `json:"end_time"`
	Status          model.ReservationStatus `json:"status"`
	Amount          int64                   `json:"amount"`
	Currency        string                  `json:"currency"`
	ActorType       model.ActorType         `json:"actor_type,omitempty"`
	ActorID         string                  `json:"actor_id,omitempty"`
	Reason          string                  `json:"reason,omitempty"`
}

func newReservationEvent(r *model.Reservation) ReservationEvent {
	return ReservationEvent{
		ReservationID:   r.ID,
		ReservationCode: r.Code,
		CustomerID:      r.CustomerID,
		AnimalID:        r.AnimalID,
		TrainerID:       r.TrainerID,
		TrainerCode:     r.TrainerCode,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Status:          r.Status,
		Amount:          r.Amount,
		Currency:        r.Currency,
	}
}

type nop struct{}

// Nop drops every event. Used when Kafka is not configured.
func Nop() Publisher {
	return nop{}
}

func (nop) ReservationConfirmed(context.Context, *model.Reservation) error { return nil }

func (nop) ReservationCancelled(context.Context, *model.Reservation, model.ActorType, string, string) error {
	return nil
}

func (nop) CompensationFailed(context.Context, *model.ReconciliationRecord) error { return nil }

func (nop) Close() error { return nil }
