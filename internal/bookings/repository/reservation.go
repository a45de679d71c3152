package repository

import (
	"context"
	"errors"
	"time"

	bookingserrors "k9harmony/internal/bookings/errors"
	"k9harmony/internal/store"
	"k9harmony/pkg/model"
)

type ReservationRepository interface {
	Insert(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByToken(ctx context.Context, token string) (*model.Reservation, error)
	FindByTrainer(ctx context.Context, trainerID string) ([]*model.Reservation, error)
	FindAll(ctx context.Context) ([]*model.Reservation, error)
	// FindBlocking returns the trainer's reservations that intersect [from, to), whatever their status.
	FindBlocking(ctx context.Context, trainerID string, from, to time.Time) ([]*model.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status model.ReservationStatus, updatedAt time.Time) error
}

type storeReservationRepository struct {
	store store.Store
}

func NewReservationRepository(s store.Store) ReservationRepository {
	return &storeReservationRepository{store: s}
}

func (r *storeReservationRepository) Insert(ctx context.Context, res *model.Reservation) error {
	return r.store.Insert(ctx, store.TableReservations, toRow(res))
}

func (r *storeReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	return r.findOne(ctx, "reservation_id", id)
}

func (r *storeReservationRepository) FindByToken(ctx context.Context, token string) (*model.Reservation, error) {
	return r.findOne(ctx, "idempotency_token", token)
}

func (r *storeReservationRepository) findOne(ctx context.Context, column, value string) (*model.Reservation, error) {
	row, err := r.store.FindBy(ctx, store.TableReservations, column, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, err
	}
	return fromRow(row), nil
}

func (r *storeReservationRepository) FindByTrainer(ctx context.Context, trainerID string) ([]*model.Reservation, error) {
	rows, err := r.store.FindAll(ctx, store.TableReservations, "trainer_id", trainerID)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *storeReservationRepository) FindAll(ctx context.Context) ([]*model.Reservation, error) {
	rows, err := r.store.FetchTable(ctx, store.TableReservations)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *storeReservationRepository) FindBlocking(ctx context.Context, trainerID string, from, to time.Time) ([]*model.Reservation, error) {
	all, err := r.FindByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Reservation, 0, len(all))
	for _, res := range all {
		if res.Overlaps(from, to) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *storeReservationRepository) UpdateStatus(ctx context.Context, id string, status model.ReservationStatus, updatedAt time.Time) error {
	err := r.store.Update(ctx, store.TableReservations, "reservation_id", id, store.Row{
		"status":     string(status),
		"updated_at": updatedAt,
	})
	if errors.Is(err, store.ErrNotFound) {
		return bookingserrors.ErrNotFound
	}
	return err
}

func toRow(r *model.Reservation) store.Row {
	return store.Row{
		"reservation_id":    r.ID,
		"reservation_code":  r.Code,
		"customer_id":       r.CustomerID,
		"animal_id":         r.AnimalID,
		"trainer_id":        r.TrainerID,
		"trainer_code":      r.TrainerCode,
		"start_time":        r.StartTime,
		"end_time":          r.EndTime,
		"status":            string(r.Status),
		"payment_status":    string(r.PaymentStatus),
		"payment_reference": r.PaymentReference,
		"amount":            r.Amount,
		"currency":          r.Currency,
		"multi_animal":      r.MultiAnimal,
		"receipt_requested": r.ReceiptRequested,
		"memo":              r.Memo,
		"idempotency_token": r.IdempotencyToken,
		"lock_id":           r.LockID,
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	}
}

func fromRows(rows []store.Row) []*model.Reservation {
	out := make([]*model.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out
}

func fromRow(row store.Row) *model.Reservation {
	return &model.Reservation{
		ID:               row.Str("reservation_id"),
		Code:             row.Str("reservation_code"),
		CustomerID:       row.Str("customer_id"),
		AnimalID:         row.Str("animal_id"),
		TrainerID:        row.Str("trainer_id"),
		TrainerCode:      row.Str("trainer_code"),
		StartTime:        row.Time("start_time"),
		EndTime:          row.Time("end_time"),
		Status:           model.ReservationStatus(row.Str("status")),
		PaymentStatus:    model.PaymentStatus(row.Str("payment_status")),
		PaymentReference: row.Str("payment_reference"),
		Amount:           row.Int("amount"),
		Currency:         row.Str("currency"),
		MultiAnimal:      row.Bool("multi_animal"),
		ReceiptRequested: row.Bool("receipt_requested"),
		Memo:             row.Str("memo"),
		IdempotencyToken: row.Str("idempotency_token"),
		LockID:           row.Str("lock_id"),
		CreatedAt:        row.Time("created_at"),
		UpdatedAt:        row.Time("updated_at"),
	}
}
