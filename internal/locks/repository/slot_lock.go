package repository

import (
	"context"
	"errors"
	"time"

	"k9harmony/internal/store"
	"k9harmony/pkg/model"
)

// SlotLockRepository reads and writes slot_locks rows. List results keep table append order.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) error
	FindByID(ctx context.Context, lockID string) (*model.SlotLock, error)
	FindByTrainer(ctx context.Context, trainerID string) ([]*model.SlotLock, error)
	FindAll(ctx context.Context) ([]*model.SlotLock, error)
	Extend(ctx context.Context, lockID string, expiresAt time.Time) error
	Delete(ctx context.Context, lockID string) (bool, error)
}

type storeSlotLockRepository struct {
	store store.Store
}

func NewSlotLockRepository(s store.Store) SlotLockRepository {
	return &storeSlotLockRepository{store: s}
}

func (r *storeSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	return r.store.Insert(ctx, store.TableSlotLocks, store.Row{
		"lock_id":     lock.ID,
		"trainer_id":  lock.TrainerID,
		"slot_key":    lock.SlotKey,
		"slot_start":  lock.SlotStart,
		"slot_end":    lock.SlotEnd,
		"holder":      lock.Holder,
		"acquired_at": lock.AcquiredAt,
		"expires_at":  lock.ExpiresAt,
	})
}

// FindByID returns nil and no error when the lock does not exist.
func (r *storeSlotLockRepository) FindByID(ctx context.Context, lockID string) (*model.SlotLock, error) {
	row, err := r.store.FindBy(ctx, store.TableSlotLocks, "lock_id", lockID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromRow(row), nil
}

func (r *storeSlotLockRepository) FindByTrainer(ctx context.Context, trainerID string) ([]*model.SlotLock, error) {
	rows, err := r.store.FindAll(ctx, store.TableSlotLocks, "trainer_id", trainerID)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *storeSlotLockRepository) FindAll(ctx context.Context) ([]*model.SlotLock, error) {
	rows, err := r.store.FetchTable(ctx, store.TableSlotLocks)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *storeSlotLockRepository) Extend(ctx context.Context, lockID string, expiresAt time.Time) error {
	return r.store.Update(ctx, store.TableSlotLocks, "lock_id", lockID, store.Row{"expires_at": expiresAt})
}

func (r *storeSlotLockRepository) Delete(ctx context.Context, lockID string) (bool, error) {
	n, err := r.store.Delete(ctx, store.TableSlotLocks, "lock_id", lockID)
	return n > 0, err
}

func fromRows(rows []store.Row) []*model.SlotLock {
	locks := make([]*model.SlotLock, 0, len(rows))
	for _, row := range rows {
		locks = append(locks, fromRow(row))
	}
	return locks
}

func fromRow(row store.Row) *model.SlotLock {
	return &model.SlotLock{
		ID:         row.Str("lock_id"),
		TrainerID:  row.Str("trainer_id"),
		SlotKey:    row.Str("slot_key"),
		SlotStart:  row.Time("slot_start"),
		SlotEnd:    row.Time("slot_end"),
		Holder:     row.Str("holder"),
		AcquiredAt: row.Time("acquired_at"),
		ExpiresAt:  row.Time("expires_at"),
	}
}
