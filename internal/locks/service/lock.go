package service

import (
	"context"
	"fmt"
	"time"

	lockserrors "k9harmony/internal/locks/errors"
	"k9harmony/internal/locks/repository"
	"k9harmony/pkg/clock"
	"k9harmony/pkg/config"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/google/uuid"
)

type LockManager interface {
	// Acquire claims [start, end) on the trainer's calendar. A live lock already held by
	// holder on the same slot key is extended and returned.
	Acquire(ctx context.Context, trainerID string, start, end time.Time, holder string, ttl time.Duration) (*model.SlotLock, error)
	// Release is idempotent. Releasing another holder's live lock is a conflict.
	Release(ctx context.Context, lockID, holder string) error
	SweepExpired(ctx context.Context) (int, error)
	LiveLocks(ctx context.Context, trainerID string) ([]*model.SlotLock, error)
}

type lockManager struct {
	repo       repository.SlotLockRepository
	clock      clock.Clock
	defaultTTL time.Duration
	log        *logger.Logger
}

func NewLockManager(repo repository.SlotLockRepository, clk clock.Clock, defaultTTL time.Duration, log *logger.Logger) LockManager {
	return &lockManager{
		repo:       repo,
		clock:      clk,
		defaultTTL: defaultTTL,
		log:        log,
	}
}

func (m *lockManager) Acquire(ctx context.Context, trainerID string, start, end time.Time, holder string, ttl time.Duration) (*model.SlotLock, error) {
	if trainerID == "" || holder == "" {
		return nil, apperrors.InvalidInput("Trainer ID and holder are required to lock a slot")
	}
	if start.IsZero() {
		return nil, apperrors.InvalidInput("Slot start time is required")
	}
	if !end.IsZero() && !end.After(start) {
		return nil, apperrors.InvalidInput("Slot end must be after slot start")
	}
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	if ttl < config.MinLockTTL || ttl > config.MaxLockTTL {
		return nil, apperrors.Validation("Lock TTL out of range", map[string]any{
			"ttl": ttl.String(),
			"min": config.MinLockTTL.String(),
			"max": config.MaxLockTTL.String(),
		}).WithCause(lockserrors.ErrInvalidTTL)
	}

	key := model.SlotKey(trainerID, start)
	now := m.clock.Now()

	existing, err := m.repo.FindByTrainer(ctx, trainerID)
	if err != nil {
		m.log.Error("Failed to read slot locks", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Unavailable("Lock store").WithCause(err)
	}
	idx := buildIndex(existing, now)
	m.purge(ctx, idx.expired)

	if own := idx.heldBy(key, holder); own != nil {
		return m.extend(ctx, own, now, ttl)
	}
	for _, l := range idx.conflicting(key, start, end) {
		if l.Holder != holder {
			return nil, heldError(l)
		}
	}

	lock := &model.SlotLock{
		ID:         uuid.New().String(),
		TrainerID:  trainerID,
		SlotKey:    key,
		SlotStart:  start.UTC(),
		SlotEnd:    end.UTC(),
		Holder:     holder,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := m.repo.Create(ctx, lock); err != nil {
		m.log.Error("Failed to write slot lock", "slot_key", key, "error", err)
		return nil, apperrors.Unavailable("Lock store").WithCause(err)
	}

	winner, err := m.verify(ctx, lock)
	if err != nil {
		m.discard(ctx, lock)
		return nil, apperrors.Unavailable("Lock store").WithCause(err)
	}
	if winner != nil && winner.ID != lock.ID {
		m.discard(ctx, lock)
		if winner.Holder == holder {
			m.log.Debug("Concurrent acquire by the same holder, keeping the earlier lock", "slot_key", key, "lock_id", winner.ID)
			return winner, nil
		}
		m.log.Info("Lost slot lock race", "slot_key", key, "holder", holder, "winner", winner.Holder)
		return nil, heldError(winner)
	}

	m.log.Debug("Slot lock acquired",
		"lock_id", lock.ID,
		"slot_key", key,
		"holder", holder,
		"expires_at", lock.ExpiresAt,
	)
	return lock, nil
}

// verify re-reads the trainer's locks and picks the first live conflicting row in append order.
// On the same key the first row wins whoever holds it. Rows of the same holder on other keys
// are not competitors.
func (m *lockManager) verify(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	rows, err := m.repo.FindByTrainer(ctx, lock.TrainerID)
	if err != nil {
		return nil, err
	}
	idx := buildIndex(rows, m.clock.Now())
	for _, l := range idx.conflicting(lock.SlotKey, lock.SlotStart, lock.SlotEnd) {
		if l.ID == lock.ID || l.Holder != lock.Holder || l.SlotKey == lock.SlotKey {
			return l, nil
		}
	}
	return nil, nil
}

func (m *lockManager) extend(ctx context.Context, lock *model.SlotLock, now time.Time, ttl time.Duration) (*model.SlotLock, error) {
	expires := now.Add(ttl)
	if !expires.After(lock.ExpiresAt) {
		return lock, nil
	}
	if err := m.repo.Extend(ctx, lock.ID, expires); err != nil {
		m.log.Warn("Failed to extend slot lock", "lock_id", lock.ID, "error", err)
		return lock, nil
	}
	extended := *lock
	extended.ExpiresAt = expires
	return &extended, nil
}

func (m *lockManager) discard(ctx context.Context, lock *model.SlotLock) {
	if _, err := m.repo.Delete(ctx, lock.ID); err != nil {
		m.log.Warn("Failed to remove losing slot lock, it will lapse", "lock_id", lock.ID, "error", err)
	}
}

func (m *lockManager) purge(ctx context.Context, expired []*model.SlotLock) {
	for _, l := range expired {
		if _, err := m.repo.Delete(ctx, l.ID); err != nil {
			m.log.Warn("Failed to purge expired slot lock", "lock_id", l.ID, "error", err)
		}
	}
}

func (m *lockManager) Release(ctx context.Context, lockID, holder string) error {
	if lockID == "" {
		return nil
	}
	lock, err := m.repo.FindByID(ctx, lockID)
	if err != nil {
		m.log.Error("Failed to read slot lock", "lock_id", lockID, "error", err)
		return apperrors.Unavailable("Lock store").WithCause(err)
	}
	if lock == nil {
		return nil
	}
	if lock.Holder != holder {
		if lock.IsLive(m.clock.Now()) {
			return apperrors.Conflict("Lock is held by another holder").
				WithDetails(map[string]any{"lock_id": lockID}).
				WithCause(lockserrors.ErrNotOwner)
		}
		return nil
	}
	if _, err := m.repo.Delete(ctx, lockID); err != nil {
		m.log.Error("Failed to release slot lock", "lock_id", lockID, "error", err)
		return apperrors.Unavailable("Lock store").WithCause(err)
	}
	m.log.Debug("Slot lock released", "lock_id", lockID, "holder", holder)
	return nil
}

func (m *lockManager) SweepExpired(ctx context.Context) (int, error) {
	locks, err := m.repo.FindAll(ctx)
	if err != nil {
		return 0, apperrors.Unavailable("Lock store").WithCause(err)
	}
	idx := buildIndex(locks, m.clock.Now())
	removed := 0
	for _, l := range idx.expired {
		ok, err := m.repo.Delete(ctx, l.ID)
		if err != nil {
			m.log.Warn("Failed to sweep slot lock", "lock_id", l.ID, "error", err)
			continue
		}
		if ok {
			removed++
		}
	}
	m.log.Info("Expired slot locks swept", "removed", removed, "live", len(idx.live))
	return removed, nil
}

func (m *lockManager) LiveLocks(ctx context.Context, trainerID string) ([]*model.SlotLock, error) {
	locks, err := m.repo.FindByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return buildIndex(locks, m.clock.Now()).live, nil
}

func heldError(l *model.SlotLock) *apperrors.AppError {
	return apperrors.Conflict(fmt.Sprintf("Slot %s is being booked by another customer", l.SlotStart.Format(time.RFC3339))).
		WithDetails(map[string]any{"slot_key": l.SlotKey, "expires_at": l.ExpiresAt}).
		WithCause(lockserrors.ErrHeld)
}
