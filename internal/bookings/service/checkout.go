package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingserrors "k9harmony/internal/bookings/errors"
	"k9harmony/internal/payments"
	"k9harmony/internal/store"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/model"
	"k9harmony/pkg/sanitizer"

	"github.com/google/uuid"
)

// checkout carries one BookAndPay attempt through its states.
type checkout struct {
	draft   *model.ReservationDraft
	payment *model.PaymentDraft
	token   string
	trainer *model.TrainerConfig
	lock    *model.SlotLock
	charge  *payments.Charge
	saga    *saga
}

func (s *bookingService) BookAndPay(ctx context.Context, draft *model.ReservationDraft, payment *model.PaymentDraft, idempotencyToken string) (*model.Reservation, error) {
	if draft == nil || payment == nil {
		return nil, apperrors.InvalidInput("Reservation and payment are required")
	}
	s.sanitize(draft, payment)
	idempotencyToken = strings.TrimSpace(idempotencyToken)

	c := &checkout{
		draft:   draft,
		payment: payment,
		token:   idempotencyToken,
		saga:    newSaga(s.clock, idempotencyToken, draft.CustomerID),
	}
	defer s.writeTransactionLog(ctx, c.saga)

	r, err := s.run(ctx, c)
	if err != nil {
		s.cfg.Log.Warn("Booking attempt failed",
			"transaction_id", c.saga.ID(),
			"customer_id", draft.CustomerID,
			"trainer_code", draft.TrainerCode,
			"start_time", draft.StartTime,
			"state", c.saga.State(),
			"error", err,
		)
		return nil, err
	}
	return r, nil
}

func (s *bookingService) run(ctx context.Context, c *checkout) (*model.Reservation, error) {
	if c.token == "" {
		return nil, c.saga.abort(apperrors.Validation("Idempotency token is required", map[string]any{"field": "idempotency_token"}), model.RollbackNone)
	}
	if err := s.validator.ValidateCheckout(c.draft, c.payment); err != nil {
		return nil, c.saga.abort(apperrors.Validation("Invalid booking request", map[string]any{"errors": err}), model.RollbackNone)
	}

	existing, err := s.findByToken(ctx, c)
	if err != nil {
		return nil, c.saga.abort(err, model.RollbackNone)
	}
	if existing != nil {
		c.saga.replay()
		s.cfg.Log.Info("Idempotent booking replay", "id", existing.ID, "customer_id", existing.CustomerID)
		return existing, nil
	}

	trainer, err := s.trainers.GetBookable(ctx, c.draft.TrainerCode)
	if err != nil {
		return nil, c.saga.abort(err, model.RollbackNone)
	}
	c.trainer = trainer

	if err := s.lockSlot(ctx, c); err != nil {
		return nil, c.saga.abort(err, model.RollbackNone)
	}
	defer s.releaseSlot(ctx, c)

	if err := s.chargeCustomer(ctx, c); err != nil {
		return nil, err
	}

	r, err := s.persist(ctx, c)
	if err != nil {
		return nil, err
	}

	s.releaseSlot(ctx, c)
	s.audit.Record(ctx, model.EntityReservation, r.ID, model.ActionCreate, model.ActorCustomer, r.CustomerID, nil, r.AuditView())
	if err := s.events.ReservationConfirmed(ctx, r); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation confirmed event", "id", r.ID, "error", err)
	}
	c.saga.commit()

	s.cfg.Log.Info("Reservation confirmed",
		"id", r.ID,
		"code", r.Code,
		"trainer_code", r.TrainerCode,
		"start_time", r.StartTime,
		"payment_reference", r.PaymentReference,
	)
	return r, nil
}

// findByToken returns the reservation already stored under the token, or nil.
func (s *bookingService) findByToken(ctx context.Context, c *checkout) (*model.Reservation, error) {
	existing, err := s.repo.FindByToken(ctx, c.token)
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.cfg.Log.Error("Failed to look up idempotency token", "error", err)
		return nil, unavailable(err)
	}
	if existing.CustomerID != c.draft.CustomerID {
		return nil, apperrors.Conflict("Idempotency token was already used for another booking").WithCause(bookingserrors.ErrTokenReused)
	}
	return existing, nil
}

// lockSlot is INIT to LOCKED. Any failure after the lock is taken releases it.
func (s *bookingService) lockSlot(ctx context.Context, c *checkout) error {
	start := c.draft.StartTime.UTC()
	duration := c.trainer.LessonDuration(c.draft.MultiAnimal)

	lock, err := s.locks.Acquire(ctx, c.trainer.ID, start, start.Add(duration), c.draft.CustomerID, s.cfg.LockTTL)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			return apperrors.SlotTaken("This time slot is being booked by someone else").WithCause(err)
		}
		return err
	}
	c.lock = lock
	c.saga.advance(StateLocked)

	ok, err := s.availability.IsBookable(ctx, c.trainer, start, duration, c.draft.CustomerID)
	if err != nil {
		s.releaseSlot(ctx, c)
		return err
	}
	if !ok {
		s.releaseSlot(ctx, c)
		return apperrors.SlotTaken("This time slot is no longer available").WithDetails(map[string]any{
			"trainer_code": c.trainer.Code,
			"start_time":   start,
		})
	}
	return nil
}

func (s *bookingService) releaseSlot(ctx context.Context, c *checkout) {
	if c.lock == nil {
		return
	}
	lock := c.lock
	c.lock = nil
	if err := s.locks.Release(context.WithoutCancel(ctx), lock.ID, lock.Holder); err != nil {
		s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lock.ID, "slot_key", lock.SlotKey, "error", err)
	}
}

// chargeCustomer is LOCKED to PAID.
func (s *bookingService) chargeCustomer(ctx context.Context, c *checkout) error {
	chargeCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	charge, err := s.gateway.Charge(chargeCtx, payments.ChargeRequest{
		SourceToken:    c.payment.SourceToken,
		Amount:         c.payment.Amount,
		Currency:       c.payment.Currency,
		CustomerRef:    c.payment.CustomerRef,
		IdempotencyKey: c.token,
		Note:           fmt.Sprintf("%s %s", c.trainer.Code, c.draft.StartTime.UTC().Format("2006-01-02T15:04Z")),
	})
	if err != nil {
		if errors.Is(err, payments.ErrDeclined) {
			return c.saga.abort(apperrors.PaymentFailed("Payment was declined", err), model.RollbackNone)
		}
		return s.resolveUnknownCharge(ctx, c, err)
	}
	if !charge.Captured() {
		return c.saga.abort(apperrors.PaymentFailed("Payment was not completed", fmt.Errorf("charge %s status %s", charge.ID, charge.Status)), model.RollbackNone)
	}

	c.charge = charge
	c.saga.advance(StatePaid)
	return nil
}

// resolveUnknownCharge handles a charge call whose outcome is unknown. If the gateway
// shows the charge went through, it is refunded before reporting the payment as failed.
func (s *bookingService) resolveUnknownCharge(ctx context.Context, c *checkout, chargeErr error) error {
	ctx = context.WithoutCancel(ctx)
	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	found, err := s.gateway.FindCharge(lookupCtx, c.token)
	switch {
	case errors.Is(err, payments.ErrChargeNotFound):
		return c.saga.abort(apperrors.PaymentFailed("Payment could not be completed", chargeErr), model.RollbackNone)
	case err != nil:
		s.cfg.Log.Error("Charge outcome unknown after gateway error",
			"transaction_id", c.saga.ID(),
			"charge_error", chargeErr,
			"lookup_error", err,
		)
		s.recordReconciliation(ctx, c, "", chargeErr, fmt.Errorf("charge lookup failed: %w", err))
		return c.saga.abort(apperrors.PaymentFailed("Payment could not be completed", chargeErr), model.RollbackNone)
	case !found.Captured():
		return c.saga.abort(apperrors.PaymentFailed("Payment could not be completed", chargeErr), model.RollbackNone)
	}

	c.charge = found
	c.saga.advance(StatePaid)
	if refundErr := s.refundOnce(ctx, c, "charge response lost"); refundErr != nil {
		s.recordReconciliation(ctx, c, found.ID, chargeErr, refundErr)
		return c.saga.abort(apperrors.CompensationFailed("Payment was taken but could not be refunded", refundErr).WithDetails(map[string]any{
			"transaction_id":    c.saga.ID(),
			"payment_reference": found.ID,
		}), model.RollbackPartial)
	}
	return c.saga.abort(apperrors.PaymentFailed("Payment could not be completed and was refunded", chargeErr), model.RollbackDone)
}

// persist is PAID to PERSISTED. A failed insert is compensated by exactly one refund.
func (s *bookingService) persist(ctx context.Context, c *checkout) (*model.Reservation, error) {
	// Money has moved; the write must not be abandoned with the request.
	ctx = context.WithoutCancel(ctx)

	now := s.clock.Now()
	start := c.draft.StartTime.UTC()
	r := &model.Reservation{
		ID:               uuid.New().String(),
		Code:             reservationCode(start, c.trainer.Location()),
		CustomerID:       c.draft.CustomerID,
		AnimalID:         c.draft.AnimalID,
		TrainerID:        c.trainer.ID,
		TrainerCode:      c.trainer.Code,
		StartTime:        start,
		EndTime:          start.Add(c.trainer.LessonDuration(c.draft.MultiAnimal)),
		Status:           model.StatusConfirmed,
		PaymentStatus:    model.PaymentCaptured,
		PaymentReference: c.charge.ID,
		Amount:           c.payment.Amount,
		Currency:         c.payment.Currency,
		MultiAnimal:      c.draft.MultiAnimal,
		ReceiptRequested: c.draft.ReceiptRequested,
		Memo:             c.draft.Memo,
		IdempotencyToken: c.token,
		LockID:           c.lock.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	insertErr := s.repo.Insert(ctx, r)
	if insertErr == nil {
		c.saga.advance(StatePersisted)
		return r, nil
	}

	// A concurrent attempt with the same token stored first. The charge is shared, so keep theirs.
	if errors.Is(insertErr, store.ErrDuplicate) {
		if winner, err := s.repo.FindByToken(ctx, c.token); err == nil {
			if winner.CustomerID != c.draft.CustomerID {
				// the gateway deduplicated on the token, so the charge belongs to the winner and is not refunded
				s.cfg.Log.Warn("Idempotency token stored by another customer",
					"transaction_id", c.saga.ID(),
					"reservation_id", winner.ID,
				)
				return nil, c.saga.abort(apperrors.Conflict("Idempotency token was already used for another booking").
					WithCause(bookingserrors.ErrTokenReused), model.RollbackNone)
			}
			c.saga.advance(StatePersisted)
			return winner, nil
		}
	}

	s.cfg.Log.Error("Failed to store reservation after charge",
		"transaction_id", c.saga.ID(),
		"payment_reference", c.charge.ID,
		"error", insertErr,
	)

	if refundErr := s.refundOnce(ctx, c, "reservation could not be stored"); refundErr != nil {
		s.recordReconciliation(ctx, c, c.charge.ID, insertErr, refundErr)
		return nil, c.saga.abort(apperrors.CompensationFailed("Reservation was not stored and the payment could not be refunded", refundErr).WithDetails(map[string]any{
			"transaction_id":    c.saga.ID(),
			"payment_reference": c.charge.ID,
		}), model.RollbackPartial)
	}
	return nil, c.saga.abort(apperrors.PersistenceFailed("Reservation could not be stored; the payment was refunded", insertErr), model.RollbackDone)
}

// refundOnce issues a single refund keyed on the booking token, so a replay cannot refund twice.
func (s *bookingService) refundOnce(ctx context.Context, c *checkout, reason string) error {
	refundCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	refund, err := s.gateway.Refund(refundCtx, payments.RefundRequest{
		ChargeID:       c.charge.ID,
		Amount:         c.charge.Amount,
		Currency:       c.charge.Currency,
		IdempotencyKey: "refund-" + c.token,
		Reason:         reason,
	})
	if err != nil {
		s.cfg.Log.Error("Refund failed", "transaction_id", c.saga.ID(), "payment_reference", c.charge.ID, "error", err)
		return err
	}
	s.cfg.Log.Info("Payment refunded", "transaction_id", c.saga.ID(), "payment_reference", c.charge.ID, "refund_id", refund.ID)
	return nil
}

func (s *bookingService) recordReconciliation(ctx context.Context, c *checkout, chargeRef string, cause, refundErr error) {
	rec := &model.ReconciliationRecord{
		TransactionID:    c.saga.ID(),
		IdempotencyToken: c.token,
		CustomerID:       c.draft.CustomerID,
		TrainerID:        c.trainer.ID,
		SlotStart:        c.draft.StartTime.UTC(),
		ChargeReference:  chargeRef,
		Amount:           c.payment.Amount,
		Currency:         c.payment.Currency,
		PersistError:     cause.Error(),
		RefundError:      refundErr.Error(),
		RecordedAt:       s.clock.Now(),
	}

	if s.journal != nil {
		if err := s.journal.Append(ctx, rec); err != nil {
			s.cfg.Log.Error("Failed to write reconciliation journal", "transaction_id", rec.TransactionID, "error", err)
		}
	}
	if err := s.events.CompensationFailed(ctx, rec); err != nil {
		s.cfg.Log.Error("Failed to publish reconciliation alert", "transaction_id", rec.TransactionID, "error", err)
	}
	s.cfg.Log.Error("Charge requires manual reconciliation",
		"transaction_id", rec.TransactionID,
		"customer_id", rec.CustomerID,
		"charge_reference", rec.ChargeReference,
		"amount", rec.Amount,
		"currency", rec.Currency,
	)
}

func (s *bookingService) writeTransactionLog(ctx context.Context, sg *saga) {
	if s.txlog == nil {
		return
	}
	tx := sg.finish()
	if err := s.txlog.Append(context.WithoutCancel(ctx), tx); err != nil {
		s.cfg.Log.Warn("Failed to write transaction log", "transaction_id", tx.ID, "error", err)
	}
}

func (s *bookingService) sanitize(draft *model.ReservationDraft, payment *model.PaymentDraft) {
	draft.CustomerID = sanitizer.SanitizeIdentifier(draft.CustomerID)
	draft.AnimalID = sanitizer.SanitizeIdentifier(draft.AnimalID)
	draft.TrainerCode = sanitizer.NormalizeCode(draft.TrainerCode)
	draft.Memo = sanitizer.SanitizeMemo(draft.Memo)
	payment.Currency = strings.ToUpper(strings.TrimSpace(payment.Currency))
	if payment.Currency == "" {
		payment.Currency = s.cfg.DefaultCurrency
	}
	payment.CustomerRef = strings.TrimSpace(payment.CustomerRef)
	if payment.CustomerRef == "" {
		payment.CustomerRef = draft.CustomerID
	}
}
