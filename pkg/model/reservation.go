package model

import "time"

type ReservationStatus string

const (
	StatusPendingPayment ReservationStatus = "pending_payment"
	StatusConfirmed      ReservationStatus = "confirmed"
	StatusCancelled      ReservationStatus = "cancelled"
	StatusExpired        ReservationStatus = "expired"
)

type PaymentStatus string

const (
	PaymentUnpaid       PaymentStatus = "unpaid"
	PaymentCaptured     PaymentStatus = "captured"
	PaymentRefunded     PaymentStatus = "refunded"
	PaymentRefundFailed PaymentStatus = "refund_failed"
)

type Reservation struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	CustomerID       string            `json:"customer_id"`
	AnimalID         string            `json:"animal_id"`
	TrainerID        string            `json:"trainer_id"`
	TrainerCode      string            `json:"trainer_code"`
	StartTime        time.Time         `json:"start_time"`
	EndTime          time.Time         `json:"end_time"`
	Status           ReservationStatus `json:"status"`
	PaymentStatus    PaymentStatus     `json:"payment_status"`
	PaymentReference string            `json:"payment_reference,omitempty"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	MultiAnimal      bool              `json:"multi_animal"`
	ReceiptRequested bool              `json:"receipt_requested"`
	Memo             string            `json:"memo,omitempty"`
	IdempotencyToken string            `json:"-"`
	LockID           string            `json:"-"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// BlocksSlots reports whether the reservation still occupies the trainer's time.
func (r *Reservation) BlocksSlots() bool {
	return r.Status == StatusPendingPayment || r.Status == StatusConfirmed
}

// Overlaps uses half-open intervals, so back-to-back reservations do not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return start.Before(r.EndTime) && r.StartTime.Before(end)
}

// AuditView is the flat representation written to audit before/after values.
func (r *Reservation) AuditView() map[string]any {
	return map[string]any{
		"reservation_id":    r.ID,
		"reservation_code":  r.Code,
		"customer_id":       r.CustomerID,
		"animal_id":         r.AnimalID,
		"trainer_id":        r.TrainerID,
		"start_time":        r.StartTime.UTC().Format(time.RFC3339),
		"end_time":          r.EndTime.UTC().Format(time.RFC3339),
		"status":            string(r.Status),
		"payment_status":    string(r.PaymentStatus),
		"payment_reference": r.PaymentReference,
		"amount":            r.Amount,
		"currency":          r.Currency,
		"multi_animal":      r.MultiAnimal,
		"receipt_requested": r.ReceiptRequested,
		"memo":              r.Memo,
	}
}

// ReservationDraft is the client-submitted part of a checkout.
type ReservationDraft struct {
	CustomerID       string    `json:"customer_id" validate:"required,max=64"`
	AnimalID         string    `json:"animal_id" validate:"required,max=64"`
	TrainerCode      string    `json:"trainer_code" validate:"required,max=32"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	MultiAnimal      bool      `json:"multi_animal"`
	ReceiptRequested bool      `json:"receipt_requested"`
	Memo             string    `json:"memo,omitempty" validate:"max=1000"`
}

type PaymentDraft struct {
	SourceToken string `json:"source_token" validate:"required,max=256"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Currency    string `json:"currency,omitempty" validate:"omitempty,iso4217"`
	CustomerRef string `json:"customer_ref,omitempty" validate:"omitempty,max=64"`
}

type CancelRequest struct {
	ActorType string `json:"actor_type" validate:"required,oneof=CUSTOMER TRAINER SYSTEM"`
	ActorID   string `json:"actor_id" validate:"required,max=64"`
	Reason    string `json:"reason,omitempty" validate:"max=500"`
}
