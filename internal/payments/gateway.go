// Package payments talks to the card payment gateway.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type ChargeStatus string

const (
	ChargeApproved  ChargeStatus = "APPROVED"
	ChargeCompleted ChargeStatus = "COMPLETED"
	ChargeCanceled  ChargeStatus = "CANCELED"
	ChargeFailed    ChargeStatus = "FAILED"
)

var (
	// ErrDeclined means the gateway refused the card. Nothing was charged.
	ErrDeclined = errors.New("payment declined")

	ErrChargeNotFound = errors.New("charge not found")

	ErrRefundRejected = errors.New("refund rejected")
)

type ChargeRequest struct {
	SourceToken    string
	Amount         int64
	Currency       string
	CustomerRef    string
	IdempotencyKey string
	Note           string
}

type Charge struct {
	ID             string       `json:"id"`
	Status         ChargeStatus `json:"status"`
	Amount         int64        `json:"amount"`
	Currency       string       `json:"currency"`
	IdempotencyKey string       `json:"idempotency_key"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Captured reports whether money actually moved.
func (c *Charge) Captured() bool {
	return c != nil && (c.Status == ChargeCompleted || c.Status == ChargeApproved)
}

type RefundRequest struct {
	ChargeID       string
	Amount         int64
	Currency       string
	IdempotencyKey string
	Reason         string
}

type Refund struct {
	ID       string `json:"id"`
	ChargeID string `json:"payment_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
}

// Gateway is the payment provider boundary. Charge and Refund are idempotent on IdempotencyKey.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
	Refund(ctx context.Context, req RefundRequest) (*Refund, error)
	// FindCharge looks up a charge by the idempotency key it was created with.
	FindCharge(ctx context.Context, idempotencyKey string) (*Charge, error)
}

// DeclineError carries the gateway's reason for refusing a card.
type DeclineError struct {
	Code   string
	Detail string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("payment declined: %s %s", e.Code, e.Detail)
}

func (e *DeclineError) Unwrap() error {
	return ErrDeclined
}
