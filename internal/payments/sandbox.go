package payments

import (
	"context"
	"fmt"
	"sync"

	"k9harmony/pkg/clock"

	"github.com/google/uuid"
)

// Sandbox is an in-process gateway for local runs and tests. Failure modes are switched on explicitly.
type Sandbox struct {
	clock clock.Clock

	mu           sync.Mutex
	charges      map[string]*Charge
	refunds      map[string]*Refund
	refundOrder  []*Refund
	decline      bool
	chargeErr    error
	loseResponse error
	refundErr    error
	lookupErr    error
}

func NewSandbox(clk clock.Clock) *Sandbox {
	return &Sandbox{
		clock:   clk,
		charges: make(map[string]*Charge),
		refunds: make(map[string]*Refund),
	}
}

// SetDecline makes every new charge fail as a card decline.
func (s *Sandbox) SetDecline(decline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decline = decline
}

// SetChargeError fails charges before any money moves.
func (s *Sandbox) SetChargeError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chargeErr = err
}

// SetLostResponse captures the charge but reports err to the caller, as when a response times out.
func (s *Sandbox) SetLostResponse(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loseResponse = err
}

func (s *Sandbox) SetRefundError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refundErr = err
}

func (s *Sandbox) SetLookupError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupErr = err
}

func (s *Sandbox) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.charges[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		c := *existing
		return &c, nil
	}
	if s.chargeErr != nil {
		return nil, s.chargeErr
	}
	if s.decline {
		return nil, &DeclineError{Code: "CARD_DECLINED", Detail: "sandbox decline"}
	}

	charge := &Charge{
		ID:             "pay_" + uuid.New().String(),
		Status:         ChargeCompleted,
		Amount:         req.Amount,
		Currency:       req.Currency,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      s.clock.Now(),
	}
	s.charges[req.IdempotencyKey] = charge
	if s.loseResponse != nil {
		return nil, s.loseResponse
	}
	c := *charge
	return &c, nil
}

func (s *Sandbox) Refund(ctx context.Context, req RefundRequest) (*Refund, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.refunds[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		r := *existing
		return &r, nil
	}
	if s.refundErr != nil {
		return nil, s.refundErr
	}

	var charge *Charge
	for _, c := range s.charges {
		if c.ID == req.ChargeID {
			charge = c
			break
		}
	}
	if charge == nil {
		return nil, fmt.Errorf("%w: unknown payment %s", ErrRefundRejected, req.ChargeID)
	}

	refund := &Refund{
		ID:       "ref_" + uuid.New().String(),
		ChargeID: charge.ID,
		Status:   "COMPLETED",
		Amount:   req.Amount,
	}
	s.refunds[req.IdempotencyKey] = refund
	s.refundOrder = append(s.refundOrder, refund)
	r := *refund
	return &r, nil
}

func (s *Sandbox) FindCharge(ctx context.Context, idempotencyKey string) (*Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	c, ok := s.charges[idempotencyKey]
	if !ok {
		return nil, ErrChargeNotFound
	}
	out := *c
	return &out, nil
}

// ChargeCount is the number of distinct captured charges.
func (s *Sandbox) ChargeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.charges)
}

func (s *Sandbox) Refunds() []Refund {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Refund, 0, len(s.refundOrder))
	for _, r := range s.refundOrder {
		out = append(out, *r)
	}
	return out
}
