package service

import (
	"k9harmony/pkg/clock"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/model"

	"github.com/google/uuid"
)

const (
	StateInit      = "INIT"
	StateLocked    = "LOCKED"
	StatePaid      = "PAID"
	StatePersisted = "PERSISTED"
	StateDone      = "DONE"
	StateAborted   = "ABORTED"
	StateReplayed  = "REPLAYED"
)

const operationBookAndPay = "BOOK_AND_PAY"

// saga accumulates the steps of one BookAndPay attempt into its transaction_log row.
type saga struct {
	clock clock.Clock
	tx    model.TransactionLog
}

func newSaga(clk clock.Clock, token, customerID string) *saga {
	now := clk.Now()
	return &saga{
		clock: clk,
		tx: model.TransactionLog{
			ID:               uuid.New().String(),
			Operation:        operationBookAndPay,
			IdempotencyToken: token,
			CustomerID:       customerID,
			FinalState:       StateInit,
			Steps:            []model.SagaStep{{State: StateInit, At: now}},
			StartedAt:        now,
		},
	}
}

func (s *saga) ID() string {
	return s.tx.ID
}

func (s *saga) State() string {
	return s.tx.FinalState
}

func (s *saga) advance(state string) {
	s.tx.FinalState = state
	s.tx.Steps = append(s.tx.Steps, model.SagaStep{State: state, At: s.clock.Now()})
}

// abort records the failure and returns err unchanged so callers can return through it.
func (s *saga) abort(err error, rollback model.RollbackStatus) error {
	code := apperrors.AsAppError(err).Code
	s.tx.Status = model.TransactionFailed
	s.tx.FailureCode = code
	s.tx.RollbackStatus = rollback
	s.tx.FinalState = StateAborted + "(" + code + ")"
	s.tx.Steps = append(s.tx.Steps, model.SagaStep{State: StateAborted, At: s.clock.Now(), Error: err.Error()})
	return err
}

func (s *saga) commit() {
	s.tx.Status = model.TransactionCommitted
	s.advance(StateDone)
}

func (s *saga) replay() {
	s.tx.Status = model.TransactionCommitted
	s.advance(StateReplayed)
}

func (s *saga) finish() *model.TransactionLog {
	s.tx.EndedAt = s.clock.Now()
	s.tx.DurationMs = s.tx.EndedAt.Sub(s.tx.StartedAt).Milliseconds()
	if s.tx.Status == "" {
		s.tx.Status = model.TransactionFailed
	}
	return &s.tx
}

