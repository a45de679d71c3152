package model

import "time"

type TransactionStatus string

const (
	TransactionCommitted TransactionStatus = "COMMITTED"
	TransactionFailed    TransactionStatus = "FAILED"
)

type RollbackStatus string

const (
	RollbackNone    RollbackStatus = ""
	RollbackDone    RollbackStatus = "ROLLED_BACK"
	RollbackPartial RollbackStatus = "PARTIAL_ROLLBACK"
)

type SagaStep struct {
	State string    `json:"state"`
	At    time.Time `json:"at"`
	Error string    `json:"error,omitempty"`
}

// TransactionLog records one booking attempt end to end.
type TransactionLog struct {
	ID               string            `json:"transaction_id"`
	Operation        string            `json:"operation"`
	IdempotencyToken string            `json:"idempotency_token"`
	CustomerID       string            `json:"customer_id"`
	Status           TransactionStatus `json:"status"`
	FinalState       string            `json:"final_state"`
	FailureCode      string            `json:"failure_code,omitempty"`
	RollbackStatus   RollbackStatus    `json:"rollback_status,omitempty"`
	Steps            []SagaStep        `json:"steps"`
	StartedAt        time.Time         `json:"started_at"`
	EndedAt          time.Time         `json:"ended_at"`
	DurationMs       int64             `json:"duration_ms"`
}

// ReconciliationRecord describes a charge that could neither be booked nor refunded.
type ReconciliationRecord struct {
	TransactionID    string    `json:"transaction_id"`
	IdempotencyToken string    `json:"idempotency_token"`
	CustomerID       string    `json:"customer_id"`
	TrainerID        string    `json:"trainer_id"`
	SlotStart        time.Time `json:"slot_start"`
	ChargeReference  string    `json:"charge_reference"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	PersistError     string    `json:"persist_error"`
	RefundError      string    `json:"refund_error"`
	RecordedAt       time.Time `json:"recorded_at"`
}
