package repository

import (
	"context"

	"k9harmony/internal/store"
	"k9harmony/pkg/model"
)

type TransactionLogRepository interface {
	Append(ctx context.Context, tx *model.TransactionLog) error
	FindByToken(ctx context.Context, token string) ([]*model.TransactionLog, error)
}

type storeTransactionLogRepository struct {
	store store.Store
}

func NewTransactionLogRepository(s store.Store) TransactionLogRepository {
	return &storeTransactionLogRepository{store: s}
}

func (r *storeTransactionLogRepository) Append(ctx context.Context, tx *model.TransactionLog) error {
	return r.store.Insert(ctx, store.TableTransactionLog, store.Row{
		"transaction_id":    tx.ID,
		"operation":         tx.Operation,
		"idempotency_token": tx.IdempotencyToken,
		"customer_id":       tx.CustomerID,
		"status":            string(tx.Status),
		"final_state":       tx.FinalState,
		"failure_code":      tx.FailureCode,
		"rollback_status":   string(tx.RollbackStatus),
		"steps":             store.EncodeJSON(tx.Steps),
		"started_at":        tx.StartedAt,
		"ended_at":          tx.EndedAt,
		"duration_ms":       tx.DurationMs,
	})
}

func (r *storeTransactionLogRepository) FindByToken(ctx context.Context, token string) ([]*model.TransactionLog, error) {
	rows, err := r.store.FindAll(ctx, store.TableTransactionLog, "idempotency_token", token)
	if err != nil {
		return nil, err
	}
	out := make([]*model.TransactionLog, 0, len(rows))
	for _, row := range rows {
		tx := &model.TransactionLog{
			ID:               row.Str("transaction_id"),
			Operation:        row.Str("operation"),
			IdempotencyToken: row.Str("idempotency_token"),
			CustomerID:       row.Str("customer_id"),
			Status:           model.TransactionStatus(row.Str("status")),
			FinalState:       row.Str("final_state"),
			FailureCode:      row.Str("failure_code"),
			RollbackStatus:   model.RollbackStatus(row.Str("rollback_status")),
			StartedAt:        row.Time("started_at"),
			EndedAt:          row.Time("ended_at"),
			DurationMs:       row.Int("duration_ms"),
		}
		_ = row.JSON("steps", &tx.Steps)
		out = append(out, tx)
	}
	return out, nil
}
