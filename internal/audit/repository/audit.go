package repository

import (
	"context"

	"k9harmony/internal/store"
	"k9harmony/pkg/model"
)

// AuditRepository appends audit_logs rows. Entries are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	FindByEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditEntry, error)
}

type storeAuditRepository struct {
	store store.Store
}

func NewAuditRepository(s store.Store) AuditRepository {
	return &storeAuditRepository{store: s}
}

func (r *storeAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	return r.store.Insert(ctx, store.TableAuditLogs, store.Row{
		"log_id":           entry.ID,
		"entity_type":      entry.EntityType,
		"entity_id":        entry.EntityID,
		"action":           string(entry.Action),
		"actor_type":       string(entry.ActorType),
		"actor_id":         entry.ActorID,
		"old_values":       encodeValues(entry.OldValues),
		"new_values":       encodeValues(entry.NewValues),
		"changed_fields":   store.EncodeJSON(entry.ChangedFields),
		"is_gdpr_relevant": entry.GDPRRelevant,
		"created_at":       entry.CreatedAt,
	})
}

// FindByEntity returns entries in append order.
func (r *storeAuditRepository) FindByEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditEntry, error) {
	rows, err := r.store.FindAll(ctx, store.TableAuditLogs, "entity_id", entityID)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		if row.Str("entity_type") != entityType {
			continue
		}
		entries = append(entries, fromRow(row))
	}
	return entries, nil
}

func encodeValues(values map[string]any) string {
	if values == nil {
		return ""
	}
	return store.EncodeJSON(values)
}

func fromRow(row store.Row) *model.AuditEntry {
	entry := &model.AuditEntry{
		ID:           row.Str("log_id"),
		EntityType:   row.Str("entity_type"),
		EntityID:     row.Str("entity_id"),
		Action:       model.AuditAction(row.Str("action")),
		ActorType:    model.ActorType(row.Str("actor_type")),
		ActorID:      row.Str("actor_id"),
		GDPRRelevant: row.Bool("is_gdpr_relevant"),
		CreatedAt:    row.Time("created_at"),
	}
	// Malformed JSON cells are read as empty; the row itself stays visible.
	_ = row.JSON("old_values", &entry.OldValues)
	_ = row.JSON("new_values", &entry.NewValues)
	_ = row.JSON("changed_fields", &entry.ChangedFields)
	if entry.ChangedFields == nil {
		entry.ChangedFields = []string{}
	}
	return entry
}
