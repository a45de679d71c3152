package model

import "time"

type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
)

type ActorType string

const (
	ActorCustomer ActorType = "CUSTOMER"
	ActorTrainer  ActorType = "TRAINER"
	ActorSystem   ActorType = "SYSTEM"
)

const (
	EntityReservation = "reservation"
	EntitySlotLock    = "slot_lock"
	EntityCustomer    = "customer"
	EntityAnimal      = "animal"
)

// AuditEntry is append-only.
type AuditEntry struct {
	ID            string         `json:"log_id"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	Action        AuditAction    `json:"action"`
	ActorType     ActorType      `json:"actor_type"`
	ActorID       string         `json:"actor_id"`
	OldValues     map[string]any `json:"old_values,omitempty"`
	NewValues     map[string]any `json:"new_values,omitempty"`
	ChangedFields []string       `json:"changed_fields"`
	GDPRRelevant  bool           `json:"is_gdpr_relevant"`
	CreatedAt     time.Time      `json:"created_at"`
}
