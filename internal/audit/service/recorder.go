package service

import (
	"context"
	"encoding/json"
	"sort"

	"k9harmony/internal/audit/repository"
	"k9harmony/pkg/clock"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/google/uuid"
)

// gdprEntities hold personal data of customers and their animals.
var gdprEntities = map[string]bool{
	model.EntityCustomer: true,
	model.EntityAnimal:   true,
}

type Recorder interface {
	// Record appends an entry. It never fails the caller; write errors are logged.
	Record(ctx context.Context, entityType, entityID string, action model.AuditAction, actorType model.ActorType, actorID string, before, after map[string]any)
	// GetLogsByEntity returns the entity's history newest first.
	GetLogsByEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditEntry, error)
}

type recorder struct {
	repo  repository.AuditRepository
	clock clock.Clock
	log   *logger.Logger
}

func NewRecorder(repo repository.AuditRepository, clk clock.Clock, log *logger.Logger) Recorder {
	return &recorder{
		repo:  repo,
		clock: clk,
		log:   log,
	}
}

func (r *recorder) Record(ctx context.Context, entityType, entityID string, action model.AuditAction, actorType model.ActorType, actorID string, before, after map[string]any) {
	entry := &model.AuditEntry{
		ID:            uuid.New().String(),
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        action,
		ActorType:     actorType,
		ActorID:       actorID,
		OldValues:     before,
		NewValues:     after,
		ChangedFields: ChangedFields(before, after),
		GDPRRelevant:  gdprEntities[entityType],
		CreatedAt:     r.clock.Now(),
	}

	// The audited change already happened; a cancelled request must not lose its entry.
	if err := r.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.log.Error("Failed to record audit entry",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}

func (r *recorder) GetLogsByEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditEntry, error) {
	if entityType == "" || entityID == "" {
		return nil, apperrors.InvalidInput("entity_type and entity_id are required")
	}

	entries, err := r.repo.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		r.log.Error("Failed to read audit log", "entity_type", entityType, "entity_id", entityID, "error", err)
		return nil, apperrors.Unavailable("Audit store").WithCause(err)
	}

	// Append order breaks ties between entries written in the same instant.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// ChangedFields lists, sorted, the keys of after whose value is new or differs from before.
func ChangedFields(before, after map[string]any) []string {
	changed := []string{}
	for key, value := range after {
		old, ok := before[key]
		if !ok || !sameValue(old, value) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

// sameValue compares by JSON form so values read back from the store (float64 numbers) match live ones.
func sameValue(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}
