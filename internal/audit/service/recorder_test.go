package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"k9harmony/internal/audit/repository"
	"k9harmony/internal/store"
	"k9harmony/internal/store/storetest"
	"k9harmony/pkg/clock"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangedFields(t *testing.T) {
	tests := []struct {
		name   string
		before map[string]any
		after  map[string]any
		want   []string
	}{
		{
			name:  "create lists every key",
			after: map[string]any{"status": "confirmed", "amount": 8000, "currency": "JPY"},
			want:  []string{"amount", "currency", "status"},
		},
		{
			name:   "update lists differing keys",
			before: map[string]any{"status": "confirmed", "amount": 8000},
			after:  map[string]any{"status": "cancelled", "amount": 8000},
			want:   []string{"status"},
		},
		{
			name:   "new key counts as changed",
			before: map[string]any{"status": "confirmed"},
			after:  map[string]any{"status": "confirmed", "memo": "late"},
			want:   []string{"memo"},
		},
		{
			name:   "numbers compare by value",
			before: map[string]any{"amount": float64(8000)},
			after:  map[string]any{"amount": int64(8000)},
			want:   []string{},
		},
		{
			name:   "delete has no changed fields",
			before: map[string]any{"status": "confirmed"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangedFields(tt.before, tt.after))
		})
	}
}

func TestRecorder_RecordAndRead(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))
	rec := NewRecorder(repository.NewAuditRepository(store.NewMemory()), clk, logger.Discard())
	ctx := context.Background()

	rec.Record(ctx, model.EntityReservation, "r1", model.ActionCreate, model.ActorCustomer, "CUS-1",
		nil, map[string]any{"status": "confirmed"})
	clk.Advance(time.Hour)
	rec.Record(ctx, model.EntityReservation, "r1", model.ActionUpdate, model.ActorTrainer, "TRN-001",
		map[string]any{"status": "confirmed"}, map[string]any{"status": "cancelled"})
	rec.Record(ctx, model.EntityReservation, "r2", model.ActionCreate, model.ActorCustomer, "CUS-2",
		nil, map[string]any{"status": "confirmed"})

	entries, err := rec.GetLogsByEntity(ctx, model.EntityReservation, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, model.ActionUpdate, entries[0].Action)
	assert.Equal(t, "cancelled", entries[0].NewValues["status"])
	assert.Equal(t, "confirmed", entries[0].OldValues["status"])
	assert.Equal(t, []string{"status"}, entries[0].ChangedFields)
	assert.Equal(t, model.ActionCreate, entries[1].Action)
	assert.Nil(t, entries[1].OldValues)
	assert.False(t, entries[1].GDPRRelevant)

	none, err := rec.GetLogsByEntity(ctx, model.EntitySlotLock, "r1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecorder_SameInstantKeepsNewestFirst(t *testing.T) {
	rec := NewRecorder(repository.NewAuditRepository(store.NewMemory()),
		clock.NewFixed(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)), logger.Discard())
	ctx := context.Background()

	for _, actor := range []string{"a", "b", "c"} {
		rec.Record(ctx, model.EntityReservation, "r1", model.ActionUpdate, model.ActorSystem, actor, nil, nil)
	}

	entries, err := rec.GetLogsByEntity(ctx, model.EntityReservation, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].ActorID)
	assert.Equal(t, "a", entries[2].ActorID)
}

func TestRecorder_GDPRFlag(t *testing.T) {
	mem := store.NewMemory()
	rec := NewRecorder(repository.NewAuditRepository(mem), clock.NewSystem(), logger.Discard())
	ctx := context.Background()

	rec.Record(ctx, model.EntityCustomer, "CUS-1", model.ActionUpdate, model.ActorCustomer, "CUS-1", nil, map[string]any{"name": "x"})
	rec.Record(ctx, model.EntityAnimal, "ANM-1", model.ActionDelete, model.ActorCustomer, "CUS-1", map[string]any{"name": "Pochi"}, nil)

	for _, pair := range [][2]string{{model.EntityCustomer, "CUS-1"}, {model.EntityAnimal, "ANM-1"}} {
		entries, err := rec.GetLogsByEntity(ctx, pair[0], pair[1])
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].GDPRRelevant, pair[0])
	}
}

func TestRecorder_WriteFailureIsSwallowed(t *testing.T) {
	faulty := storetest.NewFaulty(store.NewMemory())
	faulty.FailInserts(store.TableAuditLogs, errors.New("store down"), -1)
	rec := NewRecorder(repository.NewAuditRepository(faulty), clock.NewSystem(), logger.Discard())

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), model.EntityReservation, "r1", model.ActionCreate, model.ActorSystem, "", nil, nil)
	})
}

func TestRecorder_CancelledContextStillRecords(t *testing.T) {
	rec := NewRecorder(repository.NewAuditRepository(store.NewMemory()), clock.NewSystem(), logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Record(ctx, model.EntityReservation, "r1", model.ActionCreate, model.ActorSystem, "", nil, map[string]any{"a": 1})

	entries, err := rec.GetLogsByEntity(context.Background(), model.EntityReservation, "r1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecorder_ReadErrors(t *testing.T) {
	faulty := storetest.NewFaulty(store.NewMemory())
	faulty.FailReads(store.TableAuditLogs, errors.New("store down"), -1)
	rec := NewRecorder(repository.NewAuditRepository(faulty), clock.NewSystem(), logger.Discard())

	_, err := rec.GetLogsByEntity(context.Background(), model.EntityReservation, "r1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))

	_, err = rec.GetLogsByEntity(context.Background(), "", "r1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
