package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"k9harmony/internal/payments"
	"k9harmony/internal/store"
	"k9harmony/pkg/clock"
	"k9harmony/pkg/config"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MemoryStackBooksEndToEnd(t *testing.T) {
	cfg := config.Default("test")
	cfg.Log = logger.Discard()
	cfg.ReconciliationJournal = filepath.Join(t.TempDir(), "reconciliation.jsonl")

	clk := clock.NewFixed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc, err := Build(cfg, store.NewMemory(), clk)
	require.NoError(t, err)
	defer svc.Close(context.Background())

	_, isSandbox := svc.Gateway.(*payments.Sandbox)
	assert.True(t, isSandbox)

	ctx := context.Background()
	n, err := svc.Trainers.ImportCatalog(ctx, strings.NewReader(`
trainers:
  - code: trn-001
    name: Aiko
    active: true
    time_zone: UTC
    working_hours:
      thursday: {start: "09:00", end: "18:00"}
    lesson_duration_min: 60
    buffer_min: 15
`))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	r, err := svc.Bookings.BookAndPay(ctx, &model.ReservationDraft{
		CustomerID:  "CUS-1",
		AnimalID:    "ANM-1",
		TrainerCode: "TRN-001",
		StartTime:   time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
	}, &model.PaymentDraft{SourceToken: "cnon:ok", Amount: 8000}, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, r.Status)

	days, err := svc.Availability.ComputeAvailability(ctx, "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)
	assert.NotContains(t, days["2026-03-05"], "09:00")
}
