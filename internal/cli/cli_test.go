package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"k9harmony/internal/bookings/reconciliation"
	"k9harmony/internal/services"
	"k9harmony/internal/store"
	"k9harmony/pkg/clock"
	"k9harmony/pkg/config"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `
trainers:
  - code: trn-001
    name: Aiko
    active: true
    time_zone: UTC
    working_hours:
      thursday: {start: "09:00", end: "11:00"}
    lesson_duration_min: 60
    slot_interval_min: 60
    buffer_min: 0
`

type harness struct {
	st      store.Store
	journal string
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{st: store.NewMemory(), journal: filepath.Join(dir, "reconciliation.jsonl"), dir: dir}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := config.Default("test")
	cfg.Log = logger.Discard()
	cfg.ReconciliationJournal = h.journal

	clk := clock.NewFixed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	rt := &runtime{
		loadConfig: func() *config.Config { return cfg },
		build: func(cfg *config.Config) (*services.Services, error) {
			return services.Build(cfg, h.st, clk)
		},
	}

	var out bytes.Buffer
	root := newRoot(rt, &out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	rt.close(context.Background(), &out)
	return out.String(), err
}

func (h *harness) importCatalog(t *testing.T) {
	t.Helper()
	path := filepath.Join(h.dir, "trainers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))
	out, err := h.run(t, "trainers", "import", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 trainers")
}

func TestTrainersImportAndList(t *testing.T) {
	h := newHarness(t)
	h.importCatalog(t)

	out, err := h.run(t, "trainers", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TRN-001")
	assert.Contains(t, out, "Aiko")
}

func TestAvailability(t *testing.T) {
	h := newHarness(t)
	h.importCatalog(t)

	out, err := h.run(t, "availability", "--trainer", "TRN-001", "--month", "2026-03")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-05  09:00 10:00")
	assert.NotContains(t, out, "2026-03-06")

	_, err = h.run(t, "availability", "--trainer", "TRN-001", "--month", "March")
	assert.Error(t, err)
}

func TestConsistency(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "consistency")
	require.NoError(t, err)
	assert.Contains(t, out, "no double bookings")

	at := func(hh int) time.Time { return time.Date(2026, 3, 5, hh, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	for _, r := range []store.Row{
		{"reservation_id": "a", "trainer_id": "TRN-001", "status": "confirmed", "start_time": at(9), "end_time": at(11)},
		{"reservation_id": "b", "trainer_id": "TRN-001", "status": "confirmed", "start_time": at(10), "end_time": at(12)},
	} {
		require.NoError(t, h.st.Insert(ctx, store.TableReservations, r))
	}

	out, err = h.run(t, "consistency", "--trainer", "TRN-001")
	var found ErrDoubleBookings
	require.ErrorAs(t, err, &found)
	assert.EqualValues(t, 1, found)
	assert.Contains(t, out, "2026-03-05 09:00-11:00")
}

func TestSweepLocks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.st.Insert(ctx, store.TableSlotLocks, store.Row{
		"lock_id": "l1", "trainer_id": "TRN-001", "holder": "CUS-1",
		"expires_at": time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	}))

	out, err := h.run(t, "sweep-locks")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 expired locks")
}

func TestJournal(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "journal")
	require.NoError(t, err)
	assert.Contains(t, out, "journal is empty")

	require.NoError(t, reconciliation.NewFileJournal(h.journal).Append(context.Background(), &model.ReconciliationRecord{
		TransactionID:   "tx-1",
		CustomerID:      "CUS-1",
		ChargeReference: "pay_123",
		Amount:          8000,
		Currency:        "JPY",
		RefundError:     "refund endpoint down",
		RecordedAt:      time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
	}))

	out, err = h.run(t, "journal")
	require.NoError(t, err)
	assert.Contains(t, out, "pay_123")
	assert.Contains(t, out, "8000 JPY")
}

func TestWaitReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h := newHarness(t)
	out, err := h.run(t, "wait-ready", "--url", srv.URL, "--timeout", "2s")
	require.NoError(t, err)
	assert.Contains(t, out, "is healthy")
}
