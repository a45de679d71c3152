package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	_ "time/tzdata"

	trainerserrors "k9harmony/internal/trainers/errors"
	"k9harmony/internal/trainers/repository"
	"k9harmony/internal/trainers/validator"
	"k9harmony/internal/store"
	"k9harmony/pkg/config"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `
trainers:
  - code: trn-001
    name: "  Hanako   Sato "
    active: true
    time_zone: UTC
    lesson_duration_min: 60
    slot_interval_min: 15
    buffer_min: 15
    max_advance_days: 60
    working_hours:
      monday: {start: "09:00", end: "18:00"}
      thursday: {start: "09:00", end: "18:00"}
    closed_dates: ["2026-03-10", " 2026-03-10"]
    holidays: ["2026-03-20"]
    holiday_hours: {start: "10:00", end: "14:00"}
  - code: TRN-002
    name: Ken Ito
    active: false
    working_hours:
      tuesday: {start: "10:00", end: "16:00"}
`

func newTestService(t *testing.T) (TrainerService, store.Store) {
	t.Helper()
	cfg := config.Default("test")
	cfg.Log = logger.Discard()
	s := store.NewMemory()
	svc := NewTrainerService(
		repository.NewTrainerRepository(s),
		validator.NewTrainerValidator(cfg.Log),
		cfg,
	)
	return svc, s
}

func TestImportCatalog_StoresNormalizedTrainers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.ImportCatalog(ctx, strings.NewReader(catalog))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	trn, err := svc.GetByCode(ctx, "trn-001")
	require.NoError(t, err)
	assert.Equal(t, "TRN-001", trn.Code)
	assert.Equal(t, "TRN-001", trn.ID, "id defaults to the code")
	assert.Equal(t, "Hanako Sato", trn.Name)
	assert.Equal(t, []string{"2026-03-10"}, trn.ClosedDates)
	require.NotNil(t, trn.HolidayHours)
	assert.Equal(t, "10:00", trn.HolidayHours.Start)
	assert.Equal(t, "09:00", trn.WorkingHours["thursday"].Start)

	ito, err := svc.GetByID(ctx, "TRN-002")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", ito.TimeZone, "time zone falls back to the configured default")
	assert.Equal(t, 90, ito.LessonDurationMin)
	assert.InDelta(t, 1.5, ito.MultiAnimalMultiplier, 1e-9)
	assert.Equal(t, 120, ito.MaxLessonDurationMin)
}

func TestImportCatalog_IsIdempotent(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	_, err := svc.ImportCatalog(ctx, strings.NewReader(catalog))
	require.NoError(t, err)
	_, err = svc.ImportCatalog(ctx, strings.NewReader(catalog))
	require.NoError(t, err)

	rows, err := s.FetchTable(ctx, store.TableTrainers)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestImportCatalog_RejectsWholeFileOnInvalidEntry(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad clock",
			yaml: `
trainers:
  - code: TRN-009
    name: Bad
    working_hours:
      monday: {start: "9am", end: "18:00"}
`,
		},
		{
			name: "unknown weekday",
			yaml: `
trainers:
  - code: TRN-009
    name: Bad
    working_hours:
      funday: {start: "09:00", end: "18:00"}
`,
		},
		{
			name: "inverted hours",
			yaml: `
trainers:
  - code: TRN-009
    name: Bad
    working_hours:
      monday: {start: "18:00", end: "09:00"}
`,
		},
		{
			name: "duplicate codes",
			yaml: `
trainers:
  - {code: TRN-009, name: A}
  - {code: trn-009, name: B}
`,
		},
		{
			name: "unknown field",
			yaml: `
trainers:
  - {code: TRN-009, name: A, colour: red}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, s := newTestService(t)
			ctx := context.Background()

			_, err := svc.ImportCatalog(ctx, strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, trainerserrors.ErrInvalidCatalog))

			rows, err := s.FetchTable(ctx, store.TableTrainers)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestGetBookable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ImportCatalog(ctx, strings.NewReader(catalog))
	require.NoError(t, err)

	_, err = svc.GetBookable(ctx, "TRN-001")
	assert.NoError(t, err)

	_, err = svc.GetBookable(ctx, "TRN-002")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTrainerUnavailable))

	_, err = svc.GetBookable(ctx, "TRN-404")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.GetBookable(ctx, " ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
