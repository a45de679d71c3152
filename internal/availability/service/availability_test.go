package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"k9harmony/pkg/clock"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrainers map[string]*model.TrainerConfig

func (f fakeTrainers) GetBookable(_ context.Context, code string) (*model.TrainerConfig, error) {
	t, ok := f[code]
	if !ok {
		return nil, apperrors.NotFoundWithID("Trainer", code)
	}
	if !t.Active {
		return nil, apperrors.TrainerUnavailable(code)
	}
	return t, nil
}

type fakeReservations struct {
	rows []*model.Reservation
	err  error
}

func (f *fakeReservations) FindBlocking(_ context.Context, trainerID string, from, to time.Time) ([]*model.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Reservation
	for _, r := range f.rows {
		if r.TrainerID == trainerID && r.Overlaps(from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeLocks []*model.SlotLock

func (f fakeLocks) LiveLocks(_ context.Context, trainerID string) ([]*model.SlotLock, error) {
	var out []*model.SlotLock
	for _, l := range f {
		if l.TrainerID == trainerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func weekdayHours() map[string]model.HoursRange {
	h := model.HoursRange{Start: "09:00", End: "18:00"}
	return map[string]model.HoursRange{
		"monday": h, "tuesday": h, "wednesday": h, "thursday": h, "friday": h,
	}
}

func trn001() *model.TrainerConfig {
	return &model.TrainerConfig{
		ID:                    "TRN-001",
		Code:                  "TRN-001",
		Name:                  "Hanako Sato",
		Active:                true,
		TimeZone:              "UTC",
		WorkingHours:          weekdayHours(),
		LessonDurationMin:     60,
		SlotIntervalMin:       15,
		BufferMin:             15,
		MaxAdvanceDays:        60,
		MultiAnimalMultiplier: 1.5,
		MaxLessonDurationMin:  120,
	}
}

func at(day, clockTime string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+clockTime)
	if err != nil {
		panic(err)
	}
	return t
}

func confirmed(id, day, from, to string) *model.Reservation {
	return &model.Reservation{
		ID:        id,
		TrainerID: "TRN-001",
		StartTime: at(day, from),
		EndTime:   at(day, to),
		Status:    model.StatusConfirmed,
	}
}

type fixture struct {
	trainer      *model.TrainerConfig
	reservations *fakeReservations
	locks        fakeLocks
	travel       TravelProvider
	now          time.Time
}

func newFixture() *fixture {
	return &fixture{
		trainer:      trn001(),
		reservations: &fakeReservations{},
		now:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) service() AvailabilityService {
	return NewAvailabilityService(
		fakeTrainers{f.trainer.Code: f.trainer, "TRN-002": {ID: "TRN-002", Code: "TRN-002", Active: false}},
		f.reservations,
		f.locks,
		f.travel,
		clock.NewFixed(f.now),
		logger.Discard(),
	)
}

// grid lists HH:MM starts from first to last inclusive every step minutes.
func grid(first, last string, step int) []string {
	from := at("2026-03-05", first)
	to := at("2026-03-05", last)
	var out []string
	for t := from; !t.After(to); t = t.Add(time.Duration(step) * time.Minute) {
		out = append(out, t.Format("15:04"))
	}
	return out
}

func TestComputeAvailability_BufferAroundConfirmedReservation(t *testing.T) {
	f := newFixture()
	f.reservations.rows = []*model.Reservation{confirmed("R-1", "2026-03-05", "10:00", "11:00")}

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)

	want := append([]string{"09:00"}, grid("11:15", "17:00", 15)...)
	assert.Equal(t, want, days["2026-03-05"])

	assert.Equal(t, grid("09:00", "17:00", 15), days["2026-03-06"], "other days are untouched")
}

func TestComputeAvailability_EveryDayOfMonthIsPresent(t *testing.T) {
	f := newFixture()

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)

	assert.Len(t, days, 31)
	assert.NotNil(t, days["2026-03-01"])
	assert.Empty(t, days["2026-03-01"], "sunday is closed")
	assert.Empty(t, days["2026-03-07"], "saturday is closed")
	assert.NotEmpty(t, days["2026-03-02"])

	for day, slots := range days {
		for i := 1; i < len(slots); i++ {
			assert.Less(t, slots[i-1], slots[i], "slots on %s must be sorted", day)
		}
	}
}

func TestComputeAvailability_NoWorkingDays(t *testing.T) {
	f := newFixture()
	f.trainer.WorkingHours = nil

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.April, false, "")
	require.NoError(t, err)
	assert.Len(t, days, 30)
	for _, slots := range days {
		assert.Empty(t, slots)
	}
}

func TestComputeAvailability_ClosedDatesAndHolidays(t *testing.T) {
	f := newFixture()
	f.trainer.ClosedDates = []string{"2026-03-09"}
	f.trainer.Holidays = []string{"2026-03-10", "2026-03-11"}
	f.trainer.HolidayHours = &model.HoursRange{Start: "10:00", End: "12:00"}

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)

	assert.Empty(t, days["2026-03-09"])
	assert.Equal(t, []string{"10:00", "10:15", "10:30", "10:45", "11:00"}, days["2026-03-10"])

	f.trainer.HolidayHours = nil
	days, err = f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)
	assert.Empty(t, days["2026-03-11"], "holiday without holiday hours is closed")
}

func TestComputeAvailability_Horizon(t *testing.T) {
	f := newFixture()
	f.trainer.MaxAdvanceDays = 3
	f.now = time.Date(2026, 3, 2, 12, 5, 0, 0, time.UTC)

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)

	assert.Equal(t, grid("12:15", "17:00", 15), days["2026-03-02"], "past starts are dropped")
	assert.NotEmpty(t, days["2026-03-05"], "today plus max advance days is inclusive")
	assert.Empty(t, days["2026-03-06"])

	days, err = f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.February, false, "")
	require.NoError(t, err)
	for day, slots := range days {
		assert.Empty(t, slots, "past day %s", day)
	}
}

func TestComputeAvailability_MultiAnimalUsesLongerLesson(t *testing.T) {
	f := newFixture()

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, true, "")
	require.NoError(t, err)

	slots := days["2026-03-05"]
	require.NotEmpty(t, slots)
	assert.Equal(t, "16:30", slots[len(slots)-1], "90 minute lesson must end by 18:00")
}

func TestComputeAvailability_LocksOfOtherHolders(t *testing.T) {
	f := newFixture()
	f.locks = fakeLocks{{
		ID:        "L-1",
		TrainerID: "TRN-001",
		SlotKey:   model.SlotKey("TRN-001", at("2026-03-05", "14:00")),
		SlotStart: at("2026-03-05", "14:00"),
		SlotEnd:   at("2026-03-05", "15:00"),
		Holder:    "CUS-A",
		ExpiresAt: f.now.Add(5 * time.Minute),
	}}

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "CUS-B")
	require.NoError(t, err)
	slots := days["2026-03-05"]
	assert.Contains(t, slots, "13:00")
	assert.Contains(t, slots, "15:00")
	for _, blocked := range grid("13:15", "14:45", 15) {
		assert.NotContains(t, slots, blocked)
	}

	days, err = f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "CUS-A")
	require.NoError(t, err)
	assert.Contains(t, days["2026-03-05"], "14:00", "holder sees its own locked slot")
}

func TestComputeAvailability_IgnoresInactiveReservations(t *testing.T) {
	f := newFixture()
	cancelled := confirmed("R-1", "2026-03-05", "10:00", "11:00")
	cancelled.Status = model.StatusCancelled
	f.reservations.rows = []*model.Reservation{cancelled}

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)
	assert.Equal(t, grid("09:00", "17:00", 15), days["2026-03-05"])
}

func TestComputeAvailability_TravelEstimateReplacesBuffer(t *testing.T) {
	f := newFixture()
	f.reservations.rows = []*model.Reservation{confirmed("R-1", "2026-03-05", "10:00", "11:00")}
	f.travel = StaticTravel{"TRN-001": 45 * time.Minute}

	days, err := f.service().ComputeAvailability(context.Background(), "TRN-001", 2026, time.March, false, "")
	require.NoError(t, err)

	want := append([]string{"09:00"}, grid("11:45", "17:00", 15)...)
	assert.Equal(t, want, days["2026-03-05"])
}

func TestComputeAvailability_Errors(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.ComputeAvailability(ctx, "TRN-404", 2026, time.March, false, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.ComputeAvailability(ctx, "TRN-002", 2026, time.March, false, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTrainerUnavailable))

	_, err = svc.ComputeAvailability(ctx, "TRN-001", 2026, 13, false, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	f.reservations.err = errors.New("connection reset")
	_, err = svc.ComputeAvailability(ctx, "TRN-001", 2026, time.March, false, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
}

func TestIsBookable(t *testing.T) {
	f := newFixture()
	f.reservations.rows = []*model.Reservation{confirmed("R-1", "2026-03-05", "10:00", "11:00")}
	svc := f.service()

	tests := []struct {
		start string
		want  bool
	}{
		{"2026-03-05 09:00", true},
		{"2026-03-05 09:15", false},
		{"2026-03-05 11:00", false},
		{"2026-03-05 11:15", true},
		{"2026-03-05 11:20", false},
		{"2026-03-05 17:15", false},
		{"2026-03-07 10:00", false},
		{"2026-05-29 10:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			start, err := time.Parse("2006-01-02 15:04", tt.start)
			require.NoError(t, err)
			ok, err := svc.IsBookable(context.Background(), f.trainer, start, time.Hour, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok, fmt.Sprintf("start %s", tt.start))
		})
	}
}
