package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainerConfig_LessonDuration(t *testing.T) {
	tests := []struct {
		name        string
		base        int
		multiplier  float64
		max         int
		multiAnimal bool
		want        time.Duration
	}{
		{"single animal keeps base", 90, 1.5, 120, false, 90 * time.Minute},
		{"multi animal clamped at max", 90, 1.5, 120, true, 120 * time.Minute},
		{"multi animal under max", 60, 1.5, 120, true, 90 * time.Minute},
		{"no max configured", 60, 2, 0, true, 120 * time.Minute},
		{"multiplier unset", 60, 0, 120, true, 60 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := TrainerConfig{LessonDurationMin: tt.base, MultiAnimalMultiplier: tt.multiplier, MaxLessonDurationMin: tt.max}
			assert.Equal(t, tt.want, cfg.LessonDuration(tt.multiAnimal))
		})
	}
}

func TestTrainerConfig_SlotIntervalDefaultsToLesson(t *testing.T) {
	cfg := TrainerConfig{LessonDurationMin: 60}
	assert.Equal(t, 60*time.Minute, cfg.SlotInterval())

	cfg.SlotIntervalMin = 15
	assert.Equal(t, 15*time.Minute, cfg.SlotInterval())
}

func TestTrainerConfig_HoursOn(t *testing.T) {
	cfg := TrainerConfig{
		WorkingHours: map[string]HoursRange{
			"thursday": {Start: "09:00", End: "18:00"},
		},
		ClosedDates:  []string{"2026-03-12"},
		Holidays:     []string{"2026-03-19", "2026-03-20"},
		HolidayHours: &HoursRange{Start: "10:00", End: "15:00"},
	}

	hours, ok := cfg.HoursOn(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "09:00", hours.Start)

	_, ok = cfg.HoursOn(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok, "closed date")

	hours, ok = cfg.HoursOn(time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC))
	require.True(t, ok, "holiday with holiday hours")
	assert.Equal(t, "10:00", hours.Start)

	_, ok = cfg.HoursOn(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok, "friday not in template")
}

func TestHoursRange_Bounds(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	start, end, err := HoursRange{Start: "09:00", End: "18:00"}.Bounds(day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC), end)

	_, _, err = HoursRange{Start: "18:00", End: "09:00"}.Bounds(day, time.UTC)
	assert.Error(t, err)

	_, _, err = HoursRange{Start: "9am", End: "18:00"}.Bounds(day, time.UTC)
	assert.Error(t, err)
}

func TestReservation_Overlaps(t *testing.T) {
	r := Reservation{
		StartTime: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC),
	}
	at := func(h, m int) time.Time { return time.Date(2026, 3, 5, h, m, 0, 0, time.UTC) }

	assert.False(t, r.Overlaps(at(9, 0), at(10, 0)), "touching before")
	assert.True(t, r.Overlaps(at(9, 30), at(10, 30)))
	assert.True(t, r.Overlaps(at(10, 15), at(10, 45)))
	assert.False(t, r.Overlaps(at(11, 0), at(12, 0)), "touching after")
}

func TestReservation_BlocksSlots(t *testing.T) {
	for status, want := range map[ReservationStatus]bool{
		StatusPendingPayment: true,
		StatusConfirmed:      true,
		StatusCancelled:      false,
		StatusExpired:        false,
	} {
		r := Reservation{Status: status}
		assert.Equal(t, want, r.BlocksSlots(), string(status))
	}
}

func TestSlotKey_NormalizesZoneAndSeconds(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	a := SlotKey("TRN-001", time.Date(2026, 3, 5, 18, 0, 30, 0, jst))
	b := SlotKey("TRN-001", time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, "TRN-001@2026-03-05T09:00Z", a)
	assert.Equal(t, a, b)
}

func TestSlotLock_Covers(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 3, 5, h, m, 0, 0, time.UTC) }
	lock := SlotLock{SlotStart: at(9, 0), SlotEnd: at(10, 0)}

	assert.True(t, lock.Covers(at(9, 0), at(10, 0)))
	assert.True(t, lock.Covers(at(9, 45), at(10, 45)))
	assert.False(t, lock.Covers(at(10, 0), at(11, 0)))

	pointLock := SlotLock{SlotStart: at(9, 0)}
	assert.True(t, pointLock.Covers(at(9, 0), at(10, 0)))
	assert.False(t, pointLock.Covers(at(9, 15), at(10, 15)))
}
