package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type HoursRange struct {
	Start string `json:"start" yaml:"start" validate:"required,hhmm"`
	End   string `json:"end" yaml:"end" validate:"required,hhmm"`
}

// Bounds resolves the range on the given calendar day in loc.
func (h HoursRange) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time, error) {
	sh, sm, err := ParseClock(h.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := ParseClock(h.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	y, m, d := day.Date()
	start := time.Date(y, m, d, sh, sm, 0, 0, loc)
	end := time.Date(y, m, d, eh, em, 0, 0, loc)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("hours range %s-%s is empty", h.Start, h.End)
	}
	return start, end, nil
}

// TrainerConfig is loaded once per request and never mutated by the booking flow.
type TrainerConfig struct {
	ID                    string                `json:"id" yaml:"id" validate:"required,max=64"`
	Code                  string                `json:"code" yaml:"code" validate:"required,max=32"`
	Name                  string                `json:"name" yaml:"name" validate:"required,min=1,max=100"`
	Active                bool                  `json:"active" yaml:"active"`
	TimeZone              string                `json:"time_zone,omitempty" yaml:"time_zone" validate:"omitempty,timezone"`
	WorkingHours          map[string]HoursRange `json:"working_hours" yaml:"working_hours" validate:"dive,keys,weekday,endkeys"`
	LessonDurationMin     int                   `json:"lesson_duration_min" yaml:"lesson_duration_min" validate:"required,min=15,max=480"`
	SlotIntervalMin       int                   `json:"slot_interval_min,omitempty" yaml:"slot_interval_min" validate:"omitempty,min=5,max=480"`
	BufferMin             int                   `json:"buffer_min" yaml:"buffer_min" validate:"min=0,max=240"`
	MaxAdvanceDays        int                   `json:"max_advance_days" yaml:"max_advance_days" validate:"min=0,max=365"`
	MultiAnimalMultiplier float64               `json:"multi_animal_multiplier,omitempty" yaml:"multi_animal_multiplier" validate:"omitempty,min=1,max=4"`
	MaxLessonDurationMin  int                   `json:"max_lesson_duration_min,omitempty" yaml:"max_lesson_duration_min" validate:"omitempty,min=15,max=600"`
	ClosedDates           []string              `json:"closed_dates,omitempty" yaml:"closed_dates" validate:"dive,datetime=2006-01-02"`
	Holidays              []string              `json:"holidays,omitempty" yaml:"holidays" validate:"dive,datetime=2006-01-02"`
	HolidayHours          *HoursRange           `json:"holiday_hours,omitempty" yaml:"holiday_hours" validate:"omitempty"`
	UpdatedAt             time.Time             `json:"updated_at" yaml:"-"`
}

func (t *TrainerConfig) Location() *time.Location {
	if t.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LessonDuration applies the multi-animal multiplier and clamps at the configured maximum.
func (t *TrainerConfig) LessonDuration(multiAnimal bool) time.Duration {
	minutes := t.LessonDurationMin
	if multiAnimal && t.MultiAnimalMultiplier > 1 {
		minutes = int(math.Round(float64(minutes) * t.MultiAnimalMultiplier))
		if t.MaxLessonDurationMin > 0 && minutes > t.MaxLessonDurationMin {
			minutes = t.MaxLessonDurationMin
		}
	}
	return time.Duration(minutes) * time.Minute
}

// SlotInterval falls back to the lesson duration so candidates never overlap.
func (t *TrainerConfig) SlotInterval() time.Duration {
	if t.SlotIntervalMin > 0 {
		return time.Duration(t.SlotIntervalMin) * time.Minute
	}
	return time.Duration(t.LessonDurationMin) * time.Minute
}

func (t *TrainerConfig) Buffer() time.Duration {
	return time.Duration(t.BufferMin) * time.Minute
}

// HoursOn returns the working window for a calendar day, or false when the trainer does not work.
func (t *TrainerConfig) HoursOn(day time.Time) (HoursRange, bool) {
	date := day.Format(DateLayout)
	for _, closed := range t.ClosedDates {
		if closed == date {
			return HoursRange{}, false
		}
	}
	for _, holiday := range t.Holidays {
		if holiday == date {
			if t.HolidayHours == nil {
				return HoursRange{}, false
			}
			return *t.HolidayHours, true
		}
	}
	hours, ok := t.WorkingHours[WeekdayKey(day.Weekday())]
	return hours, ok
}

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseClock parses HH:MM into hour and minute.
func ParseClock(s string) (int, int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
