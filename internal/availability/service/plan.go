package service

import (
	"time"

	"k9harmony/pkg/model"
)

// plan holds everything needed to judge candidates for one trainer and lesson length.
type plan struct {
	trainer      *model.TrainerConfig
	duration     time.Duration
	buffer       time.Duration
	now          time.Time
	today        time.Time
	horizon      time.Time
	reservations []*model.Reservation
	locks        []*model.SlotLock
}

// window returns the working window of day, or ok=false when nothing can be booked that day.
func (p *plan) window(day time.Time) (time.Time, time.Time, bool) {
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if date.Before(p.today) || date.After(p.horizon) {
		return time.Time{}, time.Time{}, false
	}
	hours, ok := p.trainer.HoursOn(date)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	opening, closing, err := hours.Bounds(date, day.Location())
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return opening, closing, true
}

func (p *plan) slotsOn(day time.Time) []string {
	slots := []string{}
	opening, closing, ok := p.window(day)
	step := p.trainer.SlotInterval()
	if !ok || step <= 0 || p.duration <= 0 {
		return slots
	}
	for start := opening; !start.Add(p.duration).After(closing); start = start.Add(step) {
		if p.blocked(start) == "" {
			slots = append(slots, start.Format(model.ClockLayout))
		}
	}
	return slots
}

// reject returns why start cannot be booked, or "" when it can.
func (p *plan) reject(start time.Time) string {
	opening, closing, ok := p.window(start)
	if !ok {
		return "outside horizon or closed"
	}
	if start.Before(opening) || start.Add(p.duration).After(closing) {
		return "outside working hours"
	}
	if step := p.trainer.SlotInterval(); step <= 0 || start.Sub(opening)%step != 0 {
		return "not on the slot grid"
	}
	return p.blocked(start)
}

func (p *plan) blocked(start time.Time) string {
	if start.Before(p.now) {
		return "in the past"
	}
	end := start.Add(p.duration)
	for _, r := range p.reservations {
		if r.Overlaps(start, end) {
			return "overlaps reservation " + r.ID
		}
		if !start.Before(r.StartTime.Add(-p.buffer)) && start.Before(r.EndTime.Add(p.buffer)) {
			return "inside travel buffer of reservation " + r.ID
		}
	}
	key := model.SlotKey(p.trainer.ID, start)
	for _, l := range p.locks {
		if l.SlotKey == key || l.Covers(start, end) {
			return "locked by " + l.Holder
		}
	}
	return ""
}
