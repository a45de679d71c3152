package model

import "time"

// SlotLock is a short-lived exclusive claim on a trainer's start minute.
type SlotLock struct {
	ID         string    `json:"id"`
	TrainerID  string    `json:"trainer_id"`
	SlotKey    string    `json:"slot_key"`
	SlotStart  time.Time `json:"slot_start"`
	SlotEnd    time.Time `json:"slot_end"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (l *SlotLock) IsLive(now time.Time) bool {
	return now.Before(l.ExpiresAt)
}

// Covers reports whether the locked span intersects [start, end).
func (l *SlotLock) Covers(start, end time.Time) bool {
	if l.SlotEnd.IsZero() {
		return l.SlotStart.Equal(start)
	}
	return start.Before(l.SlotEnd) && l.SlotStart.Before(end)
}

// SlotKey identifies a trainer's start minute independent of time zone.
func SlotKey(trainerID string, start time.Time) string {
	return trainerID + "@" + start.UTC().Truncate(time.Minute).Format("2006-01-02T15:04Z")
}
