package service

import (
	"context"
	"sort"

	"k9harmony/pkg/model"
)

// DoubleBooking is a pair of confirmed reservations for one trainer whose spans intersect.
type DoubleBooking struct {
	TrainerID string             `json:"trainer_id"`
	First     *model.Reservation `json:"first"`
	Second    *model.Reservation `json:"second"`
}

func (s *bookingService) FindDoubleBookings(ctx context.Context, trainerID string) ([]DoubleBooking, error) {
	var (
		all []*model.Reservation
		err error
	)
	if trainerID == "" {
		all, err = s.repo.FindAll(ctx)
	} else {
		all, err = s.repo.FindByTrainer(ctx, trainerID)
	}
	if err != nil {
		s.cfg.Log.Error("Failed to scan reservations", "trainer_id", trainerID, "error", err)
		return nil, unavailable(err)
	}

	byTrainer := make(map[string][]*model.Reservation)
	for _, r := range all {
		if r.Status == model.StatusConfirmed {
			byTrainer[r.TrainerID] = append(byTrainer[r.TrainerID], r)
		}
	}

	trainers := make([]string, 0, len(byTrainer))
	for id := range byTrainer {
		trainers = append(trainers, id)
	}
	sort.Strings(trainers)

	found := []DoubleBooking{}
	for _, id := range trainers {
		found = append(found, overlapping(id, byTrainer[id])...)
	}

	if len(found) > 0 {
		s.cfg.Log.Warn("Double bookings detected", "trainer_id", trainerID, "count", len(found))
	}
	return found, nil
}

func overlapping(trainerID string, rs []*model.Reservation) []DoubleBooking {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].StartTime.Before(rs[j].StartTime)
	})

	var out []DoubleBooking
	for i := range rs {
		for j := i + 1; j < len(rs) && rs[j].StartTime.Before(rs[i].EndTime); j++ {
			out = append(out, DoubleBooking{TrainerID: trainerID, First: rs[i], Second: rs[j]})
		}
	}
	return out
}
