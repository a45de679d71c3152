package service

import (
	"context"
	"errors"
	"time"

	"k9harmony/pkg/model"
)

var ErrNoEstimate = errors.New("no transit estimate")

// TravelProvider estimates the transit gap a trainer needs around an appointment.
// Estimates are advisory; callers fall back to the trainer's buffer_min.
type TravelProvider interface {
	EstimateTransit(ctx context.Context, trainer *model.TrainerConfig) (time.Duration, error)
}

// StaticTravel serves fixed per-trainer estimates keyed by trainer ID.
type StaticTravel map[string]time.Duration

func (s StaticTravel) EstimateTransit(_ context.Context, trainer *model.TrainerConfig) (time.Duration, error) {
	d, ok := s[trainer.ID]
	if !ok || d < 0 {
		return 0, ErrNoEstimate
	}
	return d, nil
}
