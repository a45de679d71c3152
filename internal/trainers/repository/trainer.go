package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	trainerserrors "k9harmony/internal/trainers/errors"
	"k9harmony/internal/store"
	"k9harmony/pkg/model"
)

type TrainerRepository interface {
	FindByCode(ctx context.Context, code string) (*model.TrainerConfig, error)
	FindByID(ctx context.Context, id string) (*model.TrainerConfig, error)
	FindAll(ctx context.Context) ([]*model.TrainerConfig, error)
	// Upsert inserts the trainer or replaces the row with the same trainer_id.
	Upsert(ctx context.Context, trainer *model.TrainerConfig) error
}

type storeTrainerRepository struct {
	store store.Store
}

func NewTrainerRepository(s store.Store) TrainerRepository {
	return &storeTrainerRepository{store: s}
}

func (r *storeTrainerRepository) FindByCode(ctx context.Context, code string) (*model.TrainerConfig, error) {
	return r.findBy(ctx, "trainer_code", code)
}

func (r *storeTrainerRepository) FindByID(ctx context.Context, id string) (*model.TrainerConfig, error) {
	return r.findBy(ctx, "trainer_id", id)
}

func (r *storeTrainerRepository) findBy(ctx context.Context, column, value string) (*model.TrainerConfig, error) {
	row, err := r.store.FindBy(ctx, store.TableTrainers, column, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, trainerserrors.ErrNotFound
		}
		return nil, err
	}
	return fromRow(row)
}

func (r *storeTrainerRepository) FindAll(ctx context.Context) ([]*model.TrainerConfig, error) {
	rows, err := r.store.FetchTable(ctx, store.TableTrainers)
	if err != nil {
		return nil, err
	}
	trainers := make([]*model.TrainerConfig, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		trainers = append(trainers, t)
	}
	return trainers, nil
}

func (r *storeTrainerRepository) Upsert(ctx context.Context, trainer *model.TrainerConfig) error {
	trainer.UpdatedAt = time.Now().UTC()
	row := toRow(trainer)

	_, err := r.store.FindBy(ctx, store.TableTrainers, "trainer_id", trainer.ID)
	switch {
	case err == nil:
		return r.store.Update(ctx, store.TableTrainers, "trainer_id", trainer.ID, row)
	case errors.Is(err, store.ErrNotFound):
		return r.store.Insert(ctx, store.TableTrainers, row)
	default:
		return err
	}
}

func toRow(t *model.TrainerConfig) store.Row {
	row := store.Row{
		"trainer_id":              t.ID,
		"trainer_code":            t.Code,
		"trainer_name":            t.Name,
		"active":                  t.Active,
		"time_zone":               t.TimeZone,
		"working_hours":           store.EncodeJSON(t.WorkingHours),
		"lesson_duration_min":     t.LessonDurationMin,
		"slot_interval_min":       t.SlotIntervalMin,
		"buffer_min":              t.BufferMin,
		"max_advance_days":        t.MaxAdvanceDays,
		"multi_animal_multiplier": t.MultiAnimalMultiplier,
		"max_lesson_duration_min": t.MaxLessonDurationMin,
		"closed_dates":            store.EncodeJSON(t.ClosedDates),
		"holidays":                store.EncodeJSON(t.Holidays),
		"holiday_hours":           "",
		"updated_at":              t.UpdatedAt,
	}
	if t.HolidayHours != nil {
		row["holiday_hours"] = store.EncodeJSON(t.HolidayHours)
	}
	return row
}

func fromRow(row store.Row) (*model.TrainerConfig, error) {
	t := &model.TrainerConfig{
		ID:                    row.Str("trainer_id"),
		Code:                  row.Str("trainer_code"),
		Name:                  row.Str("trainer_name"),
		Active:                row.Bool("active"),
		TimeZone:              row.Str("time_zone"),
		LessonDurationMin:     int(row.Int("lesson_duration_min")),
		SlotIntervalMin:       int(row.Int("slot_interval_min")),
		BufferMin:             int(row.Int("buffer_min")),
		MaxAdvanceDays:        int(row.Int("max_advance_days")),
		MultiAnimalMultiplier: row.Float("multi_animal_multiplier"),
		MaxLessonDurationMin:  int(row.Int("max_lesson_duration_min")),
		UpdatedAt:             row.Time("updated_at"),
	}
	if err := row.JSON("working_hours", &t.WorkingHours); err != nil {
		return nil, fmt.Errorf("trainer %s working_hours: %w", t.ID, err)
	}
	if err := row.JSON("closed_dates", &t.ClosedDates); err != nil {
		return nil, fmt.Errorf("trainer %s closed_dates: %w", t.ID, err)
	}
	if err := row.JSON("holidays", &t.Holidays); err != nil {
		return nil, fmt.Errorf("trainer %s holidays: %w", t.ID, err)
	}
	if row.Str("holiday_hours") != "" && row.Str("holiday_hours") != "null" {
		var hh model.HoursRange
		if err := row.JSON("holiday_hours", &hh); err != nil {
			return nil, fmt.Errorf("trainer %s holiday_hours: %w", t.ID, err)
		}
		t.HolidayHours = &hh
	}
	return t, nil
}
