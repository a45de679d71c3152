package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	trainerserrors "k9harmony/internal/trainers/errors"
	"k9harmony/internal/trainers/repository"
	"k9harmony/internal/trainers/validator"
	"k9harmony/pkg/config"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/model"
	"k9harmony/pkg/sanitizer"

	"gopkg.in/yaml.v3"
)

type TrainerService interface {
	GetByCode(ctx context.Context, code string) (*model.TrainerConfig, error)
	GetByID(ctx context.Context, id string) (*model.TrainerConfig, error)
	// GetBookable is GetByCode that also rejects inactive trainers.
	GetBookable(ctx context.Context, code string) (*model.TrainerConfig, error)
	List(ctx context.Context) ([]*model.TrainerConfig, error)
	ImportCatalog(ctx context.Context, r io.Reader) (int, error)
}

type trainerService struct {
	repo      repository.TrainerRepository
	validator *validator.TrainerValidator
	cfg       *config.Config
}

func NewTrainerService(
	repo repository.TrainerRepository,
	validator *validator.TrainerValidator,
	cfg *config.Config,
) TrainerService {
	return &trainerService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *trainerService) GetByCode(ctx context.Context, code string) (*model.TrainerConfig, error) {
	code = sanitizer.NormalizeCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Trainer code cannot be empty")
	}
	trainer, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, s.translate(err, code)
	}
	return trainer, nil
}

func (s *trainerService) GetByID(ctx context.Context, id string) (*model.TrainerConfig, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trainer ID cannot be empty")
	}
	trainer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return trainer, nil
}

func (s *trainerService) GetBookable(ctx context.Context, code string) (*model.TrainerConfig, error) {
	trainer, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !trainer.Active {
		return nil, apperrors.TrainerUnavailable(code)
	}
	return trainer, nil
}

func (s *trainerService) List(ctx context.Context) ([]*model.TrainerConfig, error) {
	trainers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list trainers", "error", err)
		return nil, apperrors.Internal("Failed to list trainers", err)
	}
	return trainers, nil
}

func (s *trainerService) translate(err error, key string) error {
	if errors.Is(err, trainerserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Trainer", key)
	}
	s.cfg.Log.Error("Failed to load trainer", "trainer", key, "error", err)
	return apperrors.Unavailable("Trainer store").WithCause(err)
}

type catalogFile struct {
	Trainers []*model.TrainerConfig `yaml:"trainers"`
}

// ImportCatalog upserts every trainer in a YAML catalog. Nothing is written unless the whole file validates.
func (s *trainerService) ImportCatalog(ctx context.Context, r io.Reader) (int, error) {
	var catalog catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return 0, fmt.Errorf("%w: %v", trainerserrors.ErrInvalidCatalog, err)
	}

	seen := make(map[string]bool, len(catalog.Trainers))
	for i, t := range catalog.Trainers {
		s.sanitize(t)
		s.applyDefaults(t)
		if err := s.validator.Validate(t); err != nil {
			return 0, fmt.Errorf("%w: trainer #%d (%s): %v", trainerserrors.ErrInvalidCatalog, i+1, t.Code, err)
		}
		if seen[t.Code] {
			return 0, fmt.Errorf("%w: duplicate trainer code %s", trainerserrors.ErrInvalidCatalog, t.Code)
		}
		seen[t.Code] = true
	}

	for _, t := range catalog.Trainers {
		if err := s.repo.Upsert(ctx, t); err != nil {
			s.cfg.Log.Error("Failed to upsert trainer", "trainer_code", t.Code, "error", err)
			return 0, apperrors.Internal("Failed to store trainer "+t.Code, err)
		}
	}

	s.cfg.Log.Info("Trainer catalog imported", "count", len(catalog.Trainers))
	return len(catalog.Trainers), nil
}

func (s *trainerService) applyDefaults(t *model.TrainerConfig) {
	if t.ID == "" {
		t.ID = t.Code
	}
	if t.TimeZone == "" {
		t.TimeZone = s.cfg.DefaultTimeZone
	}
	if t.LessonDurationMin == 0 {
		t.LessonDurationMin = s.cfg.DefaultLessonMinutes
	}
	if t.MultiAnimalMultiplier == 0 {
		t.MultiAnimalMultiplier = s.cfg.DefaultMultiAnimalRate
	}
	if t.MaxLessonDurationMin == 0 {
		t.MaxLessonDurationMin = s.cfg.DefaultMaxLessonMin
	}
	if t.MaxAdvanceDays == 0 {
		t.MaxAdvanceDays = s.cfg.DefaultMaxAdvanceDays
	}
}

func (s *trainerService) sanitize(t *model.TrainerConfig) {
	t.Code = sanitizer.NormalizeCode(t.Code)
	t.ID = sanitizer.SanitizeIdentifier(t.ID)
	t.Name = sanitizer.NormalizeName(t.Name)
	t.ClosedDates = sanitizer.NormalizeDates(t.ClosedDates)
	t.Holidays = sanitizer.NormalizeDates(t.Holidays)
}
