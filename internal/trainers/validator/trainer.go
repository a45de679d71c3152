package validator

import (
	"errors"
	"fmt"
	"strings"

	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type TrainerValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTrainerValidator(log *logger.Logger) *TrainerValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		log.Fatal("Failed to register 'weekday' validator", "error", err)
	}

	return &TrainerValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	_, _, err := model.ParseClock(fl.Field().String())
	return err == nil
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validateWeekday(fl validator.FieldLevel) bool {
	return weekdays[fl.Field().String()]
}

func (v *TrainerValidator) Validate(trainer *model.TrainerConfig) error {
	if err := v.validate.Struct(trainer); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var problems ValidationErrors
	for day, hours := range trainer.WorkingHours {
		if !ordered(hours) {
			problems = append(problems, ValidationError{
				Field:   "WorkingHours." + day,
				Message: fmt.Sprintf("end %s must be after start %s", hours.End, hours.Start),
			})
		}
	}
	if trainer.HolidayHours != nil && !ordered(*trainer.HolidayHours) {
		problems = append(problems, ValidationError{
			Field:   "HolidayHours",
			Message: "end must be after start",
		})
	}
	if trainer.MaxLessonDurationMin > 0 && trainer.MaxLessonDurationMin < trainer.LessonDurationMin {
		problems = append(problems, ValidationError{
			Field:   "MaxLessonDurationMin",
			Message: fmt.Sprintf("must be at least lesson_duration_min (%d)", trainer.LessonDurationMin),
		})
	}
	if len(problems) > 0 {
		return problems
	}
	return nil
}

func ordered(h model.HoursRange) bool {
	sh, sm, err := model.ParseClock(h.Start)
	if err != nil {
		return false
	}
	eh, em, err := model.ParseClock(h.End)
	if err != nil {
		return false
	}
	return eh*60+em > sh*60+sm
}

func (v *TrainerValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "hhmm":
			message = fmt.Sprintf("%s must be a clock time in HH:MM format", err.Field())
		case "weekday":
			message = fmt.Sprintf("%s must be a lowercase weekday name", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
