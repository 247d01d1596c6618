package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxEntryLength bounds a single free-text entry
const MaxEntryLength = 1000

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Registration only fails on a programming error
	register := map[string]validator.Func{
		"log_category":  validateLogCategory,
		"goal_type":     validateGoalType,
		"health_metric": validateHealthMetric,
		"iso_date":      validateISODate,
	}
	for tag, fn := range register {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

func validateLogCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Valid()
}

func validateGoalType(fl validator.FieldLevel) bool {
	return models.GoalType(fl.Field().String()).Valid()
}

func validateHealthMetric(fl validator.FieldLevel) bool {
	return models.HealthMetric(fl.Field().String()).Valid()
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

// Struct validates s and converts the first failure into an apperr validation error
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperr.Validation("%s is invalid (%s)", fieldName(fe), fe.Tag())
	}
	return apperr.Validation("invalid request: %v", err)
}

// fieldName renders a field error with a snake_case name
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateCategory validates a category string value
func ValidateCategory(value string) error {
	if !models.Category(value).Valid() {
		return apperr.Validation("invalid category: %s (must be one of water, food, cardio, workout, sleep, steps)", value)
	}
	return nil
}
