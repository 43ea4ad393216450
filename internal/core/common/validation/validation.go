package validation

import (
	"fmt"
	"net/mail"
	"slices"
	"time"

	errors "github.com/dcalliari/appe/internal"
)

const (
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04"
	LongClockLayout = "15:04:05"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

// Field registers a value. The returned pointer is only valid until the next
// call to Field.
func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	v.fields = append(v.fields, FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	})
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if v == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || *v == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case nil:
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := stringValue(value); ok && len([]rune(v)) < min {
			message := fmt.Sprintf("%s must be at least %d characters", name, min)
			return errors.NewValidationFieldError(name, message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := stringValue(value); ok && len([]rune(v)) > max {
			message := fmt.Sprintf("%s must not exceed %d characters", name, max)
			return errors.NewValidationFieldError(name, message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed ...string) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := stringValue(value); ok && !slices.Contains(allowed, v) {
			message := fmt.Sprintf("%s must be one of %v", name, allowed)
			return errors.NewValidationFieldError(name, message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := stringValue(value); ok && v != "" {
			if addr, err := mail.ParseAddress(v); err != nil || addr.Address != v {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a valid email", name), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// Clock accepts H:MM, HH:MM or HH:MM:SS in 24h form.
func (fv *FieldValidator) Clock() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := stringValue(value); ok && v != "" {
			if _, err := NormalizeClock(v); err != nil {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a time in HH:MM format", name), errors.ErrCodeInvalidTime)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Date() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := stringValue(value); ok && v != "" {
			if _, err := NormalizeDate(v); err != nil {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name), errors.ErrCodeInvalidDate)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

// NormalizeClock returns s as zero-padded HH:MM so that lexical order
// matches chronological order.
func NormalizeClock(s string) (string, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		t, err = time.Parse(LongClockLayout, s)
		if err != nil {
			return "", err
		}
	}
	return t.Format(ClockLayout), nil
}

// NormalizeLongClock returns s as zero-padded HH:MM:SS.
func NormalizeLongClock(s string) (string, error) {
	t, err := time.Parse(LongClockLayout, s)
	if err != nil {
		t, err = time.Parse(ClockLayout, s)
		if err != nil {
			return "", err
		}
	}
	return t.Format(LongClockLayout), nil
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar day as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	if t, err := ParseDate(s); err == nil {
		return t.Format(DateLayout), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(DateLayout), nil
}

// ValidateTimeRange requires start strictly before end.
func ValidateTimeRange(start, end string) *errors.AppError {
	s, err := NormalizeClock(start)
	if err != nil {
		return errors.NewValidationFieldError("startTime", "startTime must be a time in HH:MM format", errors.ErrCodeInvalidTime)
	}
	e, err := NormalizeClock(end)
	if err != nil {
		return errors.NewValidationFieldError("endTime", "endTime must be a time in HH:MM format", errors.ErrCodeInvalidTime)
	}
	if s >= e {
		return errors.NewValidationError("start time must be before end time", errors.ErrCodeInvalidTimeRange)
	}
	return nil
}
