package models

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	return v
}

// formProblems validates a form struct and returns one message per failed field.
// requiredMessages overrides the default "<label> is required" text by label.
func formProblems(form any, requiredMessages map[string]string) []string {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		label := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required":
			if msg, ok := requiredMessages[label]; ok {
				problems = append(problems, msg)
			} else {
				problems = append(problems, label+" is required")
			}
		default:
			problems = append(problems, label+" is invalid")
		}
	}
	return problems
}

// Validate checks every field of the form and returns all problems at once.
func (f ProfileForm) Validate() error {
	problems := formProblems(f, nil)
	if f.DateOfBirth != "" {
		if _, err := ParseFormDate(f.DateOfBirth); err != nil {
			problems = append(problems, "Date of birth must be a valid YYYY-MM-DD date")
		}
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}
