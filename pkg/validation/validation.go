package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"mediashare/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			field := fl.Field()
			if field.Kind() == reflect.Pointer {
				if field.IsNil() {
					return true
				}
				field = field.Elem()
			}
			return strings.TrimSpace(field.String()) != ""
		})
	})
	return validate
}

// Struct checks the `validate` tags of input and reports failures as a
// validation error carrying message as its client-facing text.
func Struct(input interface{}, message string) error {
	err := instance().Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Internal("validation failed", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return apperror.ValidationFields(message, fields)
}

// ID rejects identifiers that are not UUIDs in the canonical lowercase
// 8-4-4-4-12 form the stores key records by.
func ID(id, kind string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.Validation(kind + " ID is required")
	}
	if u, err := uuid.Parse(id); err != nil || u.String() != id {
		return apperror.Validation(kind + " Id is not valid")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
