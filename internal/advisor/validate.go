package advisor

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// finite rejects NaN and ±Inf.
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError reports a request rejected before the search ran.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateRequest(req *Request) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, e := range verrs {
		ve.Problems = append(ve.Problems, fieldErrorToString(e))
	}
	return ve
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "min", "max":
		return fmt.Sprintf("%s must be between %d and %d", e.Field(), MinCards, MaxCards)
	case "finite":
		return fmt.Sprintf("%s must be a finite number", e.Field())
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
