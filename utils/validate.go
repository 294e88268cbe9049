package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"kartbook/timeslot"

	"github.com/go-playground/validator/v10"
	"github.com/golang-sql/civil"
)

var validate = newValidator()

var clockValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := timeslot.ParseClock(fl.Field().String())
	return err == nil
}

var isoDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := civil.ParseDate(fl.Field().String())
	return err == nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("clock", clockValidatorFunc)
	v.RegisterValidation("isodate", isoDateValidatorFunc)
	return v
}

// Validate runs struct tag validation on v.
func Validate(v any) error {
	return validate.Struct(v)
}

// ValidationMessage describes the first failed field of a validation error.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed on '%s=%s'", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
	}
	return err.Error()
}
