package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	entityNameRegex = regexp.MustCompile(`^[A-Za-z0-9 \-_]{3,40}$`)
)

func entityNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return entityNameRegex.MatchString(val)
}
