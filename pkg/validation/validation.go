// Package validation wraps go-playground/validator so handlers can check
// request DTOs against their struct tags.
package validation

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

// Amounts may carry at most two decimal places on the wire.
var twoDecimalPlaces = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterCustomTypeFunc(decimalAsString, decimal.Decimal{})
	validate.RegisterValidation("money", isMoney)
}

// decimalAsString lets `money` and string rules apply to decimal fields.
func decimalAsString(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// isMoney validates that a string-typed amount has minor-unit precision.
func isMoney(fl validator.FieldLevel) bool {
	return twoDecimalPlaces.MatchString(fl.Field().String())
}

// Struct validates a DTO against its `validate` tags. The returned slice
// contains one human-readable message per failed field; nil means valid.
func Struct(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	details := make([]string, len(verrs))
	for i, fe := range verrs {
		details[i] = fmt.Sprintf("field '%s' failed on the '%s' rule", fe.Field(), fe.Tag())
	}
	return details
}
