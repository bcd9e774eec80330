package middleware

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON field names in errors and
// the decimal tags used by request bodies.
//
//	dgt0      value > 0
//	dgte0     value >= 0
//	dscale=N  at most N fractional digits
//
// Decimal fields are validated on their string form so no precision is lost.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = v.RegisterValidation("dgt0", decimalCheck(func(d decimal.Decimal, _ string) bool { return d.IsPositive() }))
		_ = v.RegisterValidation("dgte0", decimalCheck(func(d decimal.Decimal, _ string) bool { return !d.IsNegative() }))
		_ = v.RegisterValidation("dscale", decimalCheck(func(d decimal.Decimal, param string) bool {
			places, err := strconv.Atoi(param)
			if err != nil || places < 0 {
				return false
			}
			return d.Equal(d.Truncate(int32(places)))
		}))
	})
}

func decimalCheck(pred func(d decimal.Decimal, param string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		if raw == "" {
			return false
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return false
		}
		return pred(d, fl.Param())
	}
}

// ValidationDetails turns binding errors into per-field details. The second
// result is false when err is not a validation error, e.g. malformed JSON.
func ValidationDetails(err error) ([]dto.ValidationDetail, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return details, true
}

// fieldPath strips the root struct from the namespace: "items[0].quantity"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid", "uuid4":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " item(s)"
		}
		return "Must be at least " + e.Param()
	case "max":
		return "Must be at most " + e.Param()
	case "dgt0":
		return "Must be greater than zero"
	case "dgte0":
		return "Must not be negative"
	case "dscale":
		return "Must have at most " + e.Param() + " decimal places"
	case "datetime":
		return "Must be a date formatted as " + e.Param()
	case "nefield":
		return "Must differ from " + e.Param()
	default:
		return "Invalid value"
	}
}
