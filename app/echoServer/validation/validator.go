package validation

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"camrental/service/otp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// NewValidate returns a validator that reports fields by their json names.
// It also knows the "otp" tag for handoff codes.
func NewValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		return otp.Valid(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validator plugs into echo.Echo.Validator.
type Validator struct {
	v *validator.Validate
}

func New(v *validator.Validate) *Validator {
	return &Validator{v: v}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": Fields(err)})
	}
	return nil
}

// Fields flattens a validation error into field -> failed rule, e.g.
// {"price_per_day": "lte=10000"}.
func Fields(err error) map[string]string {
	out := map[string]string{}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return out
	}
	for _, fe := range ves {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}
