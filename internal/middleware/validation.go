package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"unistats/pkg/contracts/domain"
)

// Validator validates bound query structs. Field names in errors come
// from the `query` tag.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the dashboard's custom rules:
// "dimension" accepts a known dimension key.
func NewValidator(dimensions []string) *Validator {
	v := validator.New()

	known := make(map[string]struct{}, len(dimensions))
	for _, d := range dimensions {
		known[d] = struct{}{}
	}
	_ = v.RegisterValidation("dimension", func(fl validator.FieldLevel) bool {
		_, ok := known[fl.Field().String()]
		return ok
	})
	_ = v.RegisterValidation("label", isValidLabel)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates s. Failures are validator.ValidationErrors.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// isValidLabel accepts printable category and source labels without
// control characters.
func isValidLabel(fl validator.FieldLevel) bool {
	label := fl.Field().String()
	if len(label) > 200 {
		return false
	}
	for _, r := range label {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// DimensionKeys lists the keys of dims for NewValidator.
func DimensionKeys(dims []domain.Dimension) []string {
	keys := make([]string, 0, len(dims))
	for _, d := range dims {
		keys = append(keys, d.Key)
	}
	return keys
}
