// Package validation checks request payloads and rewrites restaurant fields
// into their canonical stored form.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"restaurant-service/internal/entity"
)

// States lists the 27 valid UF codes.
var States = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG",
	"PA", "PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

var (
	cnpjFormatted = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	cnpjRaw       = regexp.MustCompile(`^\d{14}$`)
	cepPattern    = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// Error carries one message per offending JSON field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New returns a validator with the cnpj, uf and cep tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return cnpjFormatted.MatchString(s) || cnpjRaw.MatchString(s)
	})
	_ = v.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
		return isState(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		return cepPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return &Validator{v: v}
}

// Struct validates s and converts failures into *Error.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

// Restaurant trims, validates and canonicalizes in.
func (val *Validator) Restaurant(in entity.RestaurantInput) (entity.RestaurantInput, error) {
	in = trimRestaurant(in)
	if err := val.Struct(in); err != nil {
		return entity.RestaurantInput{}, err
	}
	in.State = strings.ToUpper(in.State)
	in.CNPJ = FormatCNPJ(in.CNPJ)
	in.PostalCode = FormatCEP(in.PostalCode)
	return in, nil
}

// FormatCNPJ renders 14 digits as xx.xxx.xxx/xxxx-xx. Other input is returned unchanged.
func FormatCNPJ(s string) string {
	d := nonDigit.ReplaceAllString(s, "")
	if len(d) != 14 {
		return s
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[:2], d[2:5], d[5:8], d[8:12], d[12:])
}

// FormatCEP renders 8 digits as NNNNN-NNN. Other input is returned unchanged.
func FormatCEP(s string) string {
	d := nonDigit.ReplaceAllString(s, "")
	if len(d) != 8 {
		return s
	}
	return d[:5] + "-" + d[5:]
}

func isState(s string) bool {
	for _, uf := range States {
		if uf == s {
			return true
		}
	}
	return false
}

func trimRestaurant(in entity.RestaurantInput) entity.RestaurantInput {
	in.CNPJ = strings.TrimSpace(in.CNPJ)
	in.Name = strings.TrimSpace(in.Name)
	in.State = strings.TrimSpace(in.State)
	in.City = strings.TrimSpace(in.City)
	in.Type = strings.TrimSpace(in.Type)
	in.OperatingHours = strings.TrimSpace(in.OperatingHours)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.StreetNumber = strings.TrimSpace(in.StreetNumber)
	return in
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s characters", fe.Param())
	case "cnpj":
		return "CNPJ must be in format: xx.xxx.xxx/xxxx-xx"
	case "uf":
		return "Invalid state abbreviation"
	case "cep":
		return "Postal code must have 8 digits"
	default:
		return "is invalid"
	}
}
