// Package validation wraps go-playground/validator for the workflow
// inputs.  Field names are reported by their JSON name so that messages
// line up with the request bodies.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"-"`
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

type FieldErrors []FieldError

func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return ""
	}
	messages := make([]string, 0, len(f))
	for _, err := range f {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(f), strings.Join(messages, "; "))
}

// OnlyTag reports whether every failure was raised by the given tag.
func (f FieldErrors) OnlyTag(tag string) bool {
	for _, err := range f {
		if err.Tag != tag {
			return false
		}
	}
	return len(f) > 0
}

// Details converts the errors into the map attached to an API error.
func (f FieldErrors) Details() map[string]any {
	out := make(map[string]any, len(f))
	for _, err := range f {
		out[err.Field] = err.Message
	}
	return out
}

type Validator struct {
	validate *validator.Validate
}

// New builds a validator that understands decimal amounts and payment
// methods.  It panics only if a built-in registration fails.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Decimals are validated through their float value so that the usual
	// numeric tags (gt, gte) apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("payment_method", validatePaymentMethod); err != nil {
		panic(fmt.Sprintf("register payment_method validator: %v", err))
	}

	return &Validator{validate: v}
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	_, ok := model.ParsePaymentMethod(fl.Field().String())
	return ok
}

// Struct validates s and returns FieldErrors describing every failure.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return translate(verrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) FieldErrors {
	out := make(FieldErrors, 0, len(errs))
	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "payment_method":
			message = "method must be one of MPESA, BANK, CASH"
		}
		out = append(out, FieldError{Field: namespace(err), Message: message, Tag: err.Tag()})
	}
	return out
}

// namespace drops the root struct name: "BookingInput.items[0].pax"
// becomes "items[0].pax".
func namespace(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
