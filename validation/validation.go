// Package validation checks form input before anything is sent to the
// backend. A failed check is reported as *Errors and never reaches the API
// client.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/careergap-web/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Errors maps form field names to messages, keeping the order they were found in.
type Errors struct {
	fields map[string]string
	order  []string
}

func (e *Errors) Add(field, msg string) {
	if e.fields == nil {
		e.fields = make(map[string]string)
	}
	if _, ok := e.fields[field]; ok {
		return
	}
	e.fields[field] = msg
	e.order = append(e.order, field)
}

func (e *Errors) Fields() map[string]string {
	return e.fields
}

// First is the message shown when a page has room for one error only.
func (e *Errors) First() string {
	if len(e.order) == 0 {
		return ""
	}
	return e.fields[e.order[0]]
}

func (e *Errors) Empty() bool {
	return len(e.order) == 0
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, f := range e.order {
		msgs = append(msgs, e.fields[f])
	}
	return strings.Join(msgs, "; ")
}

func (e *Errors) Is(target error) bool {
	return target == apperrors.ErrValidation
}

func (e *Errors) orNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Validate checks a form struct against its validate tags.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("[validation Validate] %w", err)
	}

	errs := &Errors{}
	t := reflect.Indirect(reflect.ValueOf(form)).Type()
	for _, fe := range fieldErrs {
		sf, _ := t.FieldByName(fe.StructField())
		errs.Add(fe.Field(), message(fe, sf))
	}
	return errs.orNil()
}

func message(fe validator.FieldError, sf reflect.StructField) string {
	if msg := sf.Tag.Get("msg"); msg != "" {
		return msg
	}
	label := sf.Tag.Get("label")
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
