// Package forms validates submitted fields against declared per-form rules and
// carries the render state of a form (declared fields, echoed input, errors).
package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Values holds submitted field values keyed by field name.
type Values map[string]string

// Errors holds validation messages keyed by field name.
type Errors map[string][]string

func (e Errors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e[name], " ")))
	}
	return strings.Join(parts, "; ")
}

// Add appends a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Field declares one accepted input and its validator tag.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Rules string `json:"-"`
}

// Form is a named set of accepted fields. Undeclared input is ignored.
type Form struct {
	name     string
	fields   []Field
	validate *validator.Validate
}

var defaultValidator = validator.New()

// New declares a form.
func New(name string, fields ...Field) *Form {
	return &Form{name: name, fields: fields, validate: defaultValidator}
}

// Name returns the form name.
func (f *Form) Name() string {
	return f.name
}

// Fields returns the declared fields in order.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Clean trims whitespace and keeps only declared fields.
func (f *Form) Clean(raw Values) Values {
	cleaned := make(Values, len(f.fields))
	for _, field := range f.fields {
		cleaned[field.Name] = strings.TrimSpace(raw[field.Name])
	}
	return cleaned
}

// Validate cleans raw and checks every declared field. The returned Errors is
// nil when the input is valid.
func (f *Form) Validate(raw Values) (Values, Errors) {
	cleaned := f.Clean(raw)
	errs := Errors{}

	for _, field := range f.fields {
		if field.Rules == "" {
			continue
		}
		err := f.validate.Var(cleaned[field.Name], field.Rules)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs.Add(field.Name, "Enter a valid value.")
			continue
		}
		for _, fe := range verrs {
			errs.Add(field.Name, message(fe, cleaned[field.Name]))
		}
	}

	if len(errs) == 0 {
		return cleaned, nil
	}
	return cleaned, errs
}

func message(fe validator.FieldError, value string) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).",
			fe.Param(), utf8.RuneCountInString(value))
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters (it has %d).",
			fe.Param(), utf8.RuneCountInString(value))
	default:
		return "Enter a valid value."
	}
}

// State is the renderable form: declared fields, current values and errors.
type State struct {
	Form   string  `json:"form"`
	Fields []Field `json:"fields"`
	Values Values  `json:"values"`
	Errors Errors  `json:"errors,omitempty"`
}

// Blank returns the state of an unbound form, optionally pre-filled.
func (f *Form) Blank(initial Values) State {
	values := Values{}
	for _, field := range f.fields {
		values[field.Name] = initial[field.Name]
	}
	return State{Form: f.name, Fields: f.Fields(), Values: values}
}

// Bound returns the state of a submitted form with its errors.
func (f *Form) Bound(raw Values, errs Errors) State {
	return State{Form: f.name, Fields: f.Fields(), Values: f.Clean(raw), Errors: errs}
}
