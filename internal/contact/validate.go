// Package contact validates contact form submissions and relays them to the
// email service.
package contact

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldState is the visual state of one form control.
type FieldState string

const (
	StateNeutral FieldState = "neutral"
	StateValid   FieldState = "valid"
	StateInvalid FieldState = "invalid"
)

// Class returns the control class for s, or "" for neutral.
func (s FieldState) Class() string {
	switch s {
	case StateValid:
		return "is-valid"
	case StateInvalid:
		return "is-invalid"
	default:
		return ""
	}
}

const (
	FieldName    = "user_name"
	FieldEmail   = "user_email"
	FieldPhone   = "user_phone"
	FieldSubject = "subject"
	FieldMessage = "message"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[\d\s-]{8,}$`)
)

// Field describes one control of the form.
type Field struct {
	Name     string
	Required bool
}

// Schema is the ordered set of controls a submission is checked against.
type Schema []Field

// DefaultSchema matches the contact page form.
func DefaultSchema() Schema {
	return Schema{
		{Name: FieldName, Required: true},
		{Name: FieldEmail, Required: true},
		{Name: FieldPhone},
		{Name: FieldSubject},
		{Name: FieldMessage, Required: true},
	}
}

// SchemaFromForm reads the named .form-control elements of a form and their
// required flags.
func SchemaFromForm(form *goquery.Selection) Schema {
	var s Schema
	form.Find(".form-control[name]").Each(func(_ int, el *goquery.Selection) {
		_, required := el.Attr("required")
		s = append(s, Field{Name: el.AttrOr("name", ""), Required: required})
	})
	return s
}

// ErrNoForm is returned by SchemaFromPage when the page has no named controls
// inside #contact-form.
var ErrNoForm = errors.New("contact: page has no contact form")

// SchemaFromPage parses the page at name and reads its #contact-form.
func SchemaFromPage(fsys fs.FS, name string) (Schema, error) {
	f, err := fsys.Open(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("contact: open form page: %w", err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("contact: parse form page: %w", err)
	}
	s := SchemaFromForm(doc.Find("#contact-form").First())
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoForm, name)
	}
	return s, nil
}

// Lookup returns the field called name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ValidateField applies the required rule and the email and phone formats.
// An empty optional field is neutral.
func ValidateField(f Field, value string) FieldState {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if f.Required {
			return StateInvalid
		}
		return StateNeutral
	}
	switch f.Name {
	case FieldEmail:
		if !emailPattern.MatchString(value) {
			return StateInvalid
		}
	case FieldPhone:
		if !phonePattern.MatchString(value) {
			return StateInvalid
		}
	}
	return StateValid
}

// Result holds the state of every schema field.
type Result struct {
	States map[string]FieldState
}

// OK reports whether no field is invalid.
func (r Result) OK() bool {
	for _, s := range r.States {
		if s == StateInvalid {
			return false
		}
	}
	return true
}

// Invalid lists the invalid field names in schema order.
func (r Result) Invalid(schema Schema) []string {
	var out []string
	for _, f := range schema {
		if r.States[f.Name] == StateInvalid {
			out = append(out, f.Name)
		}
	}
	return out
}

// Validate checks every schema field of form.
func (s Schema) Validate(form url.Values) Result {
	res := Result{States: make(map[string]FieldState, len(s))}
	for _, f := range s {
		res.States[f.Name] = ValidateField(f, form.Get(f.Name))
	}
	return res
}
