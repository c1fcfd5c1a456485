// Package form describes the editable fields of each entity as static
// tables and validates submitted values against them.
package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Field describes one editable form field.
type Field struct {
	Name     string // form key, e.g. "phone_number"
	Label    string // human label used in templates
	Required bool
	MinLen   int    // minimum length in characters, 0 for unbounded
	MaxLen   int    // maximum length in characters, 0 for unbounded
	Format   string // extra validator tag applied to non-empty values
	Textarea bool
	Secret   bool // checked as submitted, never trimmed
}

// MinPasswordLen is the shortest password accepted at sign-up.
const MinPasswordLen = 8

// AccountFields are the credentials submitted at sign-up.
var AccountFields = []Field{
	{Name: "email", Label: "Email", Required: true, MaxLen: 254, Format: "email"},
	{Name: "password", Label: "Password", Required: true, MinLen: MinPasswordLen, Secret: true},
}

// ProfileFields are the fields a user may edit on their profile.
var ProfileFields = []Field{
	{Name: "name", Label: "Name", Required: true, MaxLen: 50},
	{Name: "phone_number", Label: "Phone number", Format: "e164"},
	{Name: "city", Label: "City", Required: true, MaxLen: 50},
}

// MovieFields are the fields a user may set on a movie listing.  The
// owner is deliberately absent: it is always taken from the session.
var MovieFields = []Field{
	{Name: "name", Label: "Name", Required: true, MaxLen: 50},
	{Name: "category", Label: "Category", Required: true, MaxLen: 50},
	{Name: "description", Label: "Description", Required: true, MaxLen: 3000, Textarea: true},
	{Name: "price", Label: "Price", Required: true, Format: "price"},
}

// Errors maps a field name to its error message.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for k, v := range e {
		parts = append(parts, k+": "+v)
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			_, err := ParsePrice(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// tag compiles a field's rules into a validator tag.
func (f Field) tag() string {
	var rules []string
	if f.Required {
		rules = append(rules, "required")
	} else {
		rules = append(rules, "omitempty")
	}
	if f.MinLen > 0 {
		rules = append(rules, fmt.Sprintf("min=%d", f.MinLen))
	}
	if f.MaxLen > 0 {
		rules = append(rules, fmt.Sprintf("max=%d", f.MaxLen))
	}
	if f.Format != "" {
		rules = append(rules, f.Format)
	}
	return strings.Join(rules, ",")
}

// Validate trims every non-secret value in place and checks it against
// fields.  It returns nil when all fields are valid.
func Validate(fields []Field, values map[string]string) Errors {
	errs := Errors{}
	for _, f := range fields {
		v := values[f.Name]
		if !f.Secret {
			v = strings.TrimSpace(v)
		}
		if f.Format == "e164" {
			v = NormalizePhone(v)
		}
		values[f.Name] = v
		if err := engine().Var(v, f.tag()); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				errs[f.Name] = message(f, verrs[0].Tag())
			} else {
				errs[f.Name] = "Enter a valid value."
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func message(f Field, tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "min":
		if f.Secret {
			return fmt.Sprintf("This password is too short. It must contain at least %d characters.", f.MinLen)
		}
		return fmt.Sprintf("Ensure this value has at least %d characters.", f.MinLen)
	case "max":
		return fmt.Sprintf("Ensure this value has at most %d characters.", f.MaxLen)
	case "email":
		return "Enter a valid email address."
	case "e164":
		return "Enter a valid phone number (e.g. +12125552368)."
	case "price":
		return "Enter a number greater than or equal to 0."
	}
	return "Enter a valid value."
}

// Collect reads the value of each field through get, typically
// echo.Context.FormValue.  Keys outside fields are never read.
func Collect(fields []Field, get func(string) string) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = get(f.Name)
	}
	return values
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// NormalizePhone strips common separators so "+1 (212) 555-2368" becomes
// "+12125552368".  A leading "00" international prefix is rewritten to "+".
func NormalizePhone(s string) string {
	s = phoneSeparators.Replace(strings.TrimSpace(s))
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	return s
}

// ParsePrice parses a non-negative, finite decimal.
func ParsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("price out of range: %v", v)
	}
	return v, nil
}
