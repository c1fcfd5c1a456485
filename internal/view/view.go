// Package view renders the HTML pages from templates embedded in the
// binary.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/model"
)

//go:embed templates/*.html
var files embed.FS

const layoutFile = "templates/layout.html"

// Page names.
const (
	Index         = "index"
	ProfileDetail = "profile_detail"
	ProfileUpdate = "profile_update"
	MovieCreate   = "movie_create"
	MovieUpdate   = "movie_update"
	MovieDelete   = "movie_delete"
	MovieDetail   = "movie_detail"
	Login         = "login"
	Signup        = "signup"
	Error         = "error"
)

// Page is the data every template receives.
type Page struct {
	Title    string
	SignedIn bool
	Profile  *model.Profile
	Movie    *model.Movie
	Movies   []*model.Movie
	Fields   []FormField
	Errors   form.Errors // errors not tied to a field live under ""
	Query    string
	Email    string
	Next     string
	Status   int
	Message  string
}

// FormField is a form.Field with the value and error to show.
type FormField struct {
	form.Field
	Value string
	Error string
}

// Fields pairs each field with its submitted value and error message.
func Fields(fields []form.Field, values map[string]string, errs form.Errors) []FormField {
	out := make([]FormField, len(fields))
	for i, f := range fields {
		out[i] = FormField{Field: f, Value: values[f.Name], Error: errs[f.Name]}
	}
	return out
}

// ProfileValues returns the editable values of p.
func ProfileValues(p *model.Profile) map[string]string {
	return map[string]string{"name": p.Name, "phone_number": p.PhoneNumber, "city": p.City}
}

// MovieValues returns the editable values of m.
func MovieValues(m *model.Movie) map[string]string {
	return map[string]string{
		"name":        m.Name,
		"category":    m.Category,
		"description": m.Description,
		"price":       FormatPrice(m.Price),
	}
}

// FormatPrice renders a price with two decimals.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

var funcs = template.FuncMap{
	"price": FormatPrice,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}

// Renderer implements echo.Renderer over the embedded templates.  Each page
// is parsed together with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page.
func New() (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, file := range names {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(files, layoutFile, file)
		if err != nil {
			return nil, errors.Wrapf(err, "parse template %s", name)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the named page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
