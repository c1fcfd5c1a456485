package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/model"
)

func render(t *testing.T, name string, data Page) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data, nil))
	return buf.String()
}

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, name := range []string{Index, ProfileDetail, ProfileUpdate, MovieCreate, MovieUpdate, MovieDelete, MovieDetail, Login, Signup, Error} {
		assert.Contains(t, r.pages, name)
	}
	assert.NotContains(t, r.pages, "layout")
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing", Page{}, nil))
}

func TestRender_IndexEscapesQuery(t *testing.T) {
	out := render(t, Index, Page{
		Query:  "<script>",
		Movies: []*model.Movie{{ID: 3, Name: "Batman", Category: "Action", Price: 2.5}},
	})
	assert.Contains(t, out, `href="/movie/3"`)
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestRender_FormShowsValuesAndErrors(t *testing.T) {
	values := map[string]string{"name": "", "category": "SciFi", "description": "d", "price": "abc"}
	errs := form.Errors{"name": "This field is required."}
	out := render(t, MovieCreate, Page{Fields: Fields(form.MovieFields, values, errs), Errors: errs})

	assert.Contains(t, out, "This field is required.")
	assert.Contains(t, out, `value="SciFi"`)
	assert.Contains(t, out, `value="abc"`)
	assert.Contains(t, out, "<textarea")
}

func TestRender_ProfileDetail(t *testing.T) {
	p := &model.Profile{UserID: 1, Name: "Neo", LastActive: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)}
	out := render(t, ProfileDetail, Page{SignedIn: true, Profile: p, Movies: []*model.Movie{{ID: 9, Name: "Matrix"}}})

	assert.Contains(t, out, "Neo")
	assert.Contains(t, out, "2024-05-01 10:30")
	assert.Contains(t, out, `/profile/movie/9/update`)
	assert.Contains(t, out, "Log out")
}

func TestMovieValues(t *testing.T) {
	v := MovieValues(&model.Movie{Name: "Matrix", Category: "SciFi", Description: "d", Price: 9.9})
	assert.Equal(t, "9.90", v["price"])
	assert.Equal(t, "Matrix", v["name"])
}
