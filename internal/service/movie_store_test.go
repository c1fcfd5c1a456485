package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rentals/internal/model"
	"github.com/iliyamo/movie-rentals/internal/queue"
)

var matrix = MovieInput{Name: "Matrix", Category: "SciFi", Description: "red pill", Price: "9.99"}

func TestMovieStore_MatrixLifecycle(t *testing.T) {
	fx := newStores(t)
	ctx := context.Background()
	a := fx.profile(t, "a@zion.io")
	b := fx.profile(t, "b@zion.io")

	created, err := fx.movies.Create(ctx, a, matrix)
	require.NoError(t, err)

	got, err := fx.movies.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, a.UserID, got.OwnerID)
	assert.True(t, got.IsAvailable)
	assert.Equal(t, 9.99, got.Price)

	err = fx.movies.Delete(ctx, created.ID, b)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = fx.movies.GetByID(ctx, created.ID)
	require.NoError(t, err, "a rejected delete must not remove the movie")

	require.NoError(t, fx.movies.Delete(ctx, created.ID, a))
	_, err = fx.movies.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{queue.MovieCreated, queue.MovieDeleted}, fx.events.types())
}

func TestMovieStore_Update_OnlyOwner(t *testing.T) {
	fx := newStores(t)
	ctx := context.Background()
	a := fx.profile(t, "a@zion.io")
	b := fx.profile(t, "b@zion.io")
	m, err := fx.movies.Create(ctx, a, matrix)
	require.NoError(t, err)

	_, err = fx.movies.Update(ctx, m.ID, b, MovieInput{Name: "Hijacked", Category: "x", Description: "x", Price: "0"})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := fx.movies.Update(ctx, m.ID, a, MovieInput{Name: "Matrix Reloaded", Category: "SciFi", Description: "sequel", Price: "4"})
	require.NoError(t, err)
	assert.Equal(t, a.UserID, updated.OwnerID)
	assert.True(t, updated.IsAvailable)

	stored, err := fx.movies.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Matrix Reloaded", stored.Name)
	assert.Equal(t, 4.0, stored.Price)
	assert.Equal(t, m.CreatedAt, stored.CreatedAt)
}

func TestMovieStore_Update_Missing(t *testing.T) {
	fx := newStores(t)
	a := fx.profile(t, "a@zion.io")

	_, err := fx.movies.Update(context.Background(), 12345, a, matrix)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMovieStore_Create_Validation(t *testing.T) {
	fx := newStores(t)
	a := fx.profile(t, "a@zion.io")

	_, err := fx.movies.Create(context.Background(), a, MovieInput{Name: "", Category: "SciFi", Description: "d", Price: "-1"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
	assert.Empty(t, fx.events.types())
}

func TestMovieStore_GetOwned(t *testing.T) {
	fx := newStores(t)
	ctx := context.Background()
	a := fx.profile(t, "a@zion.io")
	b := fx.profile(t, "b@zion.io")
	m, err := fx.movies.Create(ctx, a, matrix)
	require.NoError(t, err)

	got, err := fx.movies.GetOwned(ctx, m.ID, a)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	got, err = fx.movies.GetOwned(ctx, m.ID, b)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, got)
}

func TestMovieStore_ListByOwner(t *testing.T) {
	fx := newStores(t)
	ctx := context.Background()
	a := fx.profile(t, "a@zion.io")
	b := fx.profile(t, "b@zion.io")
	for _, n := range []string{"Alien", "Brazil"} {
		_, err := fx.movies.Create(ctx, a, MovieInput{Name: n, Category: "c", Description: "d", Price: "1"})
		require.NoError(t, err)
	}
	_, err := fx.movies.Create(ctx, b, matrix)
	require.NoError(t, err)

	got, err := fx.movies.ListByOwner(ctx, a)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alien", got[0].Name)
	assert.Equal(t, "Brazil", got[1].Name)
}

func TestMovieStore_Search_NoQueryReturnsOldestTenAscending(t *testing.T) {
	fx := newStores(t)
	ctx := context.Background()
	a := fx.profile(t, "a@zion.io")
	for i := 0; i < 12; i++ {
		_, err := fx.movies.Create(ctx, a, MovieInput{Name: fmt.Sprintf("Movie %02d", i), Category: "c", Description: "d", Price: "1"})
		require.NoError(t, err)
	}

	for _, q := range []string{"", "   "} {
		got, err := fx.movies.Search(ctx, q)
		require.NoError(t, err)
		require.Len(t, got, SearchLimit)
		assert.Equal(t, "Movie 00", got[0].Name)
		assert.Equal(t, "Movie 09", got[9].Name)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].CreatedAt.Before(got[i].CreatedAt))
		}
	}
}

func TestMovieStore_Search_CaseInsensitiveSubstring(t *testing.T) {
	fx := newStores(t)
	ctx := context.Background()
	a := fx.profile(t, "a@zion.io")
	names := []string{"Batman", "The BAT", "Acrobatics", "Superman", "B-a-t"}
	for _, n := range names {
		_, err := fx.movies.Create(ctx, a, MovieInput{Name: n, Category: "c", Description: "d", Price: "1"})
		require.NoError(t, err)
	}

	got, err := fx.movies.Search(ctx, "bat")
	require.NoError(t, err)

	var found []string
	for _, m := range got {
		found = append(found, m.Name)
	}
	assert.ElementsMatch(t, []string{"Batman", "The BAT", "Acrobatics"}, found)
}

func TestMovieStore_PublishFailureDoesNotFailMutation(t *testing.T) {
	fx := newStores(t)
	fx.events.err = errBroker
	a := fx.profile(t, "a@zion.io")

	m, err := fx.movies.Create(context.Background(), a, matrix)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
}

func TestMovieStore_NilPublisher(t *testing.T) {
	fx := newStores(t)
	store := NewMovieStore(fx.db.Movies, nil, fx.movies.log)
	a := fx.profile(t, "a@zion.io")

	_, err := store.Create(context.Background(), a, matrix)
	assert.NoError(t, err)
}

func TestMovieStore_InvalidatesPagesAfterEachMutation(t *testing.T) {
	fx := newStores(t)
	pages := &countingInvalidator{}
	fx.movies.SetPageInvalidator(pages)
	ctx := context.Background()
	a := fx.profile(t, "a@zion.io")
	b := fx.profile(t, "b@zion.io")

	m, err := fx.movies.Create(ctx, a, matrix)
	require.NoError(t, err)
	assert.Equal(t, 1, pages.count())

	_, err = fx.movies.Update(ctx, m.ID, a, MovieInput{Name: "Matrix 2", Category: "SciFi", Description: "d", Price: "3"})
	require.NoError(t, err)
	assert.Equal(t, 2, pages.count())

	_, err = fx.movies.Create(ctx, a, MovieInput{Name: "", Price: "-1"})
	require.Error(t, err)
	require.ErrorIs(t, fx.movies.Delete(ctx, m.ID, b), ErrNotFound)
	assert.Equal(t, 2, pages.count(), "rejected mutations leave the cache alone")

	require.NoError(t, fx.movies.Delete(ctx, m.ID, a))
	assert.Equal(t, 3, pages.count())
}

func TestMovieStore_InvalidationFailureDoesNotFailMutation(t *testing.T) {
	fx := newStores(t)
	pages := &countingInvalidator{err: errBroker}
	fx.movies.SetPageInvalidator(pages)
	a := fx.profile(t, "a@zion.io")

	m, err := fx.movies.Create(context.Background(), a, matrix)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, 1, pages.count())
	assert.Equal(t, []string{queue.MovieCreated}, fx.events.types())
}

func TestAssertOwner(t *testing.T) {
	m := &model.Movie{ID: 1, OwnerID: 7}

	assert.NoError(t, AssertOwner(m, &model.Profile{UserID: 7}))
	assert.ErrorIs(t, AssertOwner(m, &model.Profile{UserID: 8}), ErrNotOwner)
	assert.ErrorIs(t, AssertOwner(m, nil), ErrNotFound)
}
