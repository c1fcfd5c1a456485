package service

import "github.com/iliyamo/movie-rentals/internal/model"

// AssertOwner returns ErrNotOwner unless acting is the recorded owner of m.
func AssertOwner(m *model.Movie, acting *model.Profile) error {
	if m == nil || acting == nil || m.OwnerID != acting.UserID {
		return ErrNotOwner
	}
	return nil
}
