package session

import (
	"context"

	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
)

type ReservationSearcher interface {
	SearchReservations(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error)
}

// SearchReservations scopes filter with booking.ListingFilter before
// calling the backend, so an unscoped admin search never leaves the client.
func SearchReservations(ctx context.Context, searcher ReservationSearcher, user *authz.AuthUser, filter models.ReservationFilter) ([]models.Reservation, error) {
	scoped, err := booking.ListingFilter(user, filter)
	if err != nil {
		return nil, err
	}
	return searcher.SearchReservations(ctx, scoped)
}
