package booking

import (
	"strings"

	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/models"
)

const (
	ReasonFilterRequired = "select at least one filter to search reservations"
	ReasonInvalidDate    = "date must be YYYY-MM-DD"
)

// ListingFilter scopes a reservation search to what user may see. Admins
// search by any combination of court, user and date but must set at least
// one; members always see their own reservations, optionally by date.
func ListingFilter(user *authz.AuthUser, filter models.ReservationFilter) (models.ReservationFilter, error) {
	if err := authz.RequireUser(user); err != nil {
		return models.ReservationFilter{}, err
	}

	filter.Date = strings.TrimSpace(filter.Date)
	if filter.Date != "" && !IsISODate(filter.Date) {
		return models.ReservationFilter{}, NewError(InputIncomplete, ReasonInvalidDate, nil)
	}

	if user.IsAdmin() {
		if filter.IsEmpty() {
			return models.ReservationFilter{}, NewError(InputIncomplete, ReasonFilterRequired, nil)
		}
		return filter, nil
	}
	return models.ReservationFilter{UserID: user.ID, Date: filter.Date}, nil
}
