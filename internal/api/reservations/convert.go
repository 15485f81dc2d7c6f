package reservations

import (
	"context"
	"database/sql"
	"strings"

	"github.com/codr1/quadras/internal/booking"
	appdb "github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
)

func reservationFromRow(row appdb.Reservation) models.Reservation {
	return models.Reservation{
		ID:      row.ID,
		CourtID: row.CourtID,
		SlotID:  row.SlotID,
		Date:    row.Date,
		UserID:  row.UserID,
	}
}

func withPlayers(ctx context.Context, q *appdb.Queries, reservation models.Reservation) (models.Reservation, error) {
	rows, err := q.ListReservationPlayers(ctx, reservation.ID)
	if err != nil {
		return reservation, err
	}
	reservation.Players = make([]models.ReservationPlayer, 0, len(rows))
	for _, row := range rows {
		reservation.Players = append(reservation.Players, playerFromRow(row))
	}
	return reservation, nil
}

func playerFromRow(row appdb.ReservationPlayer) models.ReservationPlayer {
	player := models.ReservationPlayer{Type: row.Type}
	switch row.Type {
	case models.PlayerTypeMember:
		player.UserID = row.UserID.Int64
	case models.PlayerTypeGuest:
		paid := row.FeePaid
		player.Name = row.Name.String
		player.FeePaid = &paid
	}
	return player
}

// playerParams stores guests as paid, matching what clients always send.
func playerParams(reservationID, position int64, entry booking.PlayerEntry) appdb.AddReservationPlayerParams {
	params := appdb.AddReservationPlayerParams{ReservationID: reservationID, Position: position}
	switch e := entry.(type) {
	case booking.Member:
		params.Type = models.PlayerTypeMember
		params.UserID = sql.NullInt64{Int64: e.MemberID, Valid: true}
	case booking.Guest:
		params.Type = models.PlayerTypeGuest
		params.Name = sql.NullString{String: strings.TrimSpace(e.Name), Valid: true}
		params.FeePaid = true
	}
	return params
}

func playerFromParams(params appdb.AddReservationPlayerParams) models.ReservationPlayer {
	return playerFromRow(appdb.ReservationPlayer{
		ReservationID: params.ReservationID,
		Position:      params.Position,
		Type:          params.Type,
		UserID:        params.UserID,
		Name:          params.Name,
		FeePaid:       params.FeePaid,
	})
}

func searchParams(filter models.ReservationFilter) appdb.SearchReservationsParams {
	var params appdb.SearchReservationsParams
	if filter.CourtID > 0 {
		params.CourtID = sql.NullInt64{Int64: filter.CourtID, Valid: true}
	}
	if filter.UserID > 0 {
		params.UserID = sql.NullInt64{Int64: filter.UserID, Valid: true}
	}
	if filter.Date != "" {
		params.Date = sql.NullString{String: filter.Date, Valid: true}
	}
	return params
}
