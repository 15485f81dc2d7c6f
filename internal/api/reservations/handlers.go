// internal/api/reservations/handlers.go
package reservations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/api/apiutil"
	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/booking"
	appdb "github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
)

var store *appdb.DB

const reservationQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	store = database
}

// GET /api/agendamentos?quadraId=...&data=...
func HandleListReservations(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if apiutil.RequireUser(w, r) == nil {
		return
	}

	courtID, err := apiutil.OptionalInt64Query(r, "quadraId")
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}
	date, err := apiutil.OptionalDateQuery(r, "data")
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}
	if courtID == 0 || date == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "quadraId and data are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	rows, err := database.Queries.ListReservationsByCourtDate(ctx, appdb.ListReservationsByCourtDateParams{
		CourtID: courtID,
		Date:    date,
	})
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Str("date", date).Msg("Failed to list reservations")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load reservations")
		return
	}

	result := make([]models.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation, err := withPlayers(ctx, database.Queries, reservationFromRow(row))
		if err != nil {
			logger.Error().Err(err).Int64("reservation_id", row.ID).Msg("Failed to load reservation players")
			apiutil.WriteError(w, http.StatusInternalServerError, "failed to load reservations")
			return
		}
		result = append(result, reservation)
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write reservations response")
	}
}

// POST /api/reservas
func HandleCreateReservation(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}

	var payload models.ReservationPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	var created models.Reservation
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		entries, err := checkReservation(ctx, txdb.Queries, payload)
		if err != nil {
			return err
		}

		row, err := txdb.Queries.CreateReservation(ctx, appdb.CreateReservationParams{
			CourtID: payload.CourtID,
			SlotID:  payload.SlotID,
			Date:    payload.Date,
			UserID:  user.ID,
		})
		if err != nil {
			if appdb.IsUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: booking.ReasonSlotReserved, Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to create reservation", Err: err}
		}
		created = reservationFromRow(row)

		for i, entry := range entries {
			params := playerParams(row.ID, int64(i+1), entry)
			if err := txdb.Queries.AddReservationPlayer(ctx, params); err != nil {
				return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to add reservation player", Err: err}
			}
			created.Players = append(created.Players, playerFromParams(params))
		}
		return nil
	})
	if err != nil {
		var herr apiutil.HandlerError
		if errors.As(err, &herr) && herr.Status < http.StatusInternalServerError {
			logger.Info().
				Int64("court_id", payload.CourtID).
				Int64("slot_id", payload.SlotID).
				Str("date", payload.Date).
				Str("reason", herr.Message).
				Msg("Reservation rejected")
		}
		apiutil.WriteHandlerError(w, r, err)
		return
	}

	logger.Info().
		Int64("reservation_id", created.ID).
		Int64("court_id", created.CourtID).
		Int64("slot_id", created.SlotID).
		Str("date", created.Date).
		Int("players", len(created.Players)).
		Msg("Reservation created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("reservation_id", created.ID).Msg("Failed to write reservation response")
	}
}

// GET /api/reservas-admin?quadraId=...&usuarioId=...&data=...
func HandleSearchReservations(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}

	var filter models.ReservationFilter
	var err error
	if filter.CourtID, err = apiutil.OptionalInt64Query(r, "quadraId"); err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}
	if filter.UserID, err = apiutil.OptionalInt64Query(r, "usuarioId"); err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}
	if filter.Date, err = apiutil.OptionalDateQuery(r, "data"); err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}

	scoped, err := booking.ListingFilter(user, filter)
	if err != nil {
		if errors.Is(err, authz.ErrUnauthenticated) {
			apiutil.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	rows, err := database.Queries.SearchReservations(ctx, searchParams(scoped))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to search reservations")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to search reservations")
		return
	}

	result := make([]models.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation := reservationFromRow(row.Reservation)
		reservation.Court = &models.NamedRef{Name: row.CourtName}
		reservation.Slot = &models.NamedRef{Name: row.SlotName}
		reservation.User = &models.NamedRef{Name: row.UserName}
		reservation, err = withPlayers(ctx, database.Queries, reservation)
		if err != nil {
			logger.Error().Err(err).Int64("reservation_id", row.ID).Msg("Failed to load reservation players")
			apiutil.WriteError(w, http.StatusInternalServerError, "failed to search reservations")
			return
		}
		result = append(result, reservation)
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write reservation search response")
	}
}

// checkReservation is the authoritative version of the client-side checks.
// It returns the complete player entries in submission order.
func checkReservation(ctx context.Context, q *appdb.Queries, payload models.ReservationPayload) ([]booking.PlayerEntry, error) {
	date, err := booking.ParseDate(payload.Date)
	if err != nil {
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "data must be a YYYY-MM-DD date"}
	}
	payload.Date = date.String()

	entries := make([]booking.PlayerEntry, 0, len(payload.Players))
	for _, player := range payload.Players {
		entry, ok := booking.EntryFromPlayer(player)
		if !ok {
			return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("unknown player type %q", player.Type)}
		}
		entries = append(entries, entry)
	}

	var existing []appdb.Reservation
	if payload.CourtID > 0 {
		existing, err = q.ListReservationsByCourtDate(ctx, appdb.ListReservationsByCourtDateParams{
			CourtID: payload.CourtID,
			Date:    payload.Date,
		})
		if err != nil {
			return nil, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to check availability", Err: err}
		}
	}
	reservations := make([]models.Reservation, 0, len(existing))
	for _, row := range existing {
		reservations = append(reservations, reservationFromRow(row))
	}

	verdict := booking.Validate(booking.State{
		CourtID:      payload.CourtID,
		Date:         payload.Date,
		SlotID:       payload.SlotID,
		Players:      entries,
		Reservations: reservations,
	})
	if !verdict.Valid {
		status := http.StatusBadRequest
		if verdict.Reason == booking.ReasonSlotReserved {
			status = http.StatusConflict
		}
		return nil, apiutil.HandlerError{Status: status, Message: verdict.Reason}
	}

	slot, err := q.GetSlotTemplate(ctx, payload.SlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apiutil.HandlerError{Status: http.StatusNotFound, Message: "time slot not found"}
		}
		return nil, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to load time slot", Err: err}
	}
	switch {
	case slot.CourtID != payload.CourtID:
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "time slot does not belong to this court"}
	case !slot.Active:
		return nil, apiutil.HandlerError{Status: http.StatusConflict, Message: "time slot is not active"}
	case int(slot.Weekday) != date.BackendWeekday():
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "time slot is not offered on this date"}
	}

	complete := booking.CompleteEntries(entries)
	seen := make(map[int64]bool, len(complete))
	for _, entry := range complete {
		member, ok := entry.(booking.Member)
		if !ok {
			continue
		}
		if seen[member.MemberID] {
			return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("member %d listed twice", member.MemberID)}
		}
		seen[member.MemberID] = true
		if _, err := q.GetUser(ctx, member.MemberID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("member %d not found", member.MemberID)}
			}
			return nil, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to load member", Err: err}
		}
	}
	return complete, nil
}

func loadDB() *appdb.DB {
	return store
}
