// internal/api/courts/handlers.go
package courts

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/api/apiutil"
	"github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
)

var queries *db.Queries

const courtsQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries) {
	queries = q
}

// GET /api/quadras
func HandleListCourts(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if apiutil.RequireUser(w, r) == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	rows, err := q.ListCourts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load courts")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load courts")
		return
	}

	courts := make([]models.Court, 0, len(rows))
	for _, row := range rows {
		courts = append(courts, models.Court{ID: row.ID, Name: row.Name})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, courts); err != nil {
		logger.Error().Err(err).Msg("Failed to write courts response")
	}
}

// GET /api/quadra-horarios/{courtId}
func HandleListSlotTemplates(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if apiutil.RequireUser(w, r) == nil {
		return
	}

	courtID, err := apiutil.PathID(r, "courtId")
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	if _, err := q.GetCourt(ctx, courtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "court not found")
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load court")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load court")
		return
	}

	rows, err := q.ListSlotTemplatesByCourt(ctx, courtID)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load slot templates")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load time slots")
		return
	}

	templates := make([]models.SlotTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, SlotTemplateFromRow(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, templates); err != nil {
		logger.Error().Err(err).Msg("Failed to write slot templates response")
	}
}

func SlotTemplateFromRow(row db.SlotTemplate) models.SlotTemplate {
	return models.SlotTemplate{
		ID:        row.ID,
		CourtID:   row.CourtID,
		Name:      row.Name,
		Weekday:   int(row.Weekday),
		StartTime: row.StartTime,
		Active:    row.Active,
	}
}

func loadQueries() *db.Queries {
	return queries
}
