package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/db"
)

const purgeJobName = "purge_old_reservations"

// PurgeReservations deletes reservations dated more than retentionDays
// before now. A non-positive retention keeps everything.
func PurgeReservations(ctx context.Context, database *db.DB, now time.Time, retentionDays int) (int64, error) {
	if database == nil {
		return 0, fmt.Errorf("reservation purge requires database")
	}
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := now.AddDate(0, 0, -retentionDays).Format(time.DateOnly)
	deleted, err := database.Queries.DeleteReservationsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete reservations before %s: %w", cutoff, err)
	}
	if deleted > 0 {
		log.Ctx(ctx).Info().
			Int64("deleted", deleted).
			Str("cutoff", cutoff).
			Msg("Purged old reservations")
	}
	return deleted, nil
}

// RegisterHousekeeping adds the reservation purge job.
func RegisterHousekeeping(s *Service, database *db.DB, cronExpr string, retentionDays int) error {
	if retentionDays <= 0 {
		log.Info().Msg("Reservation purge disabled")
		return nil
	}
	_, err := s.AddJob(purgeJobName, cronExpr, func(ctx context.Context) error {
		_, err := PurgeReservations(ctx, database, time.Now(), retentionDays)
		return err
	})
	return err
}
