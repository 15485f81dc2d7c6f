package booking

import (
	"slices"
	"strings"

	"github.com/codr1/quadras/internal/models"
)

// SlotView is a slot template resolved for one calendar date.
type SlotView struct {
	ID        int64
	Name      string
	StartTime string
	Reserved  bool
}

// ResolveAvailableSlots returns the active templates of the date's weekday,
// ordered by start time, each flagged as reserved when an existing
// reservation of the court on that date already holds it. An invalid date
// yields nil.
func ResolveAvailableSlots(courtID int64, isoDate string, templates []models.SlotTemplate, reservations []models.Reservation) []SlotView {
	date, err := ParseDate(isoDate)
	if err != nil {
		return nil
	}
	code := date.BackendWeekday()

	candidates := make([]models.SlotTemplate, 0, len(templates))
	for _, tpl := range templates {
		if !tpl.Active || tpl.Weekday != code {
			continue
		}
		if tpl.CourtID != 0 && courtID != 0 && tpl.CourtID != courtID {
			continue
		}
		candidates = append(candidates, tpl)
	}
	// HH:MM is zero padded, so string order is time order.
	slices.SortStableFunc(candidates, func(a, b models.SlotTemplate) int {
		return strings.Compare(a.StartTime, b.StartTime)
	})

	taken := reservedSlotIDs(courtID, isoDate, reservations)
	views := make([]SlotView, 0, len(candidates))
	for _, tpl := range candidates {
		_, reserved := taken[tpl.ID]
		views = append(views, SlotView{
			ID:        tpl.ID,
			Name:      tpl.Name,
			StartTime: tpl.StartTime,
			Reserved:  reserved,
		})
	}
	return views
}

// IsSlotReserved reports whether slotID is held by one of the reservations
// of the court on isoDate.
func IsSlotReserved(courtID int64, isoDate string, slotID int64, reservations []models.Reservation) bool {
	for _, reservation := range reservations {
		if reservation.SlotID == slotID && reservationApplies(reservation, courtID, isoDate) {
			return true
		}
	}
	return false
}

func reservedSlotIDs(courtID int64, isoDate string, reservations []models.Reservation) map[int64]struct{} {
	taken := make(map[int64]struct{}, len(reservations))
	for _, reservation := range reservations {
		if reservationApplies(reservation, courtID, isoDate) {
			taken[reservation.SlotID] = struct{}{}
		}
	}
	return taken
}

// reservationApplies treats a missing court or date on the reservation as a
// match, since the listing it came from is already scoped to court and date.
// Only the calendar part of the reservation date is compared, so timestamps
// such as 2025-03-10T00:00:00.000Z still match.
func reservationApplies(reservation models.Reservation, courtID int64, isoDate string) bool {
	if reservation.CourtID != 0 && courtID != 0 && reservation.CourtID != courtID {
		return false
	}
	if date := calendarPart(reservation.Date); date != "" && date != isoDate {
		return false
	}
	return true
}

const isoDateLen = len("2006-01-02")

// calendarPart returns the leading YYYY-MM-DD of value when it has one, and
// the trimmed value otherwise.
func calendarPart(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > isoDateLen && IsISODate(value[:isoDateLen]) {
		return value[:isoDateLen]
	}
	return value
}
