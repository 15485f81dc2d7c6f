package booking

import (
	"strings"

	"github.com/codr1/quadras/internal/models"
)

const (
	ReasonSelectCourtAndDate = "select court and date"
	ReasonSelectSlot         = "select a time slot to reserve"
	ReasonPlayerRequired     = "at least one player is required"
	ReasonTooManyPlayers     = "maximum of 3 players per reservation"
	ReasonSlotReserved       = "slot already reserved"
)

// State is everything the validator looks at. SlotID is zero when no slot
// is selected.
type State struct {
	CourtID      int64
	Date         string
	SlotID       int64
	Players      []PlayerEntry
	Reservations []models.Reservation
}

type Verdict struct {
	Valid  bool
	Reason string
	Kind   Kind
}

// Err returns nil for a valid verdict and a *Error otherwise.
func (v Verdict) Err() error {
	if v.Valid {
		return nil
	}
	return NewError(v.Kind, v.Reason, nil)
}

func pass() Verdict {
	return Verdict{Valid: true}
}

func fail(kind Kind, reason string) Verdict {
	return Verdict{Reason: reason, Kind: kind}
}

// Validate runs the pre-submission checks in a fixed order and reports the
// first one that fails. A valid verdict is advisory: the backend still
// decides.
func Validate(state State) Verdict {
	if state.CourtID <= 0 || strings.TrimSpace(state.Date) == "" {
		return fail(InputIncomplete, ReasonSelectCourtAndDate)
	}
	if state.SlotID <= 0 {
		return fail(InputIncomplete, ReasonSelectSlot)
	}

	complete := CompleteEntries(state.Players)
	if len(complete) == 0 {
		return fail(InputIncomplete, ReasonPlayerRequired)
	}
	if len(complete) > MaxPlayers {
		return fail(RuleViolation, ReasonTooManyPlayers)
	}

	if IsSlotReserved(state.CourtID, state.Date, state.SlotID, state.Reservations) {
		return fail(RuleViolation, ReasonSlotReserved)
	}
	return pass()
}
