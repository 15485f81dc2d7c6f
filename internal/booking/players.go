package booking

import (
	"strings"

	"github.com/codr1/quadras/internal/models"
)

// MaxPlayers is the most players one reservation may carry.
const MaxPlayers = 3

// PlayerEntry is either a Member or a Guest.
type PlayerEntry interface {
	playerEntry()
}

// Member references an existing user. A zero MemberID is an unfilled row.
type Member struct {
	MemberID int64
}

// Guest is a free-text player. FeePaid is informational; reservations
// always record guests as paid.
type Guest struct {
	Name    string
	FeePaid bool
}

func (Member) playerEntry() {}
func (Guest) playerEntry()  {}

// IsComplete reports whether entry is filled in enough to be submitted.
func IsComplete(entry PlayerEntry) bool {
	switch e := entry.(type) {
	case Member:
		return e.MemberID > 0
	case Guest:
		return strings.TrimSpace(e.Name) != ""
	default:
		return false
	}
}

// CompleteEntries drops unfilled rows, keeping relative order.
func CompleteEntries(entries []PlayerEntry) []PlayerEntry {
	complete := make([]PlayerEntry, 0, len(entries))
	for _, entry := range entries {
		if IsComplete(entry) {
			complete = append(complete, entry)
		}
	}
	return complete
}

// EntryFromPlayer converts a wire player back into an entry. Unknown kinds
// return false.
func EntryFromPlayer(player models.ReservationPlayer) (PlayerEntry, bool) {
	switch player.Type {
	case models.PlayerTypeMember:
		return Member{MemberID: player.UserID}, true
	case models.PlayerTypeGuest:
		return Guest{Name: player.Name, FeePaid: player.FeePaid != nil && *player.FeePaid}, true
	default:
		return nil, false
	}
}

func toPlayer(entry PlayerEntry) models.ReservationPlayer {
	switch e := entry.(type) {
	case Member:
		return models.ReservationPlayer{Type: models.PlayerTypeMember, UserID: e.MemberID}
	case Guest:
		paid := true
		return models.ReservationPlayer{
			Type:    models.PlayerTypeGuest,
			Name:    strings.TrimSpace(e.Name),
			FeePaid: &paid,
		}
	default:
		panic("booking: unhandled player entry type")
	}
}
