package booking

import (
	"encoding/json"

	"github.com/codr1/quadras/internal/models"
)

// ReservationRequest is a validated reservation ready for submission. It
// cannot be changed after BuildRequest returns it.
type ReservationRequest struct {
	courtID int64
	slotID  int64
	date    Date
	players []models.ReservationPlayer
}

// BuildRequest normalizes the player entries into a reservation request.
// Incomplete entries are dropped. Player count and duplicate booking rules
// are the validator's job and must be checked first.
func BuildRequest(courtID, slotID int64, isoDate string, entries []PlayerEntry) (ReservationRequest, error) {
	if courtID <= 0 {
		return ReservationRequest{}, NewError(InputIncomplete, ReasonSelectCourtAndDate, nil)
	}
	date, err := ParseDate(isoDate)
	if err != nil {
		return ReservationRequest{}, NewError(InputIncomplete, ReasonSelectCourtAndDate, err)
	}
	if slotID <= 0 {
		return ReservationRequest{}, NewError(InputIncomplete, ReasonSelectSlot, nil)
	}

	complete := CompleteEntries(entries)
	players := make([]models.ReservationPlayer, 0, len(complete))
	for _, entry := range complete {
		players = append(players, toPlayer(entry))
	}

	return ReservationRequest{
		courtID: courtID,
		slotID:  slotID,
		date:    date,
		players: players,
	}, nil
}

func (r ReservationRequest) CourtID() int64 { return r.courtID }
func (r ReservationRequest) SlotID() int64  { return r.slotID }
func (r ReservationRequest) Date() Date     { return r.date }

// Players returns a copy of the normalized players.
func (r ReservationRequest) Players() []models.ReservationPlayer {
	players := make([]models.ReservationPlayer, len(r.players))
	copy(players, r.players)
	return players
}

// Payload returns the wire form of the request.
func (r ReservationRequest) Payload() models.ReservationPayload {
	return models.ReservationPayload{
		CourtID: r.courtID,
		SlotID:  r.slotID,
		Date:    r.date.String(),
		Players: r.Players(),
	}
}

func (r ReservationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload())
}
