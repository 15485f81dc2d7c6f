package session

import (
	"fmt"
	"strings"

	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
)

// Summary is the confirmation shown before a reservation is submitted.
type Summary struct {
	Court   string
	Date    string
	Slot    string
	Players []PlayerLine
}

type PlayerLine struct {
	Name string
	Type string
}

// Summarize resolves the names behind a prepared request.
func (b *Booking) Summarize(req booking.ReservationRequest) Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	summary := Summary{Date: req.Date().Display()}
	for _, court := range b.courts {
		if court.ID == req.CourtID() {
			summary.Court = court.Name
			break
		}
	}
	for _, slot := range b.slots {
		if slot.ID == req.SlotID() {
			summary.Slot = slot.Name
			break
		}
	}
	for _, player := range req.Players() {
		line := PlayerLine{Name: player.Name, Type: player.Type}
		if player.Type == models.PlayerTypeMember {
			line.Name = b.memberNameLocked(player.UserID)
		}
		summary.Players = append(summary.Players, line)
	}
	return summary
}

func (b *Booking) memberNameLocked(id int64) string {
	for _, member := range b.members {
		if member.ID == id {
			return member.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Court: %s\n", s.Court)
	fmt.Fprintf(&sb, "Date: %s\n", s.Date)
	fmt.Fprintf(&sb, "Slot: %s\n", s.Slot)
	sb.WriteString("Players:\n")
	for _, player := range s.Players {
		fmt.Fprintf(&sb, "  %s (%s)\n", player.Name, player.Type)
	}
	return sb.String()
}
