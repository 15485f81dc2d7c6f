// internal/models/models.go
package models

import (
	"encoding/json"
	"strings"
)

// User types understood by the booking service.
const (
	UserTypeMember = "socio"
	UserTypeAdmin  = "admin"
)

// Player kinds on the wire.
const (
	PlayerTypeMember = "socio"
	PlayerTypeGuest  = "visitante"
)

type Court struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
	Type  string `json:"tipo"`
}

// UserForm is the payload for registering or editing a user. Password is
// only sent on registration.
type UserForm struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha,omitempty"`
	Type     string `json:"tipo"`
}

// SlotTemplate is a recurring weekly time window of a court. Weekday uses
// the backend convention: 1=Monday .. 7=Sunday. ID is the slot id that
// reservations reference and that is posted as horarioId.
type SlotTemplate struct {
	ID        int64  `json:"id"`
	CourtID   int64  `json:"quadra_id,omitempty"`
	Name      string `json:"nome"`
	Weekday   int    `json:"dia_semana"`
	StartTime string `json:"hora_inicio"`
	Active    bool   `json:"ativo"`
}

// UnmarshalJSON prefers horarioId, then horario_id, over id. Backends that
// send both use id as a row key of the court/slot link, not as the slot.
func (s *SlotTemplate) UnmarshalJSON(data []byte) error {
	type plain SlotTemplate
	var aux struct {
		plain
		HorarioID    *int64 `json:"horarioId"`
		HorarioIDAlt *int64 `json:"horario_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = SlotTemplate(aux.plain)
	switch {
	case aux.HorarioID != nil && *aux.HorarioID != 0:
		s.ID = *aux.HorarioID
	case aux.HorarioIDAlt != nil && *aux.HorarioIDAlt != 0:
		s.ID = *aux.HorarioIDAlt
	}
	return nil
}

// ReservationPlayer is one player line of a reservation as sent to and
// returned by the backend.
type ReservationPlayer struct {
	Type    string `json:"tipo"`
	UserID  int64  `json:"usuarioId,omitempty"`
	Name    string `json:"nome,omitempty"`
	FeePaid *bool  `json:"taxaPaga,omitempty"`
}

// ReservationPayload is the body of POST /api/reservas.
type ReservationPayload struct {
	CourtID int64               `json:"quadraId"`
	SlotID  int64               `json:"horarioId"`
	Date    string              `json:"data"`
	Players []ReservationPlayer `json:"acompanhantes"`
}

type NamedRef struct {
	Name string `json:"nome"`
}

// Reservation is an existing booking of one slot template on one date. The
// named references are only filled by the listing endpoint.
type Reservation struct {
	ID      int64               `json:"id"`
	CourtID int64               `json:"quadraId"`
	SlotID  int64               `json:"horarioId"`
	Date    string              `json:"data"`
	UserID  int64               `json:"usuarioId,omitempty"`
	Players []ReservationPlayer `json:"jogadores,omitempty"`
	Court   *NamedRef           `json:"Quadra,omitempty"`
	Slot    *NamedRef           `json:"Horario,omitempty"`
	User    *NamedRef           `json:"Usuario,omitempty"`
}

// ReservationFilter narrows the reservation listing. Zero values are unset.
type ReservationFilter struct {
	CourtID int64
	UserID  int64
	Date    string
}

func (f ReservationFilter) IsEmpty() bool {
	return f.CourtID == 0 && f.UserID == 0 && strings.TrimSpace(f.Date) == ""
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the failure body of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
