// Package session holds the state of one user's booking flow and drives the
// availability engine against the backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
)

var (
	// ErrStaleResponse is returned when the selection changed while a call
	// was in flight. The response has been discarded.
	ErrStaleResponse = errors.New("selection changed while the request was in flight")
	// ErrSubmitInFlight is returned when another reservation is being
	// submitted.
	ErrSubmitInFlight = errors.New("a reservation is already being submitted")
)

// Backend is the part of the booking API the flow needs.
type Backend interface {
	ListCourts(ctx context.Context) ([]models.Court, error)
	ListMembers(ctx context.Context) ([]models.User, error)
	ListSlotTemplates(ctx context.Context, courtID int64) ([]models.SlotTemplate, error)
	ListReservations(ctx context.Context, courtID int64, date string) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, req booking.ReservationRequest) error
}

// selection identifies the court and date the cached slots belong to.
// generation changes whenever either is changed or cleared.
type selection struct {
	courtID    int64
	date       string
	generation uint64
}

func (s selection) flightKey(slotID int64) string {
	return fmt.Sprintf("%d|%s|%d|%d", s.courtID, s.date, slotID, s.generation)
}

// Booking owns the in-progress reservation: selected court, date and slot,
// the player rows and the slots and reservations loaded for them.
type Booking struct {
	backend Backend
	group   singleflight.Group

	mu           sync.Mutex
	courts       []models.Court
	members      []models.User
	courtID      int64
	date         string
	slotID       int64
	players      []booking.PlayerEntry
	slots        []booking.SlotView
	reservations []models.Reservation
	generation   uint64
	flight       string
}

func NewBooking(backend Backend) *Booking {
	return &Booking{
		backend: backend,
		players: blankPlayers(),
	}
}

// A new flow starts with one empty member row.
func blankPlayers() []booking.PlayerEntry {
	return []booking.PlayerEntry{booking.Member{}}
}

// Load fetches courts and members concurrently.
func (b *Booking) Load(ctx context.Context) error {
	var (
		courts  []models.Court
		members []models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courts, err = b.backend.ListCourts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = b.backend.ListMembers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to load courts or members")
		return err
	}

	b.mu.Lock()
	b.courts = courts
	b.members = members
	b.mu.Unlock()
	return nil
}

func (b *Booking) Courts() []models.Court {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Court(nil), b.courts...)
}

func (b *Booking) Members() []models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.User(nil), b.members...)
}

// SelectCourt changes the court and clears the date and everything loaded
// for the previous selection.
func (b *Booking) SelectCourt(courtID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.courtID = courtID
	b.date = ""
	b.clearSlotsLocked()
}

// SelectDate sets the date and loads the slots of the selected court for
// it. Nothing is fetched until a court is selected and the date is a
// complete YYYY-MM-DD value; in that case the result is nil.
func (b *Booking) SelectDate(ctx context.Context, date string) ([]booking.SlotView, error) {
	b.mu.Lock()
	b.date = strings.TrimSpace(date)
	b.clearSlotsLocked()
	key := b.selectionLocked()
	b.mu.Unlock()

	if key.courtID <= 0 || !booking.IsISODate(key.date) {
		return nil, nil
	}
	return b.fetch(ctx, key)
}

// Refresh reloads slots and reservations for the current selection,
// keeping the selected slot and players.
func (b *Booking) Refresh(ctx context.Context) ([]booking.SlotView, error) {
	b.mu.Lock()
	key := b.selectionLocked()
	b.mu.Unlock()

	if key.courtID <= 0 || !booking.IsISODate(key.date) {
		return nil, nil
	}
	return b.fetch(ctx, key)
}

func (b *Booking) fetch(ctx context.Context, key selection) ([]booking.SlotView, error) {
	logger := log.Ctx(ctx).With().Int64("court_id", key.courtID).Str("date", key.date).Logger()

	var (
		templates    []models.SlotTemplate
		reservations []models.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		templates, err = b.backend.ListSlotTemplates(gctx, key.courtID)
		return err
	})
	g.Go(func() error {
		var err error
		reservations, err = b.backend.ListReservations(gctx, key.courtID, key.date)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("Failed to load slots or reservations")
		return nil, err
	}

	slots := booking.ResolveAvailableSlots(key.courtID, key.date, templates, reservations)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selectionLocked() != key {
		logger.Debug().Msg("Discarding slots for a previous selection")
		return nil, ErrStaleResponse
	}
	b.slots = slots
	b.reservations = reservations
	return append([]booking.SlotView(nil), slots...), nil
}

// Slots returns the slots resolved for the current selection.
func (b *Booking) Slots() []booking.SlotView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]booking.SlotView(nil), b.slots...)
}

// SelectSlot picks one of the resolved slots. Reserved slots cannot be
// picked.
func (b *Booking) SelectSlot(slotID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, slot := range b.slots {
		if slot.ID != slotID {
			continue
		}
		if slot.Reserved {
			return booking.NewError(booking.RuleViolation, booking.ReasonSlotReserved, nil)
		}
		b.slotID = slotID
		return nil
	}
	return booking.NewError(booking.InputIncomplete, booking.ReasonSelectSlot, nil)
}

func (b *Booking) ClearSlot() {
	b.mu.Lock()
	b.slotID = 0
	b.mu.Unlock()
}

func (b *Booking) AddPlayer(entry booking.PlayerEntry) {
	b.mu.Lock()
	b.players = append(b.players, entry)
	b.mu.Unlock()
}

func (b *Booking) SetPlayer(index int, entry booking.PlayerEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.players) {
		return fmt.Errorf("player row %d does not exist", index+1)
	}
	b.players[index] = entry
	return nil
}

func (b *Booking) RemovePlayer(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.players) {
		return fmt.Errorf("player row %d does not exist", index+1)
	}
	b.players = append(b.players[:index], b.players[index+1:]...)
	return nil
}

func (b *Booking) Players() []booking.PlayerEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]booking.PlayerEntry(nil), b.players...)
}

// State snapshots what the validator needs.
func (b *Booking) State() booking.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Booking) Validate() booking.Verdict {
	return booking.Validate(b.State())
}

// Prepare validates the flow and builds the request to confirm.
func (b *Booking) Prepare() (booking.ReservationRequest, error) {
	req, _, err := b.prepare()
	return req, err
}

func (b *Booking) prepare() (booking.ReservationRequest, selection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.stateLocked()
	if verdict := booking.Validate(state); !verdict.Valid {
		return booking.ReservationRequest{}, selection{}, verdict.Err()
	}
	req, err := booking.BuildRequest(state.CourtID, state.SlotID, state.Date, state.Players)
	if err != nil {
		return booking.ReservationRequest{}, selection{}, err
	}
	return req, b.selectionLocked(), nil
}

// Submitting reports whether a reservation is in flight.
func (b *Booking) Submitting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flight != ""
}

// Submit validates, builds and sends the reservation. Concurrent calls for
// the same pending reservation share one backend call; a call for a
// different reservation while one is in flight gets ErrSubmitInFlight. On
// success the slot, players and date are cleared. A backend rejection is
// returned as is and leaves the flow untouched so the user can retry.
func (b *Booking) Submit(ctx context.Context) error {
	req, key, err := b.prepare()
	if err != nil {
		return err
	}
	flightKey := key.flightKey(req.SlotID())

	b.mu.Lock()
	busy := b.flight != "" && b.flight != flightKey
	b.mu.Unlock()
	if busy {
		return ErrSubmitInFlight
	}

	_, err, _ = b.group.Do(flightKey, func() (any, error) {
		return nil, b.submit(ctx, key, flightKey, req)
	})
	return err
}

func (b *Booking) submit(ctx context.Context, key selection, flightKey string, req booking.ReservationRequest) error {
	logger := log.Ctx(ctx).With().
		Int64("court_id", req.CourtID()).
		Int64("slot_id", req.SlotID()).
		Str("date", req.Date().String()).
		Logger()

	b.mu.Lock()
	switch {
	case b.selectionLocked() != key:
		b.mu.Unlock()
		return ErrStaleResponse
	case b.flight != "":
		b.mu.Unlock()
		return ErrSubmitInFlight
	}
	b.flight = flightKey
	b.mu.Unlock()

	err := b.backend.CreateReservation(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.flight = ""
	if err != nil {
		logger.Warn().Err(err).Str("kind", booking.KindOf(err).String()).Msg("Reservation not created")
		return err
	}
	logger.Info().Int("players", len(req.Players())).Msg("Reservation created")
	if b.selectionLocked() == key {
		b.date = ""
		b.players = blankPlayers()
		b.clearSlotsLocked()
	}
	return nil
}

// Reset returns the flow to its initial state, keeping loaded courts and
// members.
func (b *Booking) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.courtID = 0
	b.date = ""
	b.players = blankPlayers()
	b.clearSlotsLocked()
}

func (b *Booking) clearSlotsLocked() {
	b.slotID = 0
	b.slots = nil
	b.reservations = nil
	b.generation++
}

func (b *Booking) selectionLocked() selection {
	return selection{courtID: b.courtID, date: b.date, generation: b.generation}
}

func (b *Booking) stateLocked() booking.State {
	return booking.State{
		CourtID:      b.courtID,
		Date:         b.date,
		SlotID:       b.slotID,
		Players:      append([]booking.PlayerEntry(nil), b.players...),
		Reservations: append([]models.Reservation(nil), b.reservations...),
	}
}
