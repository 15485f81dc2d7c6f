package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
	"github.com/codr1/quadras/internal/session"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{name: "login", summary: "log in and save the session token", run: runLogin},
	{name: "logout", summary: "forget the saved session token", run: runLogout},
	{name: "courts", summary: "list courts", run: runCourts},
	{name: "slots", summary: "list the time slots of a court on a date", run: runSlots},
	{name: "reserve", summary: "reserve a time slot", run: runReserve},
	{name: "reservations", summary: "search reservations", run: runReservations},
	{name: "users", summary: "manage users (administrators)", run: runUsers},
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login", "[-email EMAIL] [-password PASSWORD]")
	email := fs.String("email", "", "account e-mail (prompted when empty)")
	password := fs.String("password", "", "account password (prompted when empty)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.prompt("E-mail: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompt("Password: "); err != nil {
			return err
		}
	}
	if *email == "" || *password == "" {
		return booking.NewError(booking.InputIncomplete, "e-mail and password are required", nil)
	}

	token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	user, err := authz.UserFromToken(token)
	if err != nil {
		return fmt.Errorf("login returned an unusable token: %w", err)
	}
	if err := a.tokens.Save(token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Name, user.Type)
	return nil
}

func runLogout(_ context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "logout", "")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func runCourts(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "courts", "")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if _, err := a.authenticate(); err != nil {
		return err
	}

	courts, err := a.client.ListCourts(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME")
	for _, court := range courts {
		fmt.Fprintf(w, "%d\t%s\n", court.ID, court.Name)
	}
	return w.Flush()
}

func runSlots(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "slots", "-court ID -date DATE")
	courtID := fs.Int64("court", 0, "court id")
	dateFlag := fs.String("date", "", "date as YYYY-MM-DD, DD/MM/YYYY or today")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	date, err := normalizeDate(*dateFlag, time.Now())
	if err != nil {
		return err
	}
	if *courtID <= 0 || date == "" {
		return booking.NewError(booking.InputIncomplete, booking.ReasonSelectCourtAndDate, nil)
	}
	if _, err := a.authenticate(); err != nil {
		return err
	}

	flow := session.NewBooking(a.client)
	flow.SelectCourt(*courtID)
	slots, err := flow.SelectDate(ctx, date)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(a.out, "No time slots on this date")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tSLOT\tSTART\tSTATUS")
	for _, slot := range slots {
		status := "free"
		if slot.Reserved {
			status = "reserved"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", slot.ID, slot.Name, slot.StartTime, status)
	}
	return w.Flush()
}

func runReserve(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "reserve", "-court ID -date DATE -slot ID [-member ID]... [-guest NAME]... [-yes]")
	courtID := fs.Int64("court", 0, "court id")
	dateFlag := fs.String("date", "", "date as YYYY-MM-DD, DD/MM/YYYY or today")
	slotID := fs.Int64("slot", 0, "time slot id, as listed by the slots command")
	var members int64List
	fs.Var(&members, "member", "member id of a player (repeatable)")
	var guests stringList
	fs.Var(&guests, "guest", "name of a guest player (repeatable)")
	yes := fs.Bool("yes", false, "submit without asking for confirmation")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	date, err := normalizeDate(*dateFlag, time.Now())
	if err != nil {
		return err
	}
	if _, err := a.authenticate(); err != nil {
		return err
	}

	flow := session.NewBooking(a.client)
	if err := flow.Load(ctx); err != nil {
		return err
	}
	flow.SelectCourt(*courtID)
	if *courtID > 0 && date != "" {
		if _, err := flow.SelectDate(ctx, date); err != nil {
			return err
		}
		if *slotID > 0 {
			if err := selectSlot(flow, *slotID, date); err != nil {
				return err
			}
		}
	}
	if err := fillPlayers(flow, members, guests); err != nil {
		return err
	}

	req, err := flow.Prepare()
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, flow.Summarize(req).String())
	if !*yes {
		ok, err := a.confirm("Confirm reservation?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Reservation not submitted")
			return nil
		}
	}

	if err := flow.Submit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Reservation confirmed")
	return nil
}

func selectSlot(flow *session.Booking, slotID int64, date string) error {
	for _, slot := range flow.Slots() {
		if slot.ID == slotID {
			return flow.SelectSlot(slotID)
		}
	}
	return booking.NewError(booking.InputIncomplete, fmt.Sprintf("time slot %d is not offered on %s", slotID, date), nil)
}

// fillPlayers puts members first, then guests. The first one replaces the
// blank row a new flow starts with.
func fillPlayers(flow *session.Booking, members []int64, guests []string) error {
	entries := make([]booking.PlayerEntry, 0, len(members)+len(guests))
	for _, id := range members {
		entries = append(entries, booking.Member{MemberID: id})
	}
	for _, name := range guests {
		entries = append(entries, booking.Guest{Name: name, FeePaid: true})
	}
	for i, entry := range entries {
		if i == 0 {
			if err := flow.SetPlayer(0, entry); err != nil {
				return err
			}
			continue
		}
		flow.AddPlayer(entry)
	}
	return nil
}

func runReservations(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "reservations", "[-court ID] [-user ID] [-date DATE]")
	courtID := fs.Int64("court", 0, "court id (administrators)")
	userID := fs.Int64("user", 0, "user id (administrators)")
	dateFlag := fs.String("date", "", "date as YYYY-MM-DD, DD/MM/YYYY or today")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	date, err := normalizeDate(*dateFlag, time.Now())
	if err != nil {
		return err
	}
	user, err := a.authenticate()
	if err != nil {
		return err
	}

	filter := models.ReservationFilter{CourtID: *courtID, UserID: *userID, Date: date}
	reservations, err := session.SearchReservations(ctx, a.client, user, filter)
	if err != nil {
		return err
	}
	if len(reservations) == 0 {
		fmt.Fprintln(a.out, "No reservations found")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tDATE\tCOURT\tSLOT\tBOOKED BY\tPLAYERS")
	for _, r := range reservations {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			displayDate(r.Date),
			refName(r.Court, r.CourtID),
			refName(r.Slot, r.SlotID),
			refName(r.User, r.UserID),
			playerNames(r.Players),
		)
	}
	return w.Flush()
}

func displayDate(iso string) string {
	date, err := booking.ParseDate(iso)
	if err != nil {
		return iso
	}
	return date.Display()
}

func refName(ref *models.NamedRef, id int64) string {
	if ref != nil && ref.Name != "" {
		return ref.Name
	}
	return "#" + strconv.FormatInt(id, 10)
}

func playerNames(players []models.ReservationPlayer) string {
	names := make([]string, 0, len(players))
	for _, player := range players {
		switch {
		case player.Name != "":
			names = append(names, player.Name)
		case player.UserID > 0:
			names = append(names, "#"+strconv.FormatInt(player.UserID, 10))
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
