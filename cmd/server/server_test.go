package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codr1/quadras/internal/api/auth"
	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/apiclient"
	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/config"
	"github.com/codr1/quadras/internal/models"
	"github.com/codr1/quadras/internal/ratelimit"
	"github.com/codr1/quadras/internal/session"
	"github.com/codr1/quadras/internal/testutil"
)

const monday = "2024-06-03"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	database := testutil.NewTestDB(t)
	if err := auth.EnsureAdmin(context.Background(), database.Queries, "Root", "root@example.com", "segredo"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	limiter := ratelimit.New(nil)
	t.Cleanup(limiter.Close)

	cfg := config.Default()
	srv := httptest.NewServer(newHandler(cfg, deps{
		database: database,
		issuer:   auth.NewTokenIssuer("0123456789abcdef", time.Hour),
		limiter:  limiter,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *apiclient.Client {
	t.Helper()
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func loginAs(t *testing.T, srv *httptest.Server, email, password string) (*apiclient.Client, *authz.AuthUser) {
	t.Helper()
	client := newClient(t, srv)
	token, err := client.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	user, err := authz.UserFromToken(token)
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	return client, user
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestBookingFlowAgainstServer(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	adminClient, admin := loginAs(t, srv, "root@example.com", "segredo")
	if !admin.IsAdmin() {
		t.Fatalf("bootstrap user should be admin: %+v", admin)
	}
	users, err := session.NewUsers(adminClient, admin)
	if err != nil {
		t.Fatalf("NewUsers: %v", err)
	}
	for _, form := range []models.UserForm{
		{Name: "Ana", Email: "ana@example.com", Password: "segredo", Type: "socio"},
		{Name: "Bia", Email: "bia@example.com", Password: "segredo", Type: "socio"},
	} {
		if err := users.Register(ctx, form); err != nil {
			t.Fatalf("register %s: %v", form.Email, err)
		}
	}

	anaClient, ana := loginAs(t, srv, "ana@example.com", "segredo")
	biaClient, _ := loginAs(t, srv, "bia@example.com", "segredo")
	if ana.IsAdmin() {
		t.Fatalf("member token must not carry admin capability")
	}
	if _, err := session.NewUsers(anaClient, ana); err == nil {
		t.Fatalf("members must not manage users")
	}

	anaFlow := session.NewBooking(anaClient)
	biaFlow := session.NewBooking(biaClient)
	for _, flow := range []*session.Booking{anaFlow, biaFlow} {
		if err := flow.Load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
		flow.SelectCourt(1)
		slots, err := flow.SelectDate(ctx, monday)
		if err != nil {
			t.Fatalf("select date: %v", err)
		}
		if len(slots) != 4 || slots[0].StartTime != "08:00" {
			t.Fatalf("unexpected Monday slots %+v", slots)
		}
		if err := flow.SelectSlot(slots[1].ID); err != nil {
			t.Fatalf("select slot: %v", err)
		}
	}

	if len(anaFlow.Members()) != 2 {
		t.Fatalf("expected 2 members, got %+v", anaFlow.Members())
	}
	if err := anaFlow.SetPlayer(0, booking.Member{MemberID: ana.ID}); err != nil {
		t.Fatalf("set player: %v", err)
	}
	anaFlow.AddPlayer(booking.Guest{Name: "Carla"})
	if err := anaFlow.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Bia chose the same slot before Ana's reservation existed; the server
	// has the final word.
	if err := biaFlow.SetPlayer(0, booking.Guest{Name: "Duda"}); err != nil {
		t.Fatalf("set player: %v", err)
	}
	err = biaFlow.Submit(ctx)
	if !booking.IsKind(err, booking.ServerRejection) || booking.UserMessage(err, "") != booking.ReasonSlotReserved {
		t.Fatalf("expected server rejection %q, got %v", booking.ReasonSlotReserved, err)
	}

	slots, err := biaFlow.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !slots[1].Reserved {
		t.Fatalf("refreshed slot should be reserved: %+v", slots[1])
	}
	if err := biaFlow.SelectSlot(slots[1].ID); !booking.IsKind(err, booking.RuleViolation) {
		t.Fatalf("expected RuleViolation for reserved slot, got %v", err)
	}

	mine, err := session.SearchReservations(ctx, anaClient, ana, models.ReservationFilter{})
	if err != nil {
		t.Fatalf("member listing: %v", err)
	}
	if len(mine) != 1 || len(mine[0].Players) != 2 || mine[0].Court == nil || mine[0].Court.Name != "Quadra 1" {
		t.Fatalf("unexpected member listing %+v", mine)
	}

	if _, err := session.SearchReservations(ctx, adminClient, admin, models.ReservationFilter{}); !booking.IsKind(err, booking.InputIncomplete) {
		t.Fatalf("admin listing without filter: got %v", err)
	}
	all, err := session.SearchReservations(ctx, adminClient, admin, models.ReservationFilter{Date: monday})
	if err != nil || len(all) != 1 {
		t.Fatalf("admin listing = %+v, %v", all, err)
	}
}

func TestRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, HTTPClient: srv.Client(), Token: "garbage"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.ListCourts(context.Background())
	if apiclient.StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if !booking.IsKind(err, booking.ServerRejection) {
		t.Fatalf("expected ServerRejection, got %v", err)
	}
}
