package reservations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/codr1/quadras/internal/api/authz"
	appdb "github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
	"github.com/codr1/quadras/internal/testutil"
)

// Seeded templates: ids 1..4 are court 1 on Monday, 5..8 court 1 on Tuesday.
const (
	mondaySlot  = 2
	tuesdaySlot = 5
	monday      = "2024-06-03"
)

type fixture struct {
	database *appdb.DB
	member   *authz.AuthUser
	other    *authz.AuthUser
	admin    *authz.AuthUser
}

func setup(t *testing.T) fixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	prev := store
	t.Cleanup(func() { store = prev })
	InitHandlers(database)

	ana := testutil.CreateUser(t, database, "Ana", "ana@example.com", models.UserTypeMember)
	bia := testutil.CreateUser(t, database, "Bia", "bia@example.com", models.UserTypeMember)
	root := testutil.CreateUser(t, database, "Root", "root@example.com", models.UserTypeAdmin)
	return fixture{
		database: database,
		member:   &authz.AuthUser{ID: ana.ID, Name: ana.Name, Type: ana.Type},
		other:    &authz.AuthUser{ID: bia.ID, Name: bia.Name, Type: bia.Type},
		admin:    &authz.AuthUser{ID: root.ID, Name: root.Name, Type: root.Type},
	}
}

func serve(handler http.HandlerFunc, user *authz.AuthUser, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func TestCreateReservation_Success(t *testing.T) {
	f := setup(t)

	body := `{"quadraId":1,"horarioId":2,"data":"2024-06-03","acompanhantes":[` +
		`{"tipo":"socio","usuarioId":` + itoa(f.other.ID) + `},` +
		`{"tipo":"visitante","nome":"  Carla ","taxaPaga":false}]}`
	rec := serve(HandleCreateReservation, f.member, http.MethodPost, "/api/reservas", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Reservation
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.UserID != f.member.ID || created.SlotID != mondaySlot || len(created.Players) != 2 {
		t.Fatalf("unexpected reservation %+v", created)
	}
	guest := created.Players[1]
	if guest.Name != "Carla" || guest.FeePaid == nil || !*guest.FeePaid {
		t.Fatalf("guest should be stored trimmed and paid, got %+v", guest)
	}

	list := serve(HandleListReservations, f.member, http.MethodGet, "/api/agendamentos?quadraId=1&data="+monday, "")
	if list.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", list.Code)
	}
	var listed []models.Reservation
	if err := json.NewDecoder(list.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || len(listed[0].Players) != 2 || listed[0].Players[0].UserID != f.other.ID {
		t.Fatalf("unexpected listing %+v", listed)
	}
}

func TestCreateReservation_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if _, err := f.database.Queries.CreateReservation(ctx, appdb.CreateReservationParams{
		CourtID: 1, SlotID: 3, Date: monday, UserID: f.other.ID,
	}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	if _, err := f.database.ExecContext(ctx, "UPDATE quadra_horarios SET ativo = 0 WHERE id = 4"); err != nil {
		t.Fatalf("deactivate slot: %v", err)
	}

	guest := `{"tipo":"visitante","nome":"Carla","taxaPaga":true}`
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "no_date",
			body:       `{"quadraId":1,"horarioId":2,"data":"","acompanhantes":[` + guest + `]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "data must be a YYYY-MM-DD date",
		},
		{
			name:       "no_slot",
			body:       `{"quadraId":1,"horarioId":0,"data":"2024-06-03","acompanhantes":[` + guest + `]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "select a time slot to reserve",
		},
		{
			name:       "blank_players",
			body:       `{"quadraId":1,"horarioId":2,"data":"2024-06-03","acompanhantes":[{"tipo":"visitante","nome":"  "}]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "at least one player is required",
		},
		{
			name:       "four_players",
			body:       `{"quadraId":1,"horarioId":2,"data":"2024-06-03","acompanhantes":[` + strings.Repeat(guest+",", 3) + guest + `]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "maximum of 3 players per reservation",
		},
		{
			name:       "already_reserved",
			body:       `{"quadraId":1,"horarioId":3,"data":"2024-06-03","acompanhantes":[` + guest + `]}`,
			wantStatus: http.StatusConflict,
			wantError:  "slot already reserved",
		},
		{
			name:       "wrong_weekday",
			body:       `{"quadraId":1,"horarioId":5,"data":"2024-06-03","acompanhantes":[` + guest + `]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "time slot is not offered on this date",
		},
		{
			name:       "wrong_court",
			body:       `{"quadraId":2,"horarioId":2,"data":"2024-06-03","acompanhantes":[` + guest + `]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "time slot does not belong to this court",
		},
		{
			name:       "inactive_slot",
			body:       `{"quadraId":1,"horarioId":4,"data":"2024-06-03","acompanhantes":[` + guest + `]}`,
			wantStatus: http.StatusConflict,
			wantError:  "time slot is not active",
		},
		{
			name:       "unknown_member",
			body:       `{"quadraId":1,"horarioId":2,"data":"2024-06-03","acompanhantes":[{"tipo":"socio","usuarioId":999}]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "member 999 not found",
		},
		{
			name:       "unknown_type",
			body:       `{"quadraId":1,"horarioId":2,"data":"2024-06-03","acompanhantes":[{"tipo":"pro"}]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  `unknown player type "pro"`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := serve(HandleCreateReservation, f.member, http.MethodPost, "/api/reservas", test.body)
			if rec.Code != test.wantStatus {
				t.Fatalf("expected %d, got %d: %s", test.wantStatus, rec.Code, rec.Body.String())
			}
			if got := errorOf(t, rec); got != test.wantError {
				t.Fatalf("error = %q, want %q", got, test.wantError)
			}
		})
	}
}

func TestCreateReservation_RequiresUser(t *testing.T) {
	setup(t)
	rec := serve(HandleCreateReservation, nil, http.MethodPost, "/api/reservas", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSearchReservations_Scoping(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, p := range []appdb.CreateReservationParams{
		{CourtID: 1, SlotID: mondaySlot, Date: monday, UserID: f.member.ID},
		{CourtID: 1, SlotID: tuesdaySlot, Date: "2024-06-04", UserID: f.other.ID},
	} {
		if _, err := f.database.Queries.CreateReservation(ctx, p); err != nil {
			t.Fatalf("seed reservation: %v", err)
		}
	}

	rec := serve(HandleSearchReservations, f.admin, http.MethodGet, "/api/reservas-admin", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("admin without filter: expected 400, got %d", rec.Code)
	}

	rec = serve(HandleSearchReservations, f.admin, http.MethodGet, "/api/reservas-admin?quadraId=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin search: expected 200, got %d", rec.Code)
	}
	var all []models.Reservation
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 || all[0].Court == nil || all[0].Court.Name != "Quadra 1" || all[0].User == nil {
		t.Fatalf("unexpected admin result %+v", all)
	}

	// Members only ever see their own reservations, whatever they ask for.
	rec = serve(HandleSearchReservations, f.member, http.MethodGet, "/api/reservas-admin?usuarioId="+itoa(f.other.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("member search: expected 200, got %d", rec.Code)
	}
	var mine []models.Reservation
	if err := json.NewDecoder(rec.Body).Decode(&mine); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != f.member.ID || mine[0].Slot == nil || mine[0].Slot.Name == "" {
		t.Fatalf("unexpected member result %+v", mine)
	}
}

func TestListReservations_RequiresFilters(t *testing.T) {
	f := setup(t)
	rec := serve(HandleListReservations, f.member, http.MethodGet, "/api/agendamentos?quadraId=1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = serve(HandleListReservations, f.member, http.MethodGet, "/api/agendamentos?quadraId=1&data=03/06/2024", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for display date, got %d", rec.Code)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
