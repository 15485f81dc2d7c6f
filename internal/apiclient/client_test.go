package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Token: "tok-123"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("expected ErrMissingBaseURL, got %v", err)
	}
	if _, err := New(Config{BaseURL: "ftp://example.com"}); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestListSlotTemplates_PathAndAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/quadra-horarios/5" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"nome":"Manha","dia_semana":2,"hora_inicio":"08:00","ativo":true}]`))
	})

	templates, err := client.ListSlotTemplates(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListSlotTemplates: %v", err)
	}
	if len(templates) != 1 || templates[0].StartTime != "08:00" || !templates[0].Active {
		t.Fatalf("templates = %+v", templates)
	}
}

func TestListReservations_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("quadraId") != "5" || query.Get("data") != "2025-03-10" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"id":3,"quadraId":5,"horarioId":12,"data":"2025-03-10"}]`))
	})

	reservations, err := client.ListReservations(context.Background(), 5, "2025-03-10")
	if err != nil {
		t.Fatalf("ListReservations: %v", err)
	}
	if len(reservations) != 1 || reservations[0].SlotID != 12 {
		t.Fatalf("reservations = %+v", reservations)
	}
}

func TestSearchReservations_OmitsUnsetFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Has("quadraId") || query.Has("data") {
			t.Errorf("unexpected filters: %s", r.URL.RawQuery)
		}
		if query.Get("usuarioId") != "8" {
			t.Errorf("usuarioId = %q", query.Get("usuarioId"))
		}
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := client.SearchReservations(context.Background(), models.ReservationFilter{UserID: 8}); err != nil {
		t.Fatalf("SearchReservations: %v", err)
	}
}

func TestCreateReservation_SendsPayload(t *testing.T) {
	var got models.ReservationPayload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/reservas" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":44}`))
	})

	req, err := booking.BuildRequest(5, 12, "2025-03-10", []booking.PlayerEntry{booking.Guest{Name: "Ana"}})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if err := client.CreateReservation(context.Background(), req); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if got.CourtID != 5 || got.SlotID != 12 || got.Date != "2025-03-10" || len(got.Players) != 1 {
		t.Fatalf("payload = %+v", got)
	}
}

func TestCreateReservation_ServerRejectionVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Horário já reservado por outro sócio."}`))
	})

	req, _ := booking.BuildRequest(5, 12, "2025-03-10", []booking.PlayerEntry{booking.Member{MemberID: 1}})
	err := client.CreateReservation(context.Background(), req)
	if !booking.IsKind(err, booking.ServerRejection) {
		t.Fatalf("expected ServerRejection, got %v", err)
	}
	if err.Error() != "Horário já reservado por outro sócio." {
		t.Fatalf("message = %q", err.Error())
	}
	if StatusCode(err) != http.StatusConflict {
		t.Fatalf("status = %d", StatusCode(err))
	}
}

func TestDo_StatusWithoutErrorBodyIsNetworkFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	})

	_, err := client.ListCourts(context.Background())
	if !booking.IsKind(err, booking.NetworkFailure) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
	if got := booking.UserMessage(err, "generic"); got != "generic" {
		t.Fatalf("UserMessage = %q", got)
	}
	if StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("status = %d", StatusCode(err))
	}
}

func TestDo_UnreachableIsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.ListCourts(context.Background())
	if !booking.IsKind(err, booking.NetworkFailure) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
}

func TestDo_BadJSONIsNetworkFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.ListMembers(context.Background())
	if !booking.IsKind(err, booking.NetworkFailure) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
}

func TestLogin_StoresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Email != "ana@example.com" || body.Password != "segredo" {
			t.Errorf("body = %+v", body)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login should not send a token")
		}
		_, _ = w.Write([]byte(`{"token":"new-token"}`))
	})
	client.SetToken("")

	token, err := client.Login(context.Background(), " ana@example.com ", "segredo")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "new-token" || client.Token() != "new-token" {
		t.Fatalf("token = %q, client token = %q", token, client.Token())
	}
}

func TestUserManagementRoutes(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			var form models.UserForm
			_ = json.NewDecoder(r.Body).Decode(&form)
			if form.Password != "" {
				t.Errorf("update should not send a password")
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	ctx := context.Background()
	form := models.UserForm{Name: "Lia", Email: "lia@example.com", Password: "x", Type: "socio"}
	if err := client.RegisterUser(ctx, form); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if err := client.UpdateUser(ctx, 3, form); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if err := client.DeleteUser(ctx, 3); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	want := []string{"POST /api/users/register", "PUT /api/users/3", "DELETE /api/users/3"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("call %d = %s, want %s", i, seen[i], want[i])
		}
	}
}
