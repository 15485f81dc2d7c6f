package courts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/models"
	"github.com/codr1/quadras/internal/testutil"
)

func setup(t *testing.T) {
	t.Helper()
	database := testutil.NewTestDB(t)
	prev := queries
	t.Cleanup(func() { queries = prev })
	queries = database.Queries
}

func get(handler http.HandlerFunc, target string, courtID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if courtID != "" {
		req.SetPathValue("courtId", courtID)
	}
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: 1, Type: models.UserTypeMember}))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleListCourts(t *testing.T) {
	setup(t)

	rec := get(HandleListCourts, "/api/quadras", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var courts []models.Court
	if err := json.NewDecoder(rec.Body).Decode(&courts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(courts) != 2 || courts[0].Name != "Quadra 1" {
		t.Fatalf("unexpected courts %+v", courts)
	}
}

func TestHandleListSlotTemplates(t *testing.T) {
	setup(t)

	rec := get(HandleListSlotTemplates, "/api/quadra-horarios/2", "2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var templates []models.SlotTemplate
	if err := json.NewDecoder(rec.Body).Decode(&templates); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(templates) != 28 {
		t.Fatalf("expected 28 templates, got %d", len(templates))
	}
	for _, tmpl := range templates {
		if tmpl.CourtID != 2 || tmpl.StartTime == "" {
			t.Fatalf("unexpected template %+v", tmpl)
		}
	}

	if rec := get(HandleListSlotTemplates, "/api/quadra-horarios/9", "9"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown court: expected 404, got %d", rec.Code)
	}
	if rec := get(HandleListSlotTemplates, "/api/quadra-horarios/x", "x"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
}

func TestHandleListCourts_RequiresUser(t *testing.T) {
	setup(t)
	rec := httptest.NewRecorder()
	HandleListCourts(rec, httptest.NewRequest(http.MethodGet, "/api/quadras", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
