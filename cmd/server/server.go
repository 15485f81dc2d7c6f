// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/quadras/internal/api"
	"github.com/codr1/quadras/internal/api/auth"
	"github.com/codr1/quadras/internal/api/courts"
	"github.com/codr1/quadras/internal/api/reservations"
	"github.com/codr1/quadras/internal/api/users"
	"github.com/codr1/quadras/internal/config"
	"github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/ratelimit"
)

type deps struct {
	database *db.DB
	issuer   *auth.TokenIssuer
	limiter  *ratelimit.Limiter
}

func newServer(cfg *config.Config, d deps) *http.Server {
	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      newHandler(cfg, d),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newHandler(cfg *config.Config, d deps) http.Handler {
	auth.InitHandlers(d.database.Queries, d.issuer, d.limiter, cfg.App.TrustProxy)
	courts.InitHandlers(d.database.Queries)
	reservations.InitHandlers(d.database)
	users.InitHandlers(d.database.Queries)

	router := http.NewServeMux()
	registerRoutes(router)

	// Setup middleware chain
	return api.ChainMiddleware(
		router,
		api.WithAuth(d.issuer),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth and users
	mux.HandleFunc("POST /api/users/login", auth.HandleLogin)
	mux.HandleFunc("GET /api/users/socios", users.HandleListMembers)
	mux.HandleFunc("GET /api/users", users.HandleListUsers)
	mux.HandleFunc("POST /api/users/register", users.HandleRegister)
	mux.HandleFunc("PUT /api/users/{id}", users.HandleUpdate)
	mux.HandleFunc("DELETE /api/users/{id}", users.HandleDelete)

	// Courts and weekly slots
	mux.HandleFunc("GET /api/quadras", courts.HandleListCourts)
	mux.HandleFunc("GET /api/quadra-horarios/{courtId}", courts.HandleListSlotTemplates)

	// Reservations
	mux.HandleFunc("GET /api/agendamentos", reservations.HandleListReservations)
	mux.HandleFunc("POST /api/reservas", reservations.HandleCreateReservation)
	mux.HandleFunc("GET /api/reservas-admin", reservations.HandleSearchReservations)
}
