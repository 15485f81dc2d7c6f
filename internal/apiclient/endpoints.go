package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
)

// Login exchanges credentials for a session token and keeps it on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp models.LoginResponse
	err := c.do(ctx, call{
		op:     "log in",
		method: http.MethodPost,
		path:   "/api/users/login",
		body:   models.LoginRequest{Email: strings.TrimSpace(email), Password: password},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", booking.NewError(booking.NetworkFailure, "could not log in", errEmptyToken)
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

func (c *Client) ListCourts(ctx context.Context) ([]models.Court, error) {
	var courts []models.Court
	err := c.do(ctx, call{op: "load courts", method: http.MethodGet, path: "/api/quadras"}, &courts)
	return courts, err
}

// ListMembers returns the users that can be picked as member players.
func (c *Client) ListMembers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, call{op: "load members", method: http.MethodGet, path: "/api/users/socios"}, &users)
	return users, err
}

func (c *Client) ListSlotTemplates(ctx context.Context, courtID int64) ([]models.SlotTemplate, error) {
	var templates []models.SlotTemplate
	err := c.do(ctx, call{
		op:     "load time slots",
		method: http.MethodGet,
		path:   idPath("/api/quadra-horarios", courtID),
	}, &templates)
	return templates, err
}

// ListReservations returns the reservations of a court on one date.
func (c *Client) ListReservations(ctx context.Context, courtID int64, date string) ([]models.Reservation, error) {
	query := url.Values{}
	query.Set("quadraId", strconv.FormatInt(courtID, 10))
	query.Set("data", date)

	var reservations []models.Reservation
	err := c.do(ctx, call{
		op:     "load reservations",
		method: http.MethodGet,
		path:   "/api/agendamentos",
		query:  query,
	}, &reservations)
	return reservations, err
}

func (c *Client) CreateReservation(ctx context.Context, req booking.ReservationRequest) error {
	return c.do(ctx, call{
		op:     "create the reservation",
		method: http.MethodPost,
		path:   "/api/reservas",
		body:   req,
	}, nil)
}

// SearchReservations lists reservations with the admin listing filters.
func (c *Client) SearchReservations(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	query := url.Values{}
	if filter.CourtID > 0 {
		query.Set("quadraId", strconv.FormatInt(filter.CourtID, 10))
	}
	if filter.UserID > 0 {
		query.Set("usuarioId", strconv.FormatInt(filter.UserID, 10))
	}
	if date := strings.TrimSpace(filter.Date); date != "" {
		query.Set("data", date)
	}

	var reservations []models.Reservation
	err := c.do(ctx, call{
		op:     "search reservations",
		method: http.MethodGet,
		path:   "/api/reservas-admin",
		query:  query,
	}, &reservations)
	return reservations, err
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, call{op: "load users", method: http.MethodGet, path: "/api/users"}, &users)
	return users, err
}

func (c *Client) RegisterUser(ctx context.Context, form models.UserForm) error {
	return c.do(ctx, call{
		op:     "register the user",
		method: http.MethodPost,
		path:   "/api/users/register",
		body:   form,
	}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, id int64, form models.UserForm) error {
	form.Password = ""
	return c.do(ctx, call{
		op:     "update the user",
		method: http.MethodPut,
		path:   idPath("/api/users", id),
		body:   form,
	}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		op:     "delete the user",
		method: http.MethodDelete,
		path:   idPath("/api/users", id),
	}, nil)
}
