package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Court struct {
	ID   int64
	Name string
}

type SlotTemplate struct {
	ID        int64
	CourtID   int64
	Name      string
	Weekday   int64
	StartTime string
	Active    bool
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Type         string
}

type Reservation struct {
	ID      int64
	CourtID int64
	SlotID  int64
	Date    string
	UserID  int64
}

type ReservationPlayer struct {
	ReservationID int64
	Position      int64
	Type          string
	UserID        sql.NullInt64
	Name          sql.NullString
	FeePaid       bool
}

const listCourts = `
SELECT id, nome FROM quadras ORDER BY nome, id
`

func (q *Queries) ListCourts(ctx context.Context) ([]Court, error) {
	rows, err := q.db.QueryContext(ctx, listCourts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Court{}
	for rows.Next() {
		var i Court
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCourt = `
SELECT id, nome FROM quadras WHERE id = ?
`

func (q *Queries) GetCourt(ctx context.Context, id int64) (Court, error) {
	row := q.db.QueryRowContext(ctx, getCourt, id)
	var i Court
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const listSlotTemplatesByCourt = `
SELECT id, quadra_id, nome, dia_semana, hora_inicio, ativo
FROM quadra_horarios
WHERE quadra_id = ?
ORDER BY dia_semana, hora_inicio, id
`

func (q *Queries) ListSlotTemplatesByCourt(ctx context.Context, courtID int64) ([]SlotTemplate, error) {
	rows, err := q.db.QueryContext(ctx, listSlotTemplatesByCourt, courtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SlotTemplate{}
	for rows.Next() {
		var i SlotTemplate
		if err := rows.Scan(&i.ID, &i.CourtID, &i.Name, &i.Weekday, &i.StartTime, &i.Active); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSlotTemplate = `
SELECT id, quadra_id, nome, dia_semana, hora_inicio, ativo
FROM quadra_horarios
WHERE id = ?
`

func (q *Queries) GetSlotTemplate(ctx context.Context, id int64) (SlotTemplate, error) {
	row := q.db.QueryRowContext(ctx, getSlotTemplate, id)
	var i SlotTemplate
	err := row.Scan(&i.ID, &i.CourtID, &i.Name, &i.Weekday, &i.StartTime, &i.Active)
	return i, err
}

const listReservationsByCourtDate = `
SELECT id, quadra_id, horario_id, data, usuario_id
FROM reservas
WHERE quadra_id = ? AND data = ?
ORDER BY id
`

type ListReservationsByCourtDateParams struct {
	CourtID int64
	Date    string
}

func (q *Queries) ListReservationsByCourtDate(ctx context.Context, arg ListReservationsByCourtDateParams) ([]Reservation, error) {
	rows, err := q.db.QueryContext(ctx, listReservationsByCourtDate, arg.CourtID, arg.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Reservation{}
	for rows.Next() {
		var i Reservation
		if err := rows.Scan(&i.ID, &i.CourtID, &i.SlotID, &i.Date, &i.UserID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const reservationExistsForSlot = `
SELECT EXISTS(SELECT 1 FROM reservas WHERE horario_id = ? AND data = ?)
`

type ReservationExistsForSlotParams struct {
	SlotID int64
	Date   string
}

func (q *Queries) ReservationExistsForSlot(ctx context.Context, arg ReservationExistsForSlotParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, reservationExistsForSlot, arg.SlotID, arg.Date)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createReservation = `
INSERT INTO reservas (quadra_id, horario_id, data, usuario_id)
VALUES (?, ?, ?, ?)
RETURNING id, quadra_id, horario_id, data, usuario_id
`

type CreateReservationParams struct {
	CourtID int64
	SlotID  int64
	Date    string
	UserID  int64
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) (Reservation, error) {
	row := q.db.QueryRowContext(ctx, createReservation, arg.CourtID, arg.SlotID, arg.Date, arg.UserID)
	var i Reservation
	err := row.Scan(&i.ID, &i.CourtID, &i.SlotID, &i.Date, &i.UserID)
	return i, err
}

const addReservationPlayer = `
INSERT INTO reserva_jogadores (reserva_id, posicao, tipo, usuario_id, nome, taxa_paga)
VALUES (?, ?, ?, ?, ?, ?)
`

type AddReservationPlayerParams struct {
	ReservationID int64
	Position      int64
	Type          string
	UserID        sql.NullInt64
	Name          sql.NullString
	FeePaid       bool
}

func (q *Queries) AddReservationPlayer(ctx context.Context, arg AddReservationPlayerParams) error {
	_, err := q.db.ExecContext(ctx, addReservationPlayer,
		arg.ReservationID,
		arg.Position,
		arg.Type,
		arg.UserID,
		arg.Name,
		arg.FeePaid,
	)
	return err
}

const listReservationPlayers = `
SELECT reserva_id, posicao, tipo, usuario_id, nome, taxa_paga
FROM reserva_jogadores
WHERE reserva_id = ?
ORDER BY posicao
`

func (q *Queries) ListReservationPlayers(ctx context.Context, reservationID int64) ([]ReservationPlayer, error) {
	rows, err := q.db.QueryContext(ctx, listReservationPlayers, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ReservationPlayer{}
	for rows.Next() {
		var i ReservationPlayer
		if err := rows.Scan(&i.ReservationID, &i.Position, &i.Type, &i.UserID, &i.Name, &i.FeePaid); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const searchReservations = `
SELECT r.id, r.quadra_id, r.horario_id, r.data, r.usuario_id,
       q.nome AS quadra_nome, h.nome AS horario_nome, u.nome AS usuario_nome, h.hora_inicio
FROM reservas r
JOIN quadras q ON q.id = r.quadra_id
JOIN quadra_horarios h ON h.id = r.horario_id
JOIN usuarios u ON u.id = r.usuario_id
WHERE (?1 IS NULL OR r.quadra_id = ?1)
  AND (?2 IS NULL OR r.usuario_id = ?2)
  AND (?3 IS NULL OR r.data = ?3)
ORDER BY r.data, h.hora_inicio, r.id
`

type SearchReservationsParams struct {
	CourtID sql.NullInt64
	UserID  sql.NullInt64
	Date    sql.NullString
}

type SearchReservationsRow struct {
	Reservation
	CourtName string
	SlotName  string
	UserName  string
	StartTime string
}

func (q *Queries) SearchReservations(ctx context.Context, arg SearchReservationsParams) ([]SearchReservationsRow, error) {
	rows, err := q.db.QueryContext(ctx, searchReservations, arg.CourtID, arg.UserID, arg.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SearchReservationsRow{}
	for rows.Next() {
		var i SearchReservationsRow
		if err := rows.Scan(
			&i.ID,
			&i.CourtID,
			&i.SlotID,
			&i.Date,
			&i.UserID,
			&i.CourtName,
			&i.SlotName,
			&i.UserName,
			&i.StartTime,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteReservationsBefore = `
DELETE FROM reservas WHERE data < ?
`

func (q *Queries) DeleteReservationsBefore(ctx context.Context, date string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteReservationsBefore, date)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const userColumns = `id, nome, email, senha_hash, tipo`

func scanUser(scanner interface{ Scan(...any) error }) (User, error) {
	var i User
	err := scanner.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.Type)
	return i, err
}

func (q *Queries) listUsers(ctx context.Context, query string, args ...interface{}) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []User{}
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listUsers = `SELECT ` + userColumns + ` FROM usuarios ORDER BY nome, id`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	return q.listUsers(ctx, listUsers)
}

const listUsersByType = `SELECT ` + userColumns + ` FROM usuarios WHERE tipo = ? ORDER BY nome, id`

func (q *Queries) ListUsersByType(ctx context.Context, userType string) ([]User, error) {
	return q.listUsers(ctx, listUsersByType, userType)
}

const getUser = `SELECT ` + userColumns + ` FROM usuarios WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM usuarios WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const countUsersByType = `SELECT COUNT(*) FROM usuarios WHERE tipo = ?`

func (q *Queries) CountUsersByType(ctx context.Context, userType string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsersByType, userType)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createUser = `
INSERT INTO usuarios (nome, email, senha_hash, tipo)
VALUES (?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Type         string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, createUser, arg.Name, arg.Email, arg.PasswordHash, arg.Type))
}

const updateUser = `
UPDATE usuarios
SET nome = ?, email = ?, tipo = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID    int64
	Name  string
	Email string
	Type  string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, updateUser, arg.Name, arg.Email, arg.Type, arg.ID))
}

const deleteUser = `DELETE FROM usuarios WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
