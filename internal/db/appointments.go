package db

import (
	"database/sql"
	"time"

	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/uuid"
)

// =====================================================
// Appointment Operations
// =====================================================

const appointmentColumns = `id, user_id, notary_id, date, status, created_at`

// CreateAppointment creates a new booking request.
func (r *Repository) CreateAppointment(a *models.Appointment) error {
	if a.ID.IsZero() {
		a.ID = models.UUID(uuid.New())
	}
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	a.CreatedAt = time.Now().Unix()

	query := `
	INSERT INTO appointments (id, user_id, notary_id, date, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.Exec(query, a.ID, a.UserID, a.NotaryID, a.Date,
		string(a.Status), a.CreatedAt)
	return err
}

// GetAppointment retrieves an appointment by ID.
func (r *Repository) GetAppointment(id string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	row, err := r.queryRow(query, id)
	if err != nil {
		return nil, err
	}
	return scanAppointment(row)
}

// UpdateAppointmentStatus persists a status change.
func (r *Repository) UpdateAppointmentStatus(id models.UUID, status models.Status) error {
	result, err := r.q.Exec("UPDATE appointments SET status = ? WHERE id = ?",
		string(status), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAppointmentsByUser returns a user's own booking requests, soonest
// first.
func (r *Repository) ListAppointmentsByUser(userID models.UUID) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id = ? ORDER BY date ASC`
	return r.listAppointments(query, userID)
}

// ListAppointmentsByNotary returns appointments addressed to a notary,
// optionally narrowed to one status, soonest first.
func (r *Repository) ListAppointmentsByNotary(notaryID models.UUID, status models.Status) ([]*models.Appointment, error) {
	if status == "" {
		query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE notary_id = ? ORDER BY date ASC`
		return r.listAppointments(query, notaryID)
	}
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE notary_id = ? AND status = ? ORDER BY date ASC`
	return r.listAppointments(query, notaryID, string(status))
}

func (r *Repository) listAppointments(query string, args ...interface{}) ([]*models.Appointment, error) {
	rows, err := r.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		var a models.Appointment
		var status string
		err := rows.Scan(&a.ID, &a.UserID, &a.NotaryID, &a.Date, &status, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		a.Status = models.Status(status)
		appointments = append(appointments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

func scanAppointment(row *sql.Row) (*models.Appointment, error) {
	var a models.Appointment
	var status string
	err := row.Scan(&a.ID, &a.UserID, &a.NotaryID, &a.Date, &status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.Status(status)
	return &a, nil
}

// =====================================================
// ActionLog Operations
// =====================================================

// CreateActionLog appends an audit entry.
func (r *Repository) CreateActionLog(l *models.ActionLog) error {
	if l.ID.IsZero() {
		l.ID = models.UUID(uuid.New())
	}
	if l.Timestamp == 0 {
		l.Timestamp = time.Now().Unix()
	}

	query := `INSERT INTO action_log (id, user_id, action, timestamp) VALUES (?, ?, ?, ?)`
	_, err := r.q.Exec(query, l.ID, l.UserID, l.Action, l.Timestamp)
	return err
}

// ListActionLog returns the most recent audit entries, newest first.
func (r *Repository) ListActionLog(limit int) ([]*models.ActionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, user_id, action, timestamp FROM action_log ORDER BY timestamp DESC, id LIMIT ?`
	rows, err := r.query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ActionLog
	for rows.Next() {
		var l models.ActionLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
