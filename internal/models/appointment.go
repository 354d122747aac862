package models

import "time"

// Status is the appointment lifecycle state. It is a closed set: the
// store enforces it with a CHECK constraint and the model refuses
// transitions outside pending -> confirmed -> completed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status literal.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// CanAdvance reports whether the lifecycle permits moving from s to
// next. Transitions only run forward; completed is terminal.
func (s Status) CanAdvance(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusCompleted
	}
	return false
}

// Appointment represents a booking request from a user to a notary.
// UserID and NotaryID are weak references: the referenced records may
// be deleted out from under an appointment, and readers must treat a
// failed lookup as "no longer resolvable", not as corruption.
type Appointment struct {
	ID        UUID   `db:"id" json:"id"`
	UserID    UUID   `db:"user_id" json:"user_id"`
	NotaryID  UUID   `db:"notary_id" json:"notary_id"`
	Date      int64  `db:"date" json:"date"`
	Status    Status `db:"status" json:"status"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// TableName returns the table name for Appointment.
func (Appointment) TableName() string {
	return "appointments"
}

// DateTime returns the requested slot as time.Time.
func (a *Appointment) DateTime() time.Time {
	return time.Unix(a.Date, 0)
}
