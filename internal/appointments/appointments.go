// Package appointments creates booking requests and advances them
// through the appointment lifecycle.
package appointments

import (
	stdsql "database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/notaryapp/backend/internal/audit"
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/errors"
	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/notify"
	"github.com/notaryapp/backend/internal/session"
)

// Manager owns the appointment state machine:
//
//	pending -> confirmed -> completed
//
// Transitions run forward only and are applied by the appointment's
// target notary (matched on the acting account's linked profile id) or
// by an admin.
type Manager struct {
	repo  *db.Repository
	audit *audit.Recorder
	bus   *notify.Bus
}

// NewManager creates a Manager over the given repository.
func NewManager(repo *db.Repository, rec *audit.Recorder, bus *notify.Bus) *Manager {
	return &Manager{repo: repo, audit: rec, bus: bus}
}

// Book creates a pending booking request from user to notary. Overlap
// checking is deliberately absent: two requests for the same slot are
// both accepted, matching the reference behavior.
func (m *Manager) Book(user *models.User, notaryID models.UUID, when time.Time) (*models.Appointment, error) {
	if user == nil || user.ID.IsZero() || notaryID.IsZero() {
		return nil, errors.New(errors.ErrValidation, "booking requires a user and a notary")
	}
	if !session.Allowed(user.Role, session.OpAppointmentBook) {
		// Presentation hides the booking form for other roles; a
		// request that arrives anyway is silently refused.
		return nil, nil
	}

	appt := &models.Appointment{
		UserID:   user.ID,
		NotaryID: notaryID,
		Date:     when.Unix(),
		Status:   models.StatusPending,
	}
	if err := m.repo.CreateAppointment(appt); err != nil {
		return nil, errors.Wrap(errors.ErrPersistence, "failed to save booking", err)
	}

	m.audit.Record(user.ID, fmt.Sprintf("Appointment booked for %s", m.notaryName(notaryID)))
	m.bus.Publish(notify.EventAppointmentsChanged, appt.ID.String())
	return appt, nil
}

// Advance moves an appointment to next. The actor must be an admin or
// the notary the appointment is addressed to; anyone else is silently
// ignored. A transition the lifecycle does not define is rejected.
func (m *Manager) Advance(actor *models.User, appointmentID models.UUID, next models.Status) error {
	if actor == nil {
		return nil
	}

	appt, err := m.repo.GetAppointment(appointmentID.String())
	if err != nil {
		if stderrors.Is(err, stdsql.ErrNoRows) {
			return errors.New(errors.ErrAppointmentNotFound, "appointment not found")
		}
		return errors.Wrap(errors.ErrDatabase, "failed to load appointment", err)
	}

	if !m.mayAdvance(actor, appt) {
		logging.Debug("appointment advance refused", logging.Fields{
			"appointment": appt.ID.String(),
			"actor":       actor.ID.String(),
		})
		return nil
	}

	if !appt.Status.CanAdvance(next) {
		return errors.New(errors.ErrInvalidTransition,
			fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, next))
	}

	if err := m.repo.UpdateAppointmentStatus(appt.ID, next); err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to save status change", err)
	}

	m.audit.Record(actor.ID, fmt.Sprintf("Appointment updated to %s", next))
	m.bus.Publish(notify.EventAppointmentsChanged, appt.ID.String())
	return nil
}

// mayAdvance applies the per-record half of the authorization gate:
// role check first, then the notary match against the actor's linked
// directory profile.
func (m *Manager) mayAdvance(actor *models.User, appt *models.Appointment) bool {
	if !session.Allowed(actor.Role, session.OpAppointmentAdvance) {
		return false
	}
	if actor.Role == models.RoleAdmin {
		return true
	}
	// An unlinked notary account has a zero profile id and can never
	// match.
	return !actor.NotaryID.IsZero() && actor.NotaryID == appt.NotaryID
}

// MyRequests returns the appointments the user has booked, soonest
// first.
func (m *Manager) MyRequests(user *models.User) ([]*models.Appointment, error) {
	if user == nil {
		return nil, nil
	}
	return m.repo.ListAppointmentsByUser(user.ID)
}

// PendingFor returns the pending requests addressed to the acting
// notary's directory profile.
func (m *Manager) PendingFor(actor *models.User) ([]*models.Appointment, error) {
	return m.forNotary(actor, models.StatusPending)
}

// ConfirmedFor returns the confirmed appointments addressed to the
// acting notary's directory profile.
func (m *Manager) ConfirmedFor(actor *models.User) ([]*models.Appointment, error) {
	return m.forNotary(actor, models.StatusConfirmed)
}

func (m *Manager) forNotary(actor *models.User, status models.Status) ([]*models.Appointment, error) {
	if actor == nil || actor.NotaryID.IsZero() {
		// Unlinked notary accounts see an empty queue, not an error.
		return nil, nil
	}
	return m.repo.ListAppointmentsByNotary(actor.NotaryID, status)
}

// notaryName resolves the display name for an audit entry. A deleted
// or unknown notary falls back to the raw id.
func (m *Manager) notaryName(notaryID models.UUID) string {
	n, err := m.repo.GetNotary(notaryID.String())
	if err != nil {
		return notaryID.String()
	}
	return n.FIO
}
