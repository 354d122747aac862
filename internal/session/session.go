// Package session holds the current session state and authenticates
// against stored users.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/notaryapp/backend/internal/audit"
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/notify"
)

// Session is the single interactive session of the application: the
// current user, their role, and the authentication flag. A fresh
// session is an unauthenticated guest.
type Session struct {
	mu    sync.RWMutex
	repo  *db.Repository
	audit *audit.Recorder
	bus   *notify.Bus

	user          *models.User
	role          models.Role
	authenticated bool
}

// New creates an unauthenticated guest session.
func New(repo *db.Repository, rec *audit.Recorder, bus *notify.Bus) *Session {
	return &Session{
		repo:  repo,
		audit: rec,
		bus:   bus,
		role:  models.RoleGuest,
	}
}

// Login authenticates by exact, case-sensitive email and password
// match. On success the session fields are set and an action log entry
// appended; on failure the session is left untouched.
func (s *Session) Login(email, password string) bool {
	user, err := s.repo.GetUserByCredentials(email, password)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Error("login query failed", err)
		}
		return false
	}

	s.mu.Lock()
	s.user = user
	s.role = user.Role
	s.authenticated = true
	s.mu.Unlock()

	s.audit.Record(user.ID, fmt.Sprintf("Login: %s", user.Role))
	s.bus.Publish(notify.EventSessionChanged, user.ID.String())
	return true
}

// Logout resets the session to an unauthenticated guest, logging the
// action when someone was actually logged in.
func (s *Session) Logout() {
	s.mu.Lock()
	user := s.user
	s.user = nil
	s.role = models.RoleGuest
	s.authenticated = false
	s.mu.Unlock()

	if user != nil {
		s.audit.Record(user.ID, "Logout")
	}
	s.bus.Publish(notify.EventSessionChanged, "")
}

// RegisterUser creates a new role=user account. Registration is
// rejected when the email (case-sensitive) is already taken. Does NOT
// log the new user in.
func (s *Session) RegisterUser(name, email, password string) bool {
	if strings.TrimSpace(email) == "" || password == "" {
		return false
	}

	if _, err := s.repo.GetUserByEmail(email); err == nil {
		logging.Warn("registration rejected: email already exists")
		return false
	} else if !errors.Is(err, sql.ErrNoRows) {
		logging.Error("registration lookup failed", err)
		return false
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleUser,
	}
	if err := s.repo.CreateUser(user); err != nil {
		logging.Error("registration save failed", err)
		return false
	}

	s.audit.Record(user.ID, "New user registered")
	return true
}

// Register creates a role=user account and logs it straight in. This
// is the startup/demo variant; interactive registration goes through
// RegisterUser.
func (s *Session) Register(name, email, password string) bool {
	if !s.RegisterUser(name, email, password) {
		return false
	}
	return s.Login(email, password)
}

// ContinueAsGuest marks the session authenticated with the transient
// guest pseudo-role. No User record backs it and nothing is logged.
func (s *Session) ContinueAsGuest() {
	s.mu.Lock()
	s.user = nil
	s.role = models.RoleGuest
	s.authenticated = true
	s.mu.Unlock()

	s.bus.Publish(notify.EventSessionChanged, "")
}

// CurrentUser returns the logged-in user, nil for guests.
func (s *Session) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// CurrentRole returns the session role.
func (s *Session) CurrentRole() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// IsAuthenticated reports whether the session has passed login or the
// explicit guest entry.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Can consults the authorization gate for the session's role.
func (s *Session) Can(op Operation) bool {
	return Allowed(s.CurrentRole(), op)
}

// LinkedNotaryID returns the directory profile id of a notary-role
// session, or the zero UUID for every other case (including an
// unlinked notary account).
func (s *Session) LinkedNotaryID() models.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.role != models.RoleNotary {
		return ""
	}
	return s.user.NotaryID
}
