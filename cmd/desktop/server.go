package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/notaryapp/backend/internal/appointments"
	"github.com/notaryapp/backend/internal/audit"
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/directory"
	apperrors "github.com/notaryapp/backend/internal/errors"
	"github.com/notaryapp/backend/internal/favorites"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/session"
	"github.com/notaryapp/backend/internal/sync/scheduler"
)

// Server exposes the core operations to the local UI shell over REST,
// with change events pushed over the WebSocket feed.
type Server struct {
	session      *session.Session
	directory    *directory.Service
	favorites    *favorites.Manager
	appointments *appointments.Manager
	audit        *audit.Recorder
	scheduler    *scheduler.Scheduler
	hub          *WSHub
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Get("/ws", s.hub.ServeWS)

	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSessionGet)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/register", s.handleRegister)
		r.Post("/guest", s.handleGuest)
	})

	r.Route("/api/notaries", func(r chi.Router) {
		r.Get("/", s.handleNotaryList)
		r.Post("/", s.handleNotarySave)
		r.Get("/{id}", s.handleNotaryGet)
		r.Delete("/{id}", s.handleNotaryDelete)
	})

	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", s.handleArticleList)
		r.Post("/", s.handleArticleSave)
		r.Get("/{id}", s.handleArticleGet)
		r.Delete("/{id}", s.handleArticleDelete)
	})

	r.Route("/api/favorites", func(r chi.Router) {
		r.Get("/", s.handleFavoriteList)
		r.Post("/{notaryID}/toggle", s.handleFavoriteToggle)
		r.Delete("/", s.handleFavoriteRemove)
	})

	r.Route("/api/appointments", func(r chi.Router) {
		r.Post("/", s.handleBook)
		r.Get("/my", s.handleMyAppointments)
		r.Get("/queue", s.handleNotaryQueue)
		r.Post("/{id}/advance", s.handleAdvance)
	})

	r.Get("/api/audit", s.handleAuditList)

	r.Route("/api/sync", func(r chi.Router) {
		r.Post("/run", s.handleSyncRun)
		r.Get("/status", s.handleSyncStatus)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "notaryapp-desktop"})
}

// =====================================================
// Session
// =====================================================

type credentialsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": s.session.IsAuthenticated(),
		"role":          s.session.CurrentRole(),
		"user":          s.session.CurrentUser(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.session.Login(req.Email, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.handleSessionGet(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.session.RegisterUser(req.Name, req.Email, req.Password) {
		writeError(w, http.StatusConflict, "registration rejected")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	s.session.ContinueAsGuest()
	s.handleSessionGet(w, r)
}

// =====================================================
// Notaries
// =====================================================

func (s *Server) handleNotaryList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.NewNotaryFilter().
		Region(q.Get("region")).
		Specialization(q.Get("specialization")).
		Name(q.Get("q"))
	if sort := q.Get("sort"); sort != "" {
		dir := db.SortAsc
		if q.Get("dir") == "desc" {
			dir = db.SortDesc
		}
		filter.SortBy(sort, dir)
	}

	notaries, err := s.directory.Notaries(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, notaries)
}

func (s *Server) handleNotaryGet(w http.ResponseWriter, r *http.Request) {
	n, err := s.directory.Notary(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleNotarySave(w http.ResponseWriter, r *http.Request) {
	var n models.Notary
	if !decodeJSON(w, r, &n) {
		return
	}
	if err := s.directory.SaveNotary(s.session.CurrentUser(), &n); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &n)
}

func (s *Server) handleNotaryDelete(w http.ResponseWriter, r *http.Request) {
	id := models.UUID(chi.URLParam(r, "id"))
	if err := s.directory.DeleteNotary(s.session.CurrentUser(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =====================================================
// Articles
// =====================================================

func (s *Server) handleArticleList(w http.ResponseWriter, r *http.Request) {
	articles, err := s.directory.Articles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleArticleGet(w http.ResponseWriter, r *http.Request) {
	a, err := s.directory.Article(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleArticleSave(w http.ResponseWriter, r *http.Request) {
	var a models.Article
	if !decodeJSON(w, r, &a) {
		return
	}
	if err := s.directory.SaveArticle(s.session.CurrentUser(), &a); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &a)
}

func (s *Server) handleArticleDelete(w http.ResponseWriter, r *http.Request) {
	id := models.UUID(chi.URLParam(r, "id"))
	if err := s.directory.DeleteArticle(s.session.CurrentUser(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =====================================================
// Favorites
// =====================================================

func (s *Server) handleFavoriteList(w http.ResponseWriter, r *http.Request) {
	notaries, err := s.favorites.List(s.session.CurrentUser())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, notaries)
}

func (s *Server) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	notaryID := models.UUID(chi.URLParam(r, "notaryID"))
	fav, err := s.favorites.Toggle(s.session.CurrentUser(), notaryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": fav})
}

func (s *Server) handleFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NotaryIDs []models.UUID `json:"notary_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.favorites.Remove(s.session.CurrentUser(), req.NotaryIDs); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =====================================================
// Appointments
// =====================================================

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NotaryID models.UUID `json:"notary_id"`
		Date     time.Time   `json:"date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	appt, err := s.appointments.Book(s.session.CurrentUser(), req.NotaryID, req.Date)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if appt == nil {
		// Silently refused for the current role.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) handleMyAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := s.appointments.MyRequests(s.session.CurrentUser())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func (s *Server) handleNotaryQueue(w http.ResponseWriter, r *http.Request) {
	actor := s.session.CurrentUser()

	var (
		appts []*models.Appointment
		err   error
	)
	switch r.URL.Query().Get("status") {
	case string(models.StatusConfirmed):
		appts, err = s.appointments.ConfirmedFor(actor)
	default:
		appts, err = s.appointments.PendingFor(actor)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	id := models.UUID(chi.URLParam(r, "id"))
	if err := s.appointments.Advance(s.session.CurrentUser(), id, req.Status); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =====================================================
// Audit and sync
// =====================================================

func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	if s.session.CurrentRole() != models.RoleAdmin {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	entries, err := s.audit.Recent(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSyncRun(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "sync is not configured")
		return
	}
	if err := s.scheduler.SyncNow(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "sync is not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.GetStatus())
}

// =====================================================
// Helpers
// =====================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError maps the error taxonomy to HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotaryNotFound),
		apperrors.Is(err, apperrors.ErrArticleNotFound),
		apperrors.Is(err, apperrors.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case apperrors.Is(err, apperrors.ErrValidation),
		apperrors.Is(err, apperrors.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	case apperrors.Is(err, apperrors.ErrSyncSource):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
