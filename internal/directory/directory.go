// Package directory provides admin-gated CRUD over the notary and
// article records.
package directory

import (
	stdsql "database/sql"
	stderrors "errors"
	"fmt"

	"github.com/notaryapp/backend/internal/audit"
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/errors"
	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/notify"
	"github.com/notaryapp/backend/internal/session"
)

// Service applies directory and article mutations after consulting the
// authorization gate. Unauthorized attempts are silently ignored; the
// presentation layer is expected to hide the controls in the first
// place.
type Service struct {
	repo  *db.Repository
	audit *audit.Recorder
	bus   *notify.Bus
}

// NewService creates a Service over the given repository.
func NewService(repo *db.Repository, rec *audit.Recorder, bus *notify.Bus) *Service {
	return &Service{repo: repo, audit: rec, bus: bus}
}

// =====================================================
// Notaries
// =====================================================

// Notaries lists directory records matching the filter.
func (s *Service) Notaries(f *db.NotaryFilter) ([]*models.Notary, error) {
	return s.repo.ListNotaries(f)
}

// Notary retrieves one record by id.
func (s *Service) Notary(id string) (*models.Notary, error) {
	n, err := s.repo.GetNotary(id)
	if err != nil {
		if stderrors.Is(err, stdsql.ErrNoRows) {
			return nil, errors.New(errors.ErrNotaryNotFound, "notary not found")
		}
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load notary", err)
	}
	return n, nil
}

// SaveNotary creates (zero id) or updates a directory record. The
// editor form submits both through the same path.
func (s *Service) SaveNotary(actor *models.User, n *models.Notary) error {
	op := session.OpNotaryUpdate
	if n.ID.IsZero() {
		op = session.OpNotaryCreate
	}
	if !authorized(actor, op) {
		return nil
	}

	var err error
	if n.ID.IsZero() {
		err = s.repo.CreateNotary(n)
	} else {
		err = s.repo.UpdateNotary(n)
	}
	if err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to save notary", err)
	}

	s.audit.Record(actor.ID, fmt.Sprintf("Notary saved: %s", n.FIO))
	s.bus.Publish(notify.EventNotariesChanged, n.ID.String())
	return nil
}

// DeleteNotary permanently removes a record. Favorites rows are
// detached; appointments keep their weak reference and readers resolve
// it to "not found".
func (s *Service) DeleteNotary(actor *models.User, id models.UUID) error {
	if !authorized(actor, session.OpNotaryDelete) {
		return nil
	}

	if err := s.repo.DeleteNotary(id.String()); err != nil {
		if stderrors.Is(err, stdsql.ErrNoRows) {
			return errors.New(errors.ErrNotaryNotFound, "notary not found")
		}
		return errors.Wrap(errors.ErrPersistence, "failed to delete notary", err)
	}

	s.audit.Record(actor.ID, "Notary deleted")
	s.bus.Publish(notify.EventNotariesChanged, id.String())
	return nil
}

// =====================================================
// Articles
// =====================================================

// Articles lists all articles, newest first.
func (s *Service) Articles() ([]*models.Article, error) {
	return s.repo.ListArticles()
}

// Article retrieves one article by id.
func (s *Service) Article(id string) (*models.Article, error) {
	a, err := s.repo.GetArticle(id)
	if err != nil {
		if stderrors.Is(err, stdsql.ErrNoRows) {
			return nil, errors.New(errors.ErrArticleNotFound, "article not found")
		}
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load article", err)
	}
	return a, nil
}

// SaveArticle creates (zero id) or updates an article.
func (s *Service) SaveArticle(actor *models.User, a *models.Article) error {
	op := session.OpArticleUpdate
	if a.ID.IsZero() {
		op = session.OpArticleCreate
	}
	if !authorized(actor, op) {
		return nil
	}

	var err error
	if a.ID.IsZero() {
		err = s.repo.CreateArticle(a)
	} else {
		err = s.repo.UpdateArticle(a)
	}
	if err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to save article", err)
	}

	s.audit.Record(actor.ID, fmt.Sprintf("Article saved: %s", a.Title))
	s.bus.Publish(notify.EventArticlesChanged, a.ID.String())
	return nil
}

// DeleteArticle permanently removes an article.
func (s *Service) DeleteArticle(actor *models.User, id models.UUID) error {
	if !authorized(actor, session.OpArticleDelete) {
		return nil
	}

	if err := s.repo.DeleteArticle(id.String()); err != nil {
		if stderrors.Is(err, stdsql.ErrNoRows) {
			return errors.New(errors.ErrArticleNotFound, "article not found")
		}
		return errors.Wrap(errors.ErrPersistence, "failed to delete article", err)
	}

	s.audit.Record(actor.ID, "Article deleted")
	s.bus.Publish(notify.EventArticlesChanged, id.String())
	return nil
}

func authorized(actor *models.User, op session.Operation) bool {
	if actor == nil || !session.Allowed(actor.Role, op) {
		role := models.RoleGuest
		if actor != nil {
			role = actor.Role
		}
		logging.Debug("directory operation refused", logging.Fields{
			"op":   string(op),
			"role": string(role),
		})
		return false
	}
	return true
}
