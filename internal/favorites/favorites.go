// Package favorites maintains the many-to-many relation between a
// user and the notaries they favorited.
package favorites

import (
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/notify"
)

// Manager provides favorites toggle/query/remove operations. The
// relation is only meaningful for role=user; guests (nil user) always
// read as "not a favorite" and cannot toggle.
type Manager struct {
	repo *db.Repository
	bus  *notify.Bus
}

// NewManager creates a Manager over the given repository.
func NewManager(repo *db.Repository, bus *notify.Bus) *Manager {
	return &Manager{repo: repo, bus: bus}
}

// Toggle flips the favorite state of (user, notary) and returns the
// new membership. Each call flips state; two calls with the same pair
// net to the original state. A nil user is a no-op.
func (m *Manager) Toggle(user *models.User, notaryID models.UUID) (bool, error) {
	if user == nil || notaryID.IsZero() {
		return false, nil
	}

	fav, err := m.repo.IsFavorite(user.ID, notaryID)
	if err != nil {
		return false, err
	}

	if fav {
		err = m.repo.RemoveFavorite(user.ID, notaryID)
	} else {
		err = m.repo.AddFavorite(user.ID, notaryID)
	}
	if err != nil {
		return fav, err
	}

	m.bus.Publish(notify.EventFavoritesChanged, notaryID.String())
	return !fav, nil
}

// IsFavorite reports membership. Guests have no favorites.
func (m *Manager) IsFavorite(user *models.User, notaryID models.UUID) bool {
	if user == nil {
		return false
	}
	fav, err := m.repo.IsFavorite(user.ID, notaryID)
	if err != nil {
		return false
	}
	return fav
}

// Remove bulk-removes the given notaries from the user's favorites.
func (m *Manager) Remove(user *models.User, notaryIDs []models.UUID) error {
	if user == nil || len(notaryIDs) == 0 {
		return nil
	}

	err := m.repo.Tx(func(r *db.Repository) error {
		for _, id := range notaryIDs {
			if err := r.RemoveFavorite(user.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.bus.Publish(notify.EventFavoritesChanged, "")
	return nil
}

// List returns the user's favorited notaries. Empty for guests.
func (m *Manager) List(user *models.User) ([]*models.Notary, error) {
	if user == nil {
		return nil, nil
	}
	return m.repo.ListFavoriteNotaries(user.ID)
}
