// Package seed provides one-time idempotent population of an empty
// store from bundled directory data.
package seed

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/uuid"
)

//go:embed data/*.json
var seedFiles embed.FS

// LinkedNotaryFIO is the directory record the demo notary account is
// linked to. When the record is missing the account is created
// unlinked, which downstream views must tolerate.
const LinkedNotaryFIO = "Иванов Иван Иванович"

// Demo credentials created on first run.
const (
	AdminEmail  = "admin@notary.ru"
	UserEmail   = "user@test.ru"
	NotaryEmail = "ivanov@notary.ru"

	demoPassword = "123456"
)

const articleDateLayout = "2006-01-02"

// notaryRecord mirrors the bundled notary payload shape.
type notaryRecord struct {
	ID             string  `json:"id"`
	FIO            string  `json:"fio"`
	Region         string  `json:"region"`
	Address        string  `json:"address"`
	Specialization string  `json:"specialization"`
	Schedule       string  `json:"schedule"`
	Phone          string  `json:"phone"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// articleRecord mirrors the bundled article payload shape.
type articleRecord struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// Seeder performs the startup import.
type Seeder struct {
	repo *db.Repository
}

// NewSeeder creates a Seeder over the given repository.
func NewSeeder(repo *db.Repository) *Seeder {
	return &Seeder{repo: repo}
}

// SeedIfEmpty runs the three seeding steps in order. Each step is
// independently idempotent: any existing record of that kind
// suppresses it. Notaries must be seeded before users so the demo
// notary account can resolve its directory profile.
func (s *Seeder) SeedIfEmpty() error {
	s.seedNotaries()
	s.seedArticles()
	return s.seedUsers()
}

// seedNotaries bulk-inserts bundled notary records. An unparseable
// payload is logged and aborts this step without failing startup.
func (s *Seeder) seedNotaries() {
	count, err := s.repo.CountNotaries()
	if err != nil {
		logging.Error("seed: failed to count notaries", err)
		return
	}
	if count > 0 {
		logging.Debug("seed: notaries already present, skipping")
		return
	}

	data, err := seedFiles.ReadFile("data/notaries.json")
	if err != nil {
		logging.Error("seed: failed to read notaries payload", err)
		return
	}

	var records []notaryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Error("seed: failed to decode notaries payload", err)
		return
	}

	err = s.repo.Tx(func(r *db.Repository) error {
		for _, rec := range records {
			n := &models.Notary{
				// External ids are not guaranteed to be UUIDs.
				ID:             models.UUID(uuid.ParseOrNew(rec.ID)),
				IDString:       rec.ID,
				FIO:            rec.FIO,
				Region:         rec.Region,
				Address:        rec.Address,
				Specialization: rec.Specialization,
				Schedule:       rec.Schedule,
				Phone:          rec.Phone,
				Latitude:       rec.Latitude,
				Longitude:      rec.Longitude,
			}
			if err := r.CreateNotary(n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Error("seed: failed to insert notaries", err)
		return
	}
	logging.Info("seed: notaries imported", logging.Fields{"count": len(records)})
}

// seedArticles bulk-inserts bundled articles. A record with an
// unparseable date is dated "now" rather than rejected.
func (s *Seeder) seedArticles() {
	count, err := s.repo.CountArticles()
	if err != nil {
		logging.Error("seed: failed to count articles", err)
		return
	}
	if count > 0 {
		logging.Debug("seed: articles already present, skipping")
		return
	}

	data, err := seedFiles.ReadFile("data/articles.json")
	if err != nil {
		logging.Error("seed: failed to read articles payload", err)
		return
	}

	var records []articleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Error("seed: failed to decode articles payload", err)
		return
	}

	err = s.repo.Tx(func(r *db.Repository) error {
		for _, rec := range records {
			publishDate := time.Now().Unix()
			if t, err := time.Parse(articleDateLayout, rec.Date); err == nil {
				publishDate = t.Unix()
			}
			a := &models.Article{
				Title:       rec.Title,
				Content:     rec.Content,
				PublishDate: publishDate,
			}
			if err := r.CreateArticle(a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Error("seed: failed to insert articles", err)
		return
	}
	logging.Info("seed: articles imported", logging.Fields{"count": len(records)})
}

// seedUsers creates the demo admin, user and notary accounts. The
// notary account is linked to its directory profile by exact full-name
// lookup; a missing profile produces an unlinked account.
func (s *Seeder) seedUsers() error {
	count, err := s.repo.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Debug("seed: users already present, skipping")
		return nil
	}

	var linkedID models.UUID
	notary, err := s.repo.GetNotaryByFIO(LinkedNotaryFIO)
	switch {
	case err == nil:
		linkedID = notary.ID
	case errors.Is(err, sql.ErrNoRows):
		logging.Warn("seed: linked notary profile not found, creating unlinked account",
			logging.Fields{"fio": LinkedNotaryFIO})
	default:
		return err
	}

	users := []*models.User{
		{
			Name:     "Администратор",
			Email:    AdminEmail,
			Password: demoPassword,
			Role:     models.RoleAdmin,
		},
		{
			Name:     "Тестовый Пользователь",
			Email:    UserEmail,
			Password: demoPassword,
			Role:     models.RoleUser,
		},
		{
			Name:     LinkedNotaryFIO,
			Email:    NotaryEmail,
			Password: demoPassword,
			Role:     models.RoleNotary,
			NotaryID: linkedID,
		},
	}

	err = s.repo.Tx(func(r *db.Repository) error {
		for _, u := range users {
			if err := r.CreateUser(u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logging.Info("seed: demo users created", logging.Fields{"linked": !linkedID.IsZero()})
	return nil
}
