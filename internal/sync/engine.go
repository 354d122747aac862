package sync

import (
	"context"
	stdsql "database/sql"
	stderrors "errors"

	"github.com/notaryapp/backend/internal/db"
	apperrors "github.com/notaryapp/backend/internal/errors"
	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/notify"
	"github.com/notaryapp/backend/internal/retry"
	"github.com/notaryapp/backend/internal/uuid"
)

// Result summarizes one sync run.
type Result struct {
	Created int
	Updated int
}

// Engine merges the fetched directory into the store by
// find-or-create-by-external-id upsert. The whole merge runs in one
// transaction, so interactive readers observe either the pre-merge or
// the fully post-merge state.
type Engine struct {
	repo     *db.Repository
	source   Source
	bus      *notify.Bus
	retryCfg *retry.Config
}

// NewEngine creates an Engine. A nil retry config uses the defaults.
func NewEngine(repo *db.Repository, source Source, bus *notify.Bus, retryCfg *retry.Config) *Engine {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &Engine{
		repo:     repo,
		source:   source,
		bus:      bus,
		retryCfg: retryCfg,
	}
}

// Sync fetches the remote directory (with bounded backoff on the fetch
// step) and merges it. Cancelable through ctx at every stage.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	records, err := retry.DoWithResult(ctx, e.retryCfg, func() ([]NotaryRecord, error) {
		return e.source.FetchNotaries(ctx)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncSource, "directory fetch failed", err)
	}

	result := &Result{}
	err = e.repo.Tx(func(r *db.Repository) error {
		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.upsert(r, rec, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncFailed, "directory merge failed", err)
	}

	if result.Created > 0 || result.Updated > 0 {
		e.bus.Publish(notify.EventNotariesChanged, "")
	}
	e.bus.Publish(notify.EventSyncCompleted, "")

	logging.Info("directory sync completed", logging.Fields{
		"created": result.Created,
		"updated": result.Updated,
	})
	return result, nil
}

// upsert finds the record by external id and overwrites its business
// fields, or inserts a fresh record when the external id is new.
func (e *Engine) upsert(r *db.Repository, rec NotaryRecord, result *Result) error {
	existing, err := r.GetNotaryByIDString(rec.ID)
	switch {
	case err == nil:
		applyRecord(existing, rec)
		if err := r.UpdateNotary(existing); err != nil {
			return err
		}
		result.Updated++
	case stderrors.Is(err, stdsql.ErrNoRows):
		n := &models.Notary{
			ID:       models.UUID(uuid.ParseOrNew(rec.ID)),
			IDString: rec.ID,
		}
		applyRecord(n, rec)
		if err := r.CreateNotary(n); err != nil {
			return err
		}
		result.Created++
	default:
		return err
	}
	return nil
}

func applyRecord(n *models.Notary, rec NotaryRecord) {
	n.FIO = rec.FIO
	n.Region = rec.Region
	n.Address = rec.Address
	n.Specialization = rec.Specialization
	n.Schedule = rec.Schedule
	n.Phone = rec.Phone
	n.Latitude = rec.Latitude
	n.Longitude = rec.Longitude
}
