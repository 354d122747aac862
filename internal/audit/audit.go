// Package audit provides the append-only action log recorder.
package audit

import (
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/models"
)

// Recorder appends action log entries. Logging runs outside the
// triggering operation's transaction: a failed audit write is reported
// and swallowed so it can never sink a legitimate booking or update.
type Recorder struct {
	repo *db.Repository
}

// NewRecorder creates a Recorder over the given repository.
func NewRecorder(repo *db.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one entry for the acting user. Safe to call with a
// zero user id (guest flows simply produce no entry).
func (r *Recorder) Record(userID models.UUID, action string) {
	if userID.IsZero() {
		return
	}

	entry := &models.ActionLog{
		UserID: userID,
		Action: action,
	}
	if err := r.repo.CreateActionLog(entry); err != nil {
		logging.Error("failed to append action log", err, logging.Fields{
			"user_id": userID.String(),
			"action":  action,
		})
	}
}

// Recent returns the newest entries, for the admin dashboard.
func (r *Recorder) Recent(limit int) ([]*models.ActionLog, error) {
	return r.repo.ListActionLog(limit)
}
