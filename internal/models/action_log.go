package models

import "time"

// ActionLog is an append-only audit record of a significant user
// action. Entries are never mutated or deleted by the application.
type ActionLog struct {
	ID        UUID   `db:"id" json:"id"`
	UserID    UUID   `db:"user_id" json:"user_id"`
	Action    string `db:"action" json:"action"`
	Timestamp int64  `db:"timestamp" json:"timestamp"`
}

// TableName returns the table name for ActionLog.
func (ActionLog) TableName() string {
	return "action_log"
}

// Time returns the entry timestamp as time.Time.
func (l *ActionLog) Time() time.Time {
	return time.Unix(l.Timestamp, 0)
}
