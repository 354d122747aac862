package models

import "time"

// Notary represents a directory record of a notary office.
type Notary struct {
	ID             UUID    `db:"id" json:"id"`
	IDString       string  `db:"id_string" json:"id_string"` // external id, upsert key for seed/sync
	FIO            string  `db:"fio" json:"fio"`
	Region         string  `db:"region" json:"region"`
	Address        string  `db:"address" json:"address"`
	Specialization string  `db:"specialization" json:"specialization"`
	Schedule       string  `db:"schedule" json:"schedule"`
	Phone          string  `db:"phone" json:"phone"`
	Latitude       float64 `db:"latitude" json:"latitude"`
	Longitude      float64 `db:"longitude" json:"longitude"`
	CreatedAt      int64   `db:"created_at" json:"created_at"`
	UpdatedAt      int64   `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for Notary.
func (Notary) TableName() string {
	return "notaries"
}

// Mappable reports whether the record carries coordinates usable for
// map placement. Records without coordinates are listed but not pinned.
func (n *Notary) Mappable() bool {
	return n.Latitude != 0 || n.Longitude != 0
}

// Touch updates the UpdatedAt timestamp.
func (n *Notary) Touch() {
	n.UpdatedAt = time.Now().Unix()
}
