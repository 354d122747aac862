// Package db provides CRUD repository operations for the notary backend.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/uuid"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Repository provides CRUD operations for all models.
// A repository is either bound to the database, or to a single
// transaction via Tx.
type Repository struct {
	db *sql.DB // nil when bound to a transaction
	q  dbtx

	// Prepared statement cache for frequently used queries.
	// Statements are prepared on first use and cached for reuse.
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// Tx runs fn against a repository bound to a single transaction and
// commits on success. Any error from fn rolls the whole transaction
// back, leaving the store in its pre-save state.
func (r *Repository) Tx(fn func(*Repository) error) error {
	if r.db == nil {
		// Already inside a transaction; nested saves join it.
		return fn(r)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Repository{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// PrepareStmt gets or creates a prepared statement from cache.
// Transaction-bound repositories skip the cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if r.db == nil {
		return nil, nil
	}

	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}
	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// queryRow runs a single-row query through the statement cache when
// available.
func (r *Repository) queryRow(query string, args ...interface{}) (*sql.Row, error) {
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}
	if stmt != nil {
		return stmt.QueryRow(args...), nil
	}
	return r.q.QueryRow(query, args...), nil
}

// query runs a multi-row query through the statement cache when
// available.
func (r *Repository) query(query string, args ...interface{}) (*sql.Rows, error) {
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}
	if stmt != nil {
		return stmt.Query(args...)
	}
	return r.q.Query(query, args...)
}

// =====================================================
// Notary Operations
// =====================================================

const notaryColumns = `id, id_string, fio, region, address, specialization, schedule, phone,
	   latitude, longitude, created_at, updated_at`

// CreateNotary creates a new notary record. A pre-set ID (seed or sync
// derived from the external id) is kept; otherwise one is generated.
func (r *Repository) CreateNotary(n *models.Notary) error {
	now := time.Now().Unix()
	if n.ID.IsZero() {
		n.ID = models.UUID(uuid.New())
	}
	if n.IDString == "" {
		n.IDString = n.ID.String()
	}
	n.CreatedAt = now
	n.UpdatedAt = now

	query := `
	INSERT INTO notaries (id, id_string, fio, region, address, specialization, schedule, phone,
		latitude, longitude, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.Exec(query, n.ID, n.IDString, n.FIO, n.Region, n.Address,
		n.Specialization, n.Schedule, n.Phone, n.Latitude, n.Longitude,
		n.CreatedAt, n.UpdatedAt)
	return err
}

// GetNotary retrieves a notary by ID.
func (r *Repository) GetNotary(id string) (*models.Notary, error) {
	query := `SELECT ` + notaryColumns + ` FROM notaries WHERE id = ?`
	row, err := r.queryRow(query, id)
	if err != nil {
		return nil, err
	}
	return scanNotary(row)
}

// GetNotaryByIDString retrieves a notary by its external identifier.
// This is the sync upsert key.
func (r *Repository) GetNotaryByIDString(idString string) (*models.Notary, error) {
	query := `SELECT ` + notaryColumns + ` FROM notaries WHERE id_string = ?`
	row, err := r.queryRow(query, idString)
	if err != nil {
		return nil, err
	}
	return scanNotary(row)
}

// GetNotaryByFIO retrieves the first notary whose full name exactly
// matches fio. Used by seeding to link the demo notary account.
func (r *Repository) GetNotaryByFIO(fio string) (*models.Notary, error) {
	query := `SELECT ` + notaryColumns + ` FROM notaries WHERE fio = ? ORDER BY created_at LIMIT 1`
	row, err := r.queryRow(query, fio)
	if err != nil {
		return nil, err
	}
	return scanNotary(row)
}

// ListNotaries returns notaries matching the filter, in filter order.
// A nil filter lists everything sorted by name.
func (r *Repository) ListNotaries(f *NotaryFilter) ([]*models.Notary, error) {
	if f == nil {
		f = NewNotaryFilter()
	}

	query := `SELECT ` + notaryColumns + ` FROM notaries`
	where, args := f.Build()
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + f.OrderBy()

	rows, err := r.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notaries []*models.Notary
	for rows.Next() {
		n, err := scanNotaryRows(rows)
		if err != nil {
			return nil, err
		}
		notaries = append(notaries, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notaries, nil
}

// CountNotaries returns the total number of notary records.
func (r *Repository) CountNotaries() (int, error) {
	var count int
	err := r.q.QueryRow("SELECT COUNT(*) FROM notaries").Scan(&count)
	return count, err
}

// UpdateNotary updates an existing notary's business fields.
func (r *Repository) UpdateNotary(n *models.Notary) error {
	n.Touch()
	query := `
	UPDATE notaries
	SET fio = ?, region = ?, address = ?, specialization = ?, schedule = ?,
		phone = ?, latitude = ?, longitude = ?, updated_at = ?
	WHERE id = ?
	`
	result, err := r.q.Exec(query, n.FIO, n.Region, n.Address, n.Specialization,
		n.Schedule, n.Phone, n.Latitude, n.Longitude, n.UpdatedAt, n.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteNotary permanently removes a notary. Favorites rows are
// detached by the FK cascade; appointment references are weak and
// simply stop resolving.
func (r *Repository) DeleteNotary(id string) error {
	result, err := r.q.Exec("DELETE FROM notaries WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotaryFrom(s scanner) (*models.Notary, error) {
	var n models.Notary
	err := s.Scan(&n.ID, &n.IDString, &n.FIO, &n.Region, &n.Address,
		&n.Specialization, &n.Schedule, &n.Phone, &n.Latitude, &n.Longitude,
		&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanNotary(row *sql.Row) (*models.Notary, error) {
	return scanNotaryFrom(row)
}

func scanNotaryRows(rows *sql.Rows) (*models.Notary, error) {
	return scanNotaryFrom(rows)
}
