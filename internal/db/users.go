package db

import (
	"database/sql"

	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/uuid"
)

// =====================================================
// User Operations
// =====================================================

const userColumns = `id, name, email, password, role, notary_id`

// CreateUser creates a new user record. Email uniqueness is enforced
// by the schema; callers treat a constraint failure as a duplicate.
func (r *Repository) CreateUser(u *models.User) error {
	if u.ID.IsZero() {
		u.ID = models.UUID(uuid.New())
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	query := `
	INSERT INTO users (id, name, email, password, role, notary_id)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.Exec(query, u.ID, u.Name, u.Email, u.Password, string(u.Role),
		nullableID(u.NotaryID))
	return err
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	row, err := r.queryRow(query, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

// GetUserByEmail retrieves a user by exact (case-sensitive) email.
func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	row, err := r.queryRow(query, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

// GetUserByCredentials retrieves the user matching email AND password,
// both case-sensitive exact matches. Deterministically takes the
// lowest id if the store ever holds more than one match.
func (r *Repository) GetUserByCredentials(email, password string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND password = ? ORDER BY id LIMIT 1`
	row, err := r.queryRow(query, email, password)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

// CountUsers returns the total number of user records.
func (r *Repository) CountUsers() (int, error) {
	var count int
	err := r.q.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// UpdateUser updates an existing user record.
func (r *Repository) UpdateUser(u *models.User) error {
	query := `
	UPDATE users SET name = ?, email = ?, password = ?, role = ?, notary_id = ?
	WHERE id = ?
	`
	result, err := r.q.Exec(query, u.Name, u.Email, u.Password, string(u.Role),
		nullableID(u.NotaryID), u.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// =====================================================
// Favorites Operations
// =====================================================

// AddFavorite inserts a favorites relation. Adding an existing pair is
// a no-op.
func (r *Repository) AddFavorite(userID, notaryID models.UUID) error {
	query := `INSERT OR IGNORE INTO favorites (user_id, notary_id) VALUES (?, ?)`
	_, err := r.q.Exec(query, userID, notaryID)
	return err
}

// RemoveFavorite deletes a favorites relation. Removing an absent pair
// is a no-op.
func (r *Repository) RemoveFavorite(userID, notaryID models.UUID) error {
	query := `DELETE FROM favorites WHERE user_id = ? AND notary_id = ?`
	_, err := r.q.Exec(query, userID, notaryID)
	return err
}

// IsFavorite reports whether the notary is in the user's favorites.
func (r *Repository) IsFavorite(userID, notaryID models.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND notary_id = ?`
	row, err := r.queryRow(query, userID, notaryID)
	if err != nil {
		return false, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListFavoriteNotaries returns the user's favorited notaries sorted by
// name. Ordering is a view concern; name order matches the reference
// presentation.
func (r *Repository) ListFavoriteNotaries(userID models.UUID) ([]*models.Notary, error) {
	query := `
	SELECT ` + prefixedNotaryColumns + `
	FROM notaries n
	JOIN favorites f ON f.notary_id = n.id
	WHERE f.user_id = ?
	ORDER BY n.fio
	`
	rows, err := r.query(query, userID)
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

const prefixedNotaryColumns = `n.id, n.id_string, n.fio, n.region, n.address, n.specialization,
	n.schedule, n.phone, n.latitude, n.longitude, n.created_at, n.updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	var notaryID sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &notaryID)
	if err != nil {
		return nil, err
	}
	u.Role = models.ParseRole(role)
	if notaryID.Valid {
		u.NotaryID = models.UUID(notaryID.String)
	}
	return &u, nil
}

// nullableID maps an empty UUID to SQL NULL.
func nullableID(id models.UUID) interface{} {
	if id.IsZero() {
		return nil
	}
	return id.String()
}
