package models

// Role determines which operations a session may perform.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleUser   Role = "user"
	RoleNotary Role = "notary"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a stored role literal to a Role. Unknown or missing
// values default to RoleUser.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleGuest, RoleUser, RoleNotary, RoleAdmin:
		return Role(s)
	default:
		return RoleUser
	}
}

// User represents a registered account.
//
// Password is stored in plain text for parity with the legacy system
// this backend replaces; see DESIGN.md before reusing this model.
type User struct {
	ID       UUID   `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Password string `db:"password" json:"-"`
	Role     Role   `db:"role" json:"role"`

	// NotaryID links a notary-role account to its directory profile.
	// Empty for every other role, and empty for a notary account whose
	// profile could not be resolved (a valid, degraded state).
	NotaryID UUID `db:"notary_id" json:"notary_id,omitempty"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// IsNotaryLinked reports whether a notary-role user has a directory
// profile attached.
func (u *User) IsNotaryLinked() bool {
	return u.Role == RoleNotary && !u.NotaryID.IsZero()
}
