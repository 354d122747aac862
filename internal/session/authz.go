package session

import "github.com/notaryapp/backend/internal/models"

// Operation names a mutating core operation for authorization checks.
type Operation string

const (
	OpNotaryCreate  Operation = "notary.create"
	OpNotaryUpdate  Operation = "notary.update"
	OpNotaryDelete  Operation = "notary.delete"
	OpArticleCreate Operation = "article.create"
	OpArticleUpdate Operation = "article.update"
	OpArticleDelete Operation = "article.delete"

	OpAppointmentBook    Operation = "appointment.book"
	OpAppointmentAdvance Operation = "appointment.advance"

	OpFavoriteToggle Operation = "favorite.toggle"
)

// allowed is the single authorization table consulted by every
// mutating core operation. Appointment advance additionally requires
// the per-record notary match checked by the lifecycle manager.
var allowed = map[Operation]map[models.Role]bool{
	OpNotaryCreate:  {models.RoleAdmin: true},
	OpNotaryUpdate:  {models.RoleAdmin: true},
	OpNotaryDelete:  {models.RoleAdmin: true},
	OpArticleCreate: {models.RoleAdmin: true},
	OpArticleUpdate: {models.RoleAdmin: true},
	OpArticleDelete: {models.RoleAdmin: true},

	OpAppointmentBook:    {models.RoleUser: true},
	OpAppointmentAdvance: {models.RoleNotary: true, models.RoleAdmin: true},

	OpFavoriteToggle: {models.RoleUser: true},
}

// Allowed reports whether role may perform op. Unknown operations are
// denied.
func Allowed(role models.Role, op Operation) bool {
	return allowed[op][role]
}
