package contact

import "time"

// Contact is a person, optionally attached to a company by id.
type Contact struct {
	ID         int64     `db:"id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Email      *string   `db:"email"`
	Phone      *string   `db:"phone"`
	Position   *string   `db:"position"`
	Department *string   `db:"department"`
	CompanyID  *int64    `db:"company_id"`
	CreatedAt  time.Time `db:"created_at"`
}
