package company

import "time"

// Company represents an organisation that contacts and deals attach to.
// Only the name is required; the rest are optional profile fields.
type Company struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Industry  *string   `db:"industry"`
	Website   *string   `db:"website"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	Address   *string   `db:"address"`
	City      *string   `db:"city"`
	Country   *string   `db:"country"`
	Employees *int      `db:"employees"`
	Revenue   *float64  `db:"revenue"`
	CreatedAt time.Time `db:"created_at"`
}
