package deal

import "time"

// Deal is a sales opportunity. Stage is a free-form pipeline label; the data
// layer does not enforce an enumeration. Company and owner are referential
// and may be absent.
type Deal struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Value       float64    `db:"value"`
	Stage       string     `db:"stage"`
	Probability int        `db:"probability"`
	Description *string    `db:"description"`
	CloseDate   *time.Time `db:"close_date"`
	CompanyID   *int64     `db:"company_id"`
	OwnerID     *int64     `db:"owner_id"`
	CreatedAt   time.Time  `db:"created_at"`
}
