package activity

import "time"

// DefaultStatus is applied when a new activity carries no status.
const DefaultStatus = "planned"

// Activity is a task or interaction, optionally linked to a deal, a contact
// and an owning user.
type Activity struct {
	ID        int64      `db:"id"`
	Subject   string     `db:"subject"`
	Status    string     `db:"status"`
	DueDate   *time.Time `db:"due_date"`
	Notes     *string    `db:"notes"`
	DealID    *int64     `db:"deal_id"`
	ContactID *int64     `db:"contact_id"`
	OwnerID   *int64     `db:"owner_id"`
	CreatedAt time.Time  `db:"created_at"`
}
