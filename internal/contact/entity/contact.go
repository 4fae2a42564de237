package entity

import "time"

// Contact is an address-book entry owned by exactly one user. Every query
// against the store is scoped by the owner's ID.
type Contact struct {
	ID          int64
	UserID      int64
	Name        string
	Email       string
	Phone       string
	Work        string
	Description string
	ImageKey    string // object storage key, empty when no image was uploaded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContactListFilter pages a user's contacts. Query, when set, narrows the
// page to names containing it, compared case-insensitively.
type ContactListFilter struct {
	UserID int64
	Query  string
	Limit  int32
	Offset int32
}
