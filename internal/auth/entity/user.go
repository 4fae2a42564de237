package entity

import "time"

// User is a registered account as stored in the user table.
type User struct {
	ID        int64
	Email     string
	Password  string // bcrypt hash
	FullName  string
	Role      Role
	About     string
	ImageURL  string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser carries the fields needed to create an account. The password hash
// travels separately so it never sits next to profile data by accident.
type NewUser struct {
	ID       int64
	Email    string
	FullName string
	Role     Role
	ImageURL string
	Enabled  bool
}

// UserListFilter narrows and pages the admin user directory.
type UserListFilter struct {
	Limit  int32
	Offset int32
}
