package entity

// Role is the closed set of account roles. Anything outside this set maps to
// RoleUnknown and is rejected at the boundary, so a mistyped role in storage
// can never silently grant access.
type Role int16

const (
	// RoleUnknown means the stored value did not match a known role.
	RoleUnknown Role = 0

	// RoleUser is a regular account managing its own contacts.
	RoleUser Role = 1

	// RoleAdmin is an administrative account with access to the user directory.
	RoleAdmin Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether the role belongs to the closed set.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// RoleFromString resolves a stored role string to the closed set.
func RoleFromString(s string) Role {
	switch s {
	case "USER":
		return RoleUser
	case "ADMIN":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}
