package auth

// Role is the privilege level carried in a session token.
type Role string

const (
	// RoleNone is the role of an ordinary user.
	RoleNone Role = ""
	// RoleAdmin grants every action on every user record.
	RoleAdmin Role = "Admin"
)

// RoleFor returns the token role of a user with the given admin flag.
func RoleFor(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleNone
}

// Principal is the verified identity of a requester. It is passed by value
// into every account operation.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}
