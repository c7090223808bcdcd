package model

import "time"

// Roles recognized by the auth service. Any other value supplied on
// registration is normalized to RoleUser.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a credential record keyed by username. Password holds the bcrypt
// hash of the password, never the plaintext, and is excluded from JSON so a
// full record can never leak through a response.
type User struct {
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicUser is the view of a user exposed by /profile and /users.
type PublicUser struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips the credential fields from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeRole maps unknown roles to RoleUser.
func NormalizeRole(role string) string {
	if role != RoleAdmin && role != RoleUser {
		return RoleUser
	}
	return role
}
