package domain

import "time"

// Role is a user's access level
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsStaff is true for moderators and admins
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// CanOrganize is true for roles allowed to manage their own events
func (r Role) CanOrganize() bool {
	return r == RoleOrganizer || r.IsStaff()
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName falls back to the email when no name is set
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Claims are the identity fields carried in an access token
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// Actor is the caller of a service operation
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsStaff() bool { return a.Role.IsStaff() }
