package entity

import (
	"time"
)

// User is the identity record. Name, Email and Image are optional; Email is
// unique when present. Users are created on first successful sign-in and
// are never deleted by the service.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	Image     string
	CreatedAt time.Time
}

// PublicProfile is the subset of a User shown to anyone.
type PublicProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Image: u.Image, CreatedAt: u.CreatedAt}
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID    string
	Role      Role
	ExpiresAt time.Time
}

// RoleOf returns the caller's role, RoleAnonymous for a nil identity.
func RoleOf(id *Identity) Role {
	if id == nil {
		return RoleAnonymous
	}
	return id.Role
}
