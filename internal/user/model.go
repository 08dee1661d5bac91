package user

import (
	"time"

	"github.com/MikeMC777/mavunohub/internal/auth"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Location     string
	Role         auth.Role
	IsActive     bool
	IsStaff      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role, IsStaff: u.IsStaff}
}
