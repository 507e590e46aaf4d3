package entity

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "Active"
	UserStatusInactive UserStatus = "Inactive"
	UserStatusBlocked  UserStatus = "Blocked"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusBlocked:
		return true
	}
	return false
}

type User struct {
	ID               string
	Email            string
	PasswordHash     string
	ActivationLink   string
	Status           UserStatus
	RegistrationDate time.Time
	LastLoginDate    time.Time
}

// WithStatus returns a copy of u with the given status.
func (u User) WithStatus(status UserStatus) User {
	u.Status = status
	return u
}

// WithLogin returns a copy of u marked Active with LastLoginDate set to at.
func (u User) WithLogin(at time.Time) User {
	u.Status = UserStatusActive
	u.LastLoginDate = at
	return u
}

type RefreshToken struct {
	UserID    string
	Token     string
	UpdatedAt time.Time
}
