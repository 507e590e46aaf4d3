package dto

import (
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
)

// UserView is the sanitized projection of a user. It never carries the
// password digest and doubles as the token claims payload.
type UserView struct {
	ID     string            `json:"id"`
	Email  string            `json:"email"`
	Status entity.UserStatus `json:"status"`
}

func NewUserView(user entity.User) UserView {
	return UserView{
		ID:     user.ID,
		Email:  user.Email,
		Status: user.Status,
	}
}

type UserListItem struct {
	UserView
	RegistrationDate time.Time `json:"registration_date"`
	LastLoginDate    time.Time `json:"last_login_date"`
}

func NewUserListItem(user entity.User) UserListItem {
	return UserListItem{
		UserView:         NewUserView(user),
		RegistrationDate: user.RegistrationDate,
		LastLoginDate:    user.LastLoginDate,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthResult struct {
	TokenPair
	User UserView
}
