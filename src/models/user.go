package models

import "time"

type UserStatus int

const (
	UserStatusNormal   UserStatus = 0
	UserStatusDisabled UserStatus = 1
	// Registration awaiting admin review.
	UserStatusChecking UserStatus = 2
)

type User struct {
	ID int `db:"id"`

	Username string `db:"username"`
	Password string `db:"password"` // encoded hash, see src/auth
	Nickname string `db:"nickname"`
	Avatar   string `db:"avatar"`

	GroupID int        `db:"group_id"`
	Status  UserStatus `db:"status"`

	// Opaque API credential. The resource server accepts its first 8
	// characters as a short-lived download token.
	Token string `db:"token"`

	ThreadCount int `db:"thread_count"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *User) BestName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.GroupID == GroupIDAdmin
}

// UserView is the viewer-agnostic serialization of a user. Credentials never
// leave the server.
type UserView struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	Avatar      string     `json:"avatar"`
	GroupID     int        `json:"group_id"`
	Status      UserStatus `json:"status"`
	ThreadCount int        `json:"thread_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Avatar:      u.Avatar,
		GroupID:     u.GroupID,
		Status:      u.Status,
		ThreadCount: u.ThreadCount,
		CreatedAt:   u.CreatedAt,
	}
}
