package domain

import "time"

// Role distinguishes what an authenticated account may do.
type Role string

const (
	RoleClient Role = "client"
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleLawyer, RoleAdmin:
		return true
	}
	return false
}

// NotificationPrefs holds the channels a client accepts reminders on.
type NotificationPrefs struct {
	Email bool
	SMS   bool
}

// User is the canonical account node.
type User struct {
	ID            string
	FullName      string
	Email         string
	Phone         string
	Role          Role
	PasswordHash  string
	EmailVerified bool
	City          string
	AvatarURL     string
	Notifications NotificationPrefs
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AuthUser is the public projection of a User returned by the auth endpoints.
type AuthUser struct {
	ID            string
	FullName      string
	Email         string
	Phone         string
	Role          Role
	EmailVerified bool
	City          string
	AvatarURL     string
	CreatedAt     time.Time
}

// Public strips credentials from the user.
func (u User) Public() AuthUser {
	return AuthUser{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		City:          u.City,
		AvatarURL:     u.AvatarURL,
		CreatedAt:     u.CreatedAt,
	}
}

// ClientProfile is the account view a client sees on the profile page.
type ClientProfile struct {
	User           AuthUser
	Notifications  NotificationPrefs
	BookingsCount  int64
	FavoritesCount int64
}
