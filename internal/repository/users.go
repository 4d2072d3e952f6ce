package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wakili/backend/internal/domain"
)

// CreateUser inserts a new account. A taken email yields ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		return errors.New("user id is required")
	}
	params := map[string]any{
		"userId": user.ID,
		"props":  userProperties(user),
	}
	if _, err := r.write(ctx, "create user "+user.ID, createUserCypher, params); err != nil {
		return err
	}
	return nil
}

// GetUser loads a user by id.
func (r *Repository) GetUser(ctx context.Context, userID string) (domain.User, error) {
	res, err := r.read(ctx, "get user", getUserCypher, map[string]any{"userId": userID})
	if err != nil {
		return domain.User{}, err
	}
	rec := res.First()
	if rec == nil {
		return domain.User{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return decodeUser(toMap(rec["user"])), nil
}

// GetUserByEmail loads a user by normalised email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	res, err := r.read(ctx, "get user by email", getUserByEmailCypher, map[string]any{"email": email})
	if err != nil {
		return domain.User{}, err
	}
	rec := res.First()
	if rec == nil {
		return domain.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return decodeUser(toMap(rec["user"])), nil
}

// MarkEmailVerified flags the account as verified.
func (r *Repository) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	return r.updateUser(ctx, "mark email verified", userID, map[string]any{
		"emailVerified": true,
		"updatedAt":     formatTime(at),
	})
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *Repository) UpdatePassword(ctx context.Context, userID, hash string, at time.Time) error {
	return r.updateUser(ctx, "update password", userID, map[string]any{
		"passwordHash": hash,
		"updatedAt":    formatTime(at),
	})
}

// UpdateProfile persists the editable profile fields of user.
func (r *Repository) UpdateProfile(ctx context.Context, user domain.User) error {
	return r.updateUser(ctx, "update profile", user.ID, map[string]any{
		"fullName":    user.FullName,
		"phone":       user.Phone,
		"city":        user.City,
		"avatarUrl":   user.AvatarURL,
		"notifyEmail": user.Notifications.Email,
		"notifySms":   user.Notifications.SMS,
		"updatedAt":   formatTime(user.UpdatedAt),
	})
}

func (r *Repository) updateUser(ctx context.Context, op, userID string, props map[string]any) error {
	res, err := r.write(ctx, op, updateUserCypher, map[string]any{"userId": userID, "props": props})
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("%s %s: %w", op, userID, ErrNotFound)
	}
	return nil
}

// ClientStats counts the bookings and favorites of a client.
func (r *Repository) ClientStats(ctx context.Context, userID string) (bookings, favorites int64, err error) {
	res, err := r.read(ctx, "client stats", clientStatsCypher, map[string]any{"userId": userID})
	if err != nil {
		return 0, 0, err
	}
	rec := res.First()
	return toInt64(rec["bookings"]), toInt64(rec["favorites"]), nil
}

func userProperties(u domain.User) map[string]any {
	return map[string]any{
		"fullName":      u.FullName,
		"email":         u.Email,
		"phone":         u.Phone,
		"role":          string(u.Role),
		"passwordHash":  u.PasswordHash,
		"emailVerified": u.EmailVerified,
		"city":          u.City,
		"avatarUrl":     u.AvatarURL,
		"notifyEmail":   u.Notifications.Email,
		"notifySms":     u.Notifications.SMS,
		"createdAt":     formatTime(u.CreatedAt),
		"updatedAt":     formatTime(u.UpdatedAt),
	}
}

func decodeUser(m map[string]any) domain.User {
	return domain.User{
		ID:            toString(m["userId"]),
		FullName:      toString(m["fullName"]),
		Email:         toString(m["email"]),
		Phone:         toString(m["phone"]),
		Role:          domain.Role(toString(m["role"])),
		PasswordHash:  toString(m["passwordHash"]),
		EmailVerified: toBool(m["emailVerified"]),
		City:          toString(m["city"]),
		AvatarURL:     toString(m["avatarUrl"]),
		Notifications: domain.NotificationPrefs{
			Email: toBool(m["notifyEmail"]),
			SMS:   toBool(m["notifySms"]),
		},
		CreatedAt: toTime(m["createdAt"]),
		UpdatedAt: toTime(m["updatedAt"]),
	}
}

const createUserCypher = `
CREATE (u:User {userId: $userId})
SET u += $props
RETURN u.userId AS userId
`

const getUserCypher = `
MATCH (u:User {userId: $userId})
RETURN u {.*} AS user
`

const getUserByEmailCypher = `
MATCH (u:User {email: $email})
RETURN u {.*} AS user
`

const updateUserCypher = `
MATCH (u:User {userId: $userId})
SET u += $props
RETURN u.userId AS userId
`

const clientStatsCypher = `
MATCH (u:User {userId: $userId})
RETURN COUNT { (u)-[:BOOKED]->(:Booking) } AS bookings,
       COUNT { (u)-[:FAVORITED]->(:Lawyer) } AS favorites
`
