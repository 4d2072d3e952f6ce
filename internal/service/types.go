package service

import (
	"time"

	"github.com/wakili/backend/internal/domain"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Role      domain.Role
	ExpiresAt time.Time
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	FullName        string `json:"fullName" validate:"required,min=3,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Role            string `json:"role" validate:"oneof=client lawyer"`
	Lang            string `json:"lang"`
}

// LoginResult is returned by a successful sign-in.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.AuthUser
}

// ResetPasswordInput completes the forgotten password flow.
type ResetPasswordInput struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,len=6,number" msg:"invalid_code_format"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
	Lang            string `json:"lang"`
}

// ChangePasswordInput changes the password of a signed-in user.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
	Lang            string `json:"lang"`
}

// ProfileUpdateInput holds the editable client profile fields.
type ProfileUpdateInput struct {
	FullName    string `json:"fullName" validate:"required,min=3,max=100"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	City        string `json:"city" validate:"max=60"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,http_url"`
	NotifyEmail bool   `json:"notifyEmail"`
	NotifySMS   bool   `json:"notifySms"`
}

// LawyerSearchParams defines filters for the public lawyer directory.
type LawyerSearchParams struct {
	Page           int      `json:"page"`
	PageSize       int      `json:"pageSize"`
	Search         string   `json:"search"`
	Specialization string   `json:"specialization" validate:"omitempty,specialization"`
	City           string   `json:"city"`
	Language       string   `json:"language" validate:"omitempty,oneof=ar en fr ur"`
	MinRating      *float64 `json:"minRating"`
	MaxFee         *float64 `json:"maxFee"`
	AvailableOnly  bool     `json:"availableOnly"`
	SortField      string   `json:"sortField" validate:"omitempty,oneof=rating fee experience name"`
	SortOrder      string   `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// LawyersPage represents paginated lawyers with metadata.
type LawyersPage struct {
	Items      []domain.Lawyer
	Pagination PaginationMeta
}

// LawyerInput is the seed payload for a published lawyer profile.
type LawyerInput struct {
	ID                string     `json:"id"`
	FullName          string     `json:"fullName" validate:"required,min=3,max=100"`
	Title             string     `json:"title"`
	City              string     `json:"city" validate:"required"`
	Specializations   []string   `json:"specializations" validate:"min=1,dive,specialization"`
	Languages         []string   `json:"languages" validate:"dive,oneof=ar en fr ur"`
	YearsOfExperience int        `json:"yearsOfExperience" validate:"gte=0,lte=60"`
	ConsultationFee   float64    `json:"consultationFee" validate:"gte=0,lte=10000"`
	Bio               string     `json:"bio"`
	AvatarURL         string     `json:"avatarUrl,omitempty" validate:"omitempty,http_url"`
	Available         bool       `json:"available"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
}

// TestimonialInput is the seed payload for a lawyer testimonial.
type TestimonialInput struct {
	ID         string     `json:"id"`
	LawyerID   string     `json:"lawyerId" validate:"required"`
	ClientName string     `json:"clientName" validate:"required"`
	Rating     int        `json:"rating" validate:"gte=1,lte=5"`
	Comment    string     `json:"comment" validate:"max=1000"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// BookingsParams defines filters for a client's booking history.
type BookingsParams struct {
	Status   string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// BookingsPage represents paginated bookings with metadata.
type BookingsPage struct {
	Items      []domain.Booking
	Pagination PaginationMeta
}

// BookingInput reserves a consultation.
type BookingInput struct {
	LawyerID        string    `json:"lawyerId" validate:"required"`
	Type            string    `json:"type" validate:"required,oneof=video phone in_person"`
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"oneof=30 60 90" msg:"invalid_duration"`
	Notes           string    `json:"notes" validate:"max=1000"`
	Lang            string    `json:"lang"`
}

// ProfileOverview is the client dashboard.
type ProfileOverview struct {
	Profile   domain.ClientProfile
	Upcoming  []domain.Booking
	Favorites []domain.FavoriteLawyer
}

// ContractReviewInput requests a contract review.
type ContractReviewInput struct {
	Title        string `json:"title" validate:"required,min=3,max=150"`
	ContractType string `json:"contractType" validate:"required,max=60"`
	Content      string `json:"content" validate:"required,min=50,max=20000"`
	Notes        string `json:"notes" validate:"max=1000"`
	LawyerID     string `json:"lawyerId"`
}
