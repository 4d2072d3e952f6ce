package domain

import "time"

// BookingType is the consultation medium.
type BookingType string

const (
	BookingVideo    BookingType = "video"
	BookingPhone    BookingType = "phone"
	BookingInPerson BookingType = "in_person"
)

// BookingStatus tracks a consultation through its lifecycle.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a consultation a client reserved with a lawyer.
type Booking struct {
	ID              string
	ClientID        string
	LawyerID        string
	LawyerName      string
	Type            BookingType
	ScheduledAt     time.Time
	DurationMinutes int
	Fee             float64
	Notes           string
	Status          BookingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Cancellable reports whether the booking may still be cancelled.
func (b Booking) Cancellable() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// FavoriteLawyer is a lawyer saved to a client's favorites list.
type FavoriteLawyer struct {
	Lawyer  Lawyer
	AddedAt time.Time
}
