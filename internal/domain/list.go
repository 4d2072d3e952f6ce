package domain

// LawyerListResult captures paginated lawyer search results.
type LawyerListResult struct {
	Items []Lawyer
	Total int64
}

// BookingListResult captures paginated booking results.
type BookingListResult struct {
	Items []Booking
	Total int64
}
