package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wakili/backend/internal/domain"
)

// ListBookingsOptions defines filters and pagination for a client's bookings.
type ListBookingsOptions struct {
	ClientID string
	Status   string
	Offset   int
	Limit    int
}

// CreateBooking stores a booking between a client and a lawyer.
func (r *Repository) CreateBooking(ctx context.Context, b domain.Booking) error {
	if b.ID == "" {
		return errors.New("booking id is required")
	}
	params := map[string]any{
		"bookingId": b.ID,
		"clientId":  b.ClientID,
		"lawyerId":  b.LawyerID,
		"props":     bookingProperties(b),
	}
	res, err := r.write(ctx, "create booking "+b.ID, createBookingCypher, params)
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("booking parties %s/%s: %w", b.ClientID, b.LawyerID, ErrNotFound)
	}
	return nil
}

// GetBooking loads a booking by id.
func (r *Repository) GetBooking(ctx context.Context, bookingID string) (domain.Booking, error) {
	res, err := r.read(ctx, "get booking", getBookingCypher, map[string]any{"bookingId": bookingID})
	if err != nil {
		return domain.Booking{}, err
	}
	rec := res.First()
	if rec == nil {
		return domain.Booking{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	return decodeBooking(rec), nil
}

// UpdateBookingStatus sets the status of a booking.
func (r *Repository) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, at time.Time) error {
	res, err := r.write(ctx, "update booking status", updateBookingStatusCypher, map[string]any{
		"bookingId": bookingID,
		"status":    string(status),
		"updatedAt": formatTime(at),
	})
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	return nil
}

// ListBookings returns a client's bookings, latest appointment first.
func (r *Repository) ListBookings(ctx context.Context, opts ListBookingsOptions) (domain.BookingListResult, error) {
	offset, limit := clampPage(opts.Offset, opts.Limit)
	params := map[string]any{
		"clientId": opts.ClientID,
		"status":   strings.ToLower(strings.TrimSpace(opts.Status)),
		"skip":     offset,
		"limit":    limit,
	}

	res, err := r.read(ctx, "list bookings query", fmt.Sprintf(listBookingsCypherTemplate, bookingFilterClause), params)
	if err != nil {
		return domain.BookingListResult{}, err
	}
	items := make([]domain.Booking, 0, len(res.Records))
	for _, rec := range res.Records {
		items = append(items, decodeBooking(rec))
	}

	total, err := r.count(ctx, "count bookings query", fmt.Sprintf(countBookingsCypherTemplate, bookingFilterClause), params)
	if err != nil {
		return domain.BookingListResult{}, err
	}
	return domain.BookingListResult{Items: items, Total: total}, nil
}

// UpcomingBookings returns pending and confirmed bookings starting after now.
func (r *Repository) UpcomingBookings(ctx context.Context, clientID string, now time.Time, limit int) ([]domain.Booking, error) {
	_, limit = clampPage(0, limit)
	res, err := r.read(ctx, "upcoming bookings", upcomingBookingsCypher, map[string]any{
		"clientId": clientID,
		"now":      formatTime(now),
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]domain.Booking, 0, len(res.Records))
	for _, rec := range res.Records {
		items = append(items, decodeBooking(rec))
	}
	return items, nil
}

func bookingProperties(b domain.Booking) map[string]any {
	return map[string]any{
		"clientId":        b.ClientID,
		"lawyerId":        b.LawyerID,
		"lawyerName":      b.LawyerName,
		"type":            string(b.Type),
		"scheduledAt":     formatTime(b.ScheduledAt),
		"durationMinutes": int64(b.DurationMinutes),
		"fee":             b.Fee,
		"notes":           b.Notes,
		"status":          string(b.Status),
		"createdAt":       formatTime(b.CreatedAt),
		"updatedAt":       formatTime(b.UpdatedAt),
	}
}

func decodeBooking(rec map[string]any) domain.Booking {
	m := toMap(rec["booking"])
	return domain.Booking{
		ID:              toString(m["bookingId"]),
		ClientID:        toString(m["clientId"]),
		LawyerID:        toString(m["lawyerId"]),
		LawyerName:      toString(m["lawyerName"]),
		Type:            domain.BookingType(toString(m["type"])),
		ScheduledAt:     toTime(m["scheduledAt"]),
		DurationMinutes: int(toInt64(m["durationMinutes"])),
		Fee:             toFloat64(m["fee"]),
		Notes:           toString(m["notes"]),
		Status:          domain.BookingStatus(toString(m["status"])),
		CreatedAt:       toTime(m["createdAt"]),
		UpdatedAt:       toTime(m["updatedAt"]),
	}
}

const createBookingCypher = `
MATCH (u:User {userId: $clientId})
MATCH (l:Lawyer {lawyerId: $lawyerId})
CREATE (b:Booking {bookingId: $bookingId})
SET b += $props
MERGE (u)-[:BOOKED]->(b)
MERGE (b)-[:WITH_LAWYER]->(l)
RETURN b.bookingId AS bookingId
`

const getBookingCypher = `
MATCH (b:Booking {bookingId: $bookingId})
RETURN b {.*} AS booking
`

const updateBookingStatusCypher = `
MATCH (b:Booking {bookingId: $bookingId})
SET b.status = $status, b.updatedAt = $updatedAt
RETURN b.bookingId AS bookingId
`

const listBookingsCypherTemplate = `
MATCH (:User {userId: $clientId})-[:BOOKED]->(b:Booking)
%s
RETURN b {.*} AS booking
ORDER BY datetime(b.scheduledAt) DESC, b.bookingId
SKIP $skip LIMIT $limit
`

const countBookingsCypherTemplate = `
MATCH (:User {userId: $clientId})-[:BOOKED]->(b:Booking)
%s
RETURN count(b) AS total
`

const bookingFilterClause = `
WHERE ($status = "" OR b.status = $status)
`

const upcomingBookingsCypher = `
MATCH (:User {userId: $clientId})-[:BOOKED]->(b:Booking)
WHERE b.status IN ["pending", "confirmed"]
  AND datetime(b.scheduledAt) > datetime($now)
RETURN b {.*} AS booking
ORDER BY datetime(b.scheduledAt) ASC
LIMIT $limit
`
