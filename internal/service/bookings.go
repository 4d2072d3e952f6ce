package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/notify"
	"github.com/wakili/backend/internal/textnorm"
	"github.com/wakili/backend/internal/validation"
)

const (
	minBookingLead    = time.Hour
	maxBookingDays    = 90
	cancellationLimit = 2 * time.Hour
)

// BookingRepository is the storage contract of the booking service.
type BookingRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetLawyer(ctx context.Context, lawyerID string, includeUnverified bool) (domain.Lawyer, error)
	CreateBooking(ctx context.Context, b domain.Booking) error
	GetBooking(ctx context.Context, bookingID string) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, at time.Time) error
}

// BookingService reserves and cancels consultations.
type BookingService struct {
	repo     BookingRepository
	notifier notify.Notifier
	logger   *slog.Logger
	nowFn    func() time.Time
	idFn     func() string
}

// NewBookingService constructs a BookingService.
func NewBookingService(repo BookingRepository, notifier notify.Notifier, logger *slog.Logger) *BookingService {
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With("component", "bookings"),
		nowFn:    time.Now,
		idFn:     uuid.NewString,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *BookingService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Create books a consultation for the client p with an available lawyer.
// The fee is the lawyer's hourly consultation fee prorated to the duration.
func (s *BookingService) Create(ctx context.Context, p Principal, in BookingInput) (domain.Booking, error) {
	now := s.nowFn().UTC()
	in.LawyerID = strings.TrimSpace(in.LawyerID)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Notes = textnorm.CleanMultiline(in.Notes)

	errs := validation.Struct(in)
	if !errs.Has("scheduledAt") &&
		errs.Check(!in.ScheduledAt.Before(now.Add(minBookingLead)), "scheduledAt", "booking_too_soon", nil) {
		errs.Check(!in.ScheduledAt.After(now.AddDate(0, 0, maxBookingDays)), "scheduledAt", "booking_too_far", validation.Max(maxBookingDays))
	}
	if err := errs.Err(); err != nil {
		return domain.Booking{}, err
	}

	lawyer, err := s.repo.GetLawyer(ctx, in.LawyerID, false)
	if err != nil {
		return domain.Booking{}, err
	}
	if !lawyer.Available {
		return domain.Booking{}, ErrLawyerUnavailable
	}

	booking := domain.Booking{
		ID:              s.idFn(),
		ClientID:        p.UserID,
		LawyerID:        lawyer.ID,
		LawyerName:      lawyer.FullName,
		Type:            domain.BookingType(in.Type),
		ScheduledAt:     in.ScheduledAt.UTC(),
		DurationMinutes: in.DurationMinutes,
		Fee:             roundMoney(lawyer.ConsultationFee * float64(in.DurationMinutes) / 60),
		Notes:           in.Notes,
		Status:          domain.BookingPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return domain.Booking{}, err
	}
	s.logger.InfoContext(ctx, "booking created", "booking_id", booking.ID, "lawyer_id", lawyer.ID)
	s.notifyClient(ctx, p.UserID, notify.KindBookingCreated, booking, in.Lang)
	return booking, nil
}

// Get returns a booking visible to p.
func (s *BookingService) Get(ctx context.Context, p Principal, bookingID string) (domain.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return domain.Booking{}, err
	}
	if booking.ClientID != p.UserID && p.Role != domain.RoleAdmin {
		return domain.Booking{}, ErrForbidden
	}
	return booking, nil
}

// Cancel cancels a pending or confirmed booking of p that starts more than
// two hours from now.
func (s *BookingService) Cancel(ctx context.Context, p Principal, bookingID, lang string) (domain.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return domain.Booking{}, err
	}
	if booking.ClientID != p.UserID {
		return domain.Booking{}, ErrForbidden
	}
	now := s.nowFn().UTC()
	if !booking.Cancellable() || booking.ScheduledAt.Sub(now) < cancellationLimit {
		return domain.Booking{}, ErrBookingNotEditable
	}
	if err := s.repo.UpdateBookingStatus(ctx, booking.ID, domain.BookingCancelled, now); err != nil {
		return domain.Booking{}, err
	}
	booking.Status = domain.BookingCancelled
	booking.UpdatedAt = now
	s.logger.InfoContext(ctx, "booking cancelled", "booking_id", booking.ID)
	s.notifyClient(ctx, p.UserID, notify.KindBookingCancelled, booking, lang)
	return booking, nil
}

func (s *BookingService) notifyClient(ctx context.Context, userID string, kind notify.Kind, b domain.Booking, lang string) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "booking notification skipped", "booking_id", b.ID, "error", err)
		return
	}
	if !user.Notifications.Email {
		return
	}
	msg := notify.Message{
		Kind: kind,
		To:   user.Email,
		Lang: lang,
		Fields: map[string]string{
			"booking_id":   b.ID,
			"lawyer":       b.LawyerName,
			"scheduled_at": b.ScheduledAt.Format(time.RFC3339),
			"duration":     strconv.Itoa(b.DurationMinutes),
			"fee":          fmt.Sprintf("%.2f", b.Fee),
		},
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "kind", kind, "error", err)
	}
}
