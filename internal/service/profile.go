package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/repository"
	"github.com/wakili/backend/internal/textnorm"
	"github.com/wakili/backend/internal/validation"
)

const (
	overviewUpcoming  = 5
	overviewFavorites = 6
	maxFavorites      = 100
)

// ProfileRepository is the storage contract of the client profile service.
type ProfileRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) error
	ClientStats(ctx context.Context, userID string) (bookings, favorites int64, err error)
	ListBookings(ctx context.Context, opts repository.ListBookingsOptions) (domain.BookingListResult, error)
	UpcomingBookings(ctx context.Context, clientID string, now time.Time, limit int) ([]domain.Booking, error)
	AddFavorite(ctx context.Context, userID, lawyerID string, at time.Time) error
	RemoveFavorite(ctx context.Context, userID, lawyerID string) error
	ListFavorites(ctx context.Context, userID string, limit int) ([]domain.FavoriteLawyer, error)
}

// ProfileService serves the client profile page.
type ProfileService struct {
	repo  ProfileRepository
	nowFn func() time.Time
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo, nowFn: time.Now}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *ProfileService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Profile returns the account, preferences and counters of a client.
func (s *ProfileService) Profile(ctx context.Context, p Principal) (domain.ClientProfile, error) {
	user, err := s.repo.GetUser(ctx, p.UserID)
	if err != nil {
		return domain.ClientProfile{}, err
	}
	bookings, favorites, err := s.repo.ClientStats(ctx, p.UserID)
	if err != nil {
		return domain.ClientProfile{}, err
	}
	return domain.ClientProfile{
		User:           user.Public(),
		Notifications:  user.Notifications,
		BookingsCount:  bookings,
		FavoritesCount: favorites,
	}, nil
}

// UpdateProfile validates and stores the editable profile fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, p Principal, in ProfileUpdateInput) (domain.ClientProfile, error) {
	in.FullName = textnorm.Clean(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.City = textnorm.Clean(in.City)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)

	if err := validation.Struct(in).Err(); err != nil {
		return domain.ClientProfile{}, err
	}

	user, err := s.repo.GetUser(ctx, p.UserID)
	if err != nil {
		return domain.ClientProfile{}, err
	}
	user.FullName = in.FullName
	user.Phone = textnorm.Phone(in.Phone)
	user.City = in.City
	user.AvatarURL = in.AvatarURL
	user.Notifications = domain.NotificationPrefs{Email: in.NotifyEmail, SMS: in.NotifySMS}
	user.UpdatedAt = s.nowFn().UTC()
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return domain.ClientProfile{}, err
	}
	return s.Profile(ctx, p)
}

// Overview loads the profile, upcoming bookings and favorites concurrently.
func (s *ProfileService) Overview(ctx context.Context, p Principal) (ProfileOverview, error) {
	var out ProfileOverview
	now := s.nowFn().UTC()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.Profile(gctx, p)
		out.Profile = profile
		return err
	})
	g.Go(func() error {
		upcoming, err := s.repo.UpcomingBookings(gctx, p.UserID, now, overviewUpcoming)
		out.Upcoming = upcoming
		return err
	})
	g.Go(func() error {
		favorites, err := s.repo.ListFavorites(gctx, p.UserID, overviewFavorites)
		out.Favorites = favorites
		return err
	})
	if err := g.Wait(); err != nil {
		return ProfileOverview{}, err
	}
	return out, nil
}

// Bookings returns a page of the client's bookings, newest first.
func (s *ProfileService) Bookings(ctx context.Context, p Principal, params BookingsParams) (BookingsPage, error) {
	params.Status = strings.ToLower(strings.TrimSpace(params.Status))
	if err := validation.Struct(params).Err(); err != nil {
		return BookingsPage{}, err
	}
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	result, err := s.repo.ListBookings(ctx, repository.ListBookingsOptions{
		ClientID: p.UserID,
		Status:   params.Status,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return BookingsPage{}, err
	}
	return BookingsPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

// Favorites lists the client's saved lawyers, most recent first.
func (s *ProfileService) Favorites(ctx context.Context, p Principal) ([]domain.FavoriteLawyer, error) {
	return s.repo.ListFavorites(ctx, p.UserID, maxFavorites)
}

// AddFavorite saves a lawyer. Adding the same lawyer twice keeps the first date.
func (s *ProfileService) AddFavorite(ctx context.Context, p Principal, lawyerID string) error {
	lawyerID = strings.TrimSpace(lawyerID)
	if lawyerID == "" {
		return ErrNotFound
	}
	return s.repo.AddFavorite(ctx, p.UserID, lawyerID, s.nowFn().UTC())
}

// RemoveFavorite drops a lawyer from the favorites. Removing a lawyer that
// was never saved is not an error.
func (s *ProfileService) RemoveFavorite(ctx context.Context, p Principal, lawyerID string) error {
	err := s.repo.RemoveFavorite(ctx, p.UserID, strings.TrimSpace(lawyerID))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
