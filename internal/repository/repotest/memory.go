// Package repotest provides an in-memory implementation of the repository
// methods used by the service layer, for tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/repository"
)

type favoriteRow struct {
	userID   string
	lawyerID string
	addedAt  time.Time
}

// Memory is an in-memory stand-in for repository.Repository. It is safe
// for concurrent use.
type Memory struct {
	mu sync.Mutex

	users        map[string]domain.User
	lawyers      map[string]domain.Lawyer
	bookings     map[string]domain.Booking
	applications map[string]domain.Application
	reviews      map[string]domain.ContractReview
	favorites    []favoriteRow
	testimonials []domain.Testimonial

	// LawyerList and BookingList are returned by the paged list queries.
	LawyerList  domain.LawyerListResult
	BookingList domain.BookingListResult
	// UpsertLawyerErr, when set, fails every UpsertLawyer call.
	UpsertLawyerErr error

	lastLawyerOpts  repository.ListLawyersOptions
	lastBookingOpts repository.ListBookingsOptions
	saveAppCalls    int
}

func New() *Memory {
	return &Memory{
		users:        map[string]domain.User{},
		lawyers:      map[string]domain.Lawyer{},
		bookings:     map[string]domain.Booking{},
		applications: map[string]domain.Application{},
		reviews:      map[string]domain.ContractReview{},
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
}

func (s *Memory) CreateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Memory) GetUser(ctx context.Context, userID string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.User{}, notFound("user", userID)
	}
	return u, nil
}

func (s *Memory) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, notFound("user", email)
}

func (s *Memory) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	return s.updateUser(userID, func(u *domain.User) {
		u.EmailVerified = true
		u.UpdatedAt = at
	})
}

func (s *Memory) UpdatePassword(ctx context.Context, userID, hash string, at time.Time) error {
	return s.updateUser(userID, func(u *domain.User) {
		u.PasswordHash = hash
		u.UpdatedAt = at
	})
}

func (s *Memory) UpdateProfile(ctx context.Context, user domain.User) error {
	return s.updateUser(user.ID, func(u *domain.User) { *u = user })
}

func (s *Memory) updateUser(userID string, fn func(*domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	fn(&u)
	s.users[userID] = u
	return nil
}

func (s *Memory) ClientStats(ctx context.Context, userID string) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bookings, favorites int64
	for _, b := range s.bookings {
		if b.ClientID == userID {
			bookings++
		}
	}
	for _, f := range s.favorites {
		if f.userID == userID {
			favorites++
		}
	}
	return bookings, favorites, nil
}

func (s *Memory) ListBookings(ctx context.Context, opts repository.ListBookingsOptions) (domain.BookingListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBookingOpts = opts
	return s.BookingList, nil
}

func (s *Memory) UpcomingBookings(ctx context.Context, clientID string, now time.Time, limit int) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Booking{}
	for _, b := range s.bookings {
		if b.ClientID == clientID && b.Cancellable() && b.ScheduledAt.After(now) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) AddFavorite(ctx context.Context, userID, lawyerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lawyers[lawyerID]; !ok || !l.Verified {
		return notFound("lawyer", lawyerID)
	}
	for _, f := range s.favorites {
		if f.userID == userID && f.lawyerID == lawyerID {
			return nil
		}
	}
	s.favorites = append(s.favorites, favoriteRow{userID: userID, lawyerID: lawyerID, addedAt: at})
	return nil
}

func (s *Memory) RemoveFavorite(ctx context.Context, userID, lawyerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.favorites {
		if f.userID == userID && f.lawyerID == lawyerID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Memory) ListFavorites(ctx context.Context, userID string, limit int) ([]domain.FavoriteLawyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.FavoriteLawyer{}
	for _, f := range s.favorites {
		if f.userID == userID {
			out = append(out, domain.FavoriteLawyer{Lawyer: s.lawyers[f.lawyerID], AddedAt: f.addedAt})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) UpsertLawyer(ctx context.Context, lawyer domain.Lawyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpsertLawyerErr != nil {
		return s.UpsertLawyerErr
	}
	s.lawyers[lawyer.ID] = lawyer
	return nil
}

func (s *Memory) GetLawyer(ctx context.Context, lawyerID string, includeUnverified bool) (domain.Lawyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lawyers[lawyerID]
	if !ok || (!l.Verified && !includeUnverified) {
		return domain.Lawyer{}, notFound("lawyer", lawyerID)
	}
	return l, nil
}

func (s *Memory) GetLawyerByUserID(ctx context.Context, userID string) (domain.Lawyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lawyers {
		if l.UserID != "" && l.UserID == userID {
			return l, nil
		}
	}
	return domain.Lawyer{}, notFound("lawyer for user", userID)
}

func (s *Memory) ListLawyers(ctx context.Context, opts repository.ListLawyersOptions) (domain.LawyerListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLawyerOpts = opts
	return s.LawyerList, nil
}

func (s *Memory) AddTestimonial(ctx context.Context, t domain.Testimonial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lawyers[t.LawyerID]
	if !ok {
		return notFound("lawyer", t.LawyerID)
	}
	s.testimonials = append(s.testimonials, t)
	var sum int
	var count int64
	for _, existing := range s.testimonials {
		if existing.LawyerID == t.LawyerID {
			sum += existing.Rating
			count++
		}
	}
	l.ReviewsCount = count
	l.Rating = float64(sum) / float64(count)
	s.lawyers[t.LawyerID] = l
	return nil
}

func (s *Memory) ListTestimonials(ctx context.Context, lawyerID string, limit int) ([]domain.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Testimonial{}
	for _, t := range s.testimonials {
		if t.LawyerID == lawyerID {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) LatestTestimonials(ctx context.Context, limit int) ([]domain.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Testimonial{}, s.testimonials...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) CreateBooking(ctx context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
	return nil
}

func (s *Memory) GetBooking(ctx context.Context, bookingID string) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return domain.Booking{}, notFound("booking", bookingID)
	}
	return b, nil
}

func (s *Memory) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return notFound("booking", bookingID)
	}
	b.Status = status
	b.UpdatedAt = at
	s.bookings[bookingID] = b
	return nil
}

func (s *Memory) GetApplication(ctx context.Context, userID string) (domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[userID]
	if !ok {
		return domain.Application{}, notFound("application", userID)
	}
	return app, nil
}

func (s *Memory) SaveApplication(ctx context.Context, app domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveAppCalls++
	s.applications[app.UserID] = app
	return nil
}

func (s *Memory) ApproveApplication(ctx context.Context, app domain.Application, lawyer domain.Lawyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.UserID] = app
	s.lawyers[lawyer.ID] = lawyer
	return nil
}

func (s *Memory) ListApplications(ctx context.Context, status string, limit int) ([]domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Application{}
	for _, app := range s.applications {
		if status == "" || string(app.Status) == status {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Memory) CreateContractReview(ctx context.Context, cr domain.ContractReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[cr.ID] = cr
	return nil
}

func (s *Memory) GetContractReview(ctx context.Context, reviewID string) (domain.ContractReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.reviews[reviewID]
	if !ok {
		return domain.ContractReview{}, notFound("contract review", reviewID)
	}
	return cr, nil
}

func (s *Memory) ListContractReviews(ctx context.Context, clientID, lawyerID string, limit int) ([]domain.ContractReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ContractReview{}
	for _, cr := range s.reviews {
		if (clientID != "" && cr.ClientID == clientID) || (lawyerID != "" && cr.LawyerID == lawyerID) {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (s *Memory) UpdateContractReviewStatus(ctx context.Context, reviewID string, status domain.ContractReviewStatus, findings []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.reviews[reviewID]
	if !ok {
		return notFound("contract review", reviewID)
	}
	cr.Status = status
	cr.Findings = findings
	cr.UpdatedAt = at
	s.reviews[reviewID] = cr
	return nil
}

// PutUser stores a record as is.
func (s *Memory) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutLawyer stores a record as is.
func (s *Memory) PutLawyer(l domain.Lawyer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lawyers[l.ID] = l
}

// PutBooking stores a record as is.
func (s *Memory) PutBooking(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

// PutReview stores a record as is.
func (s *Memory) PutReview(cr domain.ContractReview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[cr.ID] = cr
}

// LastLawyerOptions returns the options of the latest ListLawyers call.
func (s *Memory) LastLawyerOptions() repository.ListLawyersOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLawyerOpts
}

// LastBookingOptions returns the options of the latest ListBookings call.
func (s *Memory) LastBookingOptions() repository.ListBookingsOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBookingOpts
}

// SaveApplicationCalls counts SaveApplication calls.
func (s *Memory) SaveApplicationCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAppCalls
}
