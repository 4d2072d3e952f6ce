package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/repository"
	"github.com/wakili/backend/internal/repository/repotest"
	"github.com/wakili/backend/internal/validation"
)

var clientPrincipal = Principal{UserID: "USR-1", Role: domain.RoleClient}

func seedClient(repo *repotest.Memory) {
	repo.PutUser(domain.User{
		ID:            "USR-1",
		FullName:      "سارة القحطاني",
		Email:         "sara@example.sa",
		Role:          domain.RoleClient,
		EmailVerified: true,
		Notifications: domain.NotificationPrefs{Email: true},
		CreatedAt:     fixedNow.AddDate(0, -1, 0),
	})
}

func seedLawyer(repo *repotest.Memory, id string, fee float64, available bool) domain.Lawyer {
	l := domain.Lawyer{
		ID:              id,
		FullName:        "أحمد العتيبي",
		City:            "الرياض",
		Specializations: []string{"commercial"},
		ConsultationFee: fee,
		Verified:        true,
		Available:       available,
	}
	repo.PutLawyer(l)
	return l
}

func newProfileService(repo *repotest.Memory) *ProfileService {
	svc := NewProfileService(repo)
	svc.WithClock(fixedClock)
	return svc
}

func TestProfileService_Profile(t *testing.T) {
	repo := repotest.New()
	seedClient(repo)
	seedLawyer(repo, "LAW-1", 300, true)
	repo.PutBooking(domain.Booking{ID: "BK-1", ClientID: "USR-1", Status: domain.BookingPending})
	require.NoError(t, repo.AddFavorite(context.Background(), "USR-1", "LAW-1", fixedNow))

	profile, err := newProfileService(repo).Profile(context.Background(), clientPrincipal)
	require.NoError(t, err)
	assert.Equal(t, "sara@example.sa", profile.User.Email)
	assert.Equal(t, int64(1), profile.BookingsCount)
	assert.Equal(t, int64(1), profile.FavoritesCount)
	assert.True(t, profile.Notifications.Email)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	repo := repotest.New()
	seedClient(repo)
	svc := newProfileService(repo)

	_, err := svc.UpdateProfile(context.Background(), clientPrincipal, ProfileUpdateInput{
		FullName:  "سا",
		Phone:     "abc",
		AvatarURL: "ftp://files/avatar.png",
	})
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "length_between", verrs.Code("fullName"))
	assert.Equal(t, "invalid_phone", verrs.Code("phone"))
	assert.Equal(t, "invalid_url", verrs.Code("avatarUrl"))

	profile, err := svc.UpdateProfile(context.Background(), clientPrincipal, ProfileUpdateInput{
		FullName:  "  سارة   محمد <b>القحطاني</b>",
		Phone:     "055 123 4567",
		City:      "جدة",
		NotifySMS: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "سارة محمد القحطاني", profile.User.FullName)
	assert.Equal(t, "+966551234567", profile.User.Phone)
	assert.Equal(t, "جدة", profile.User.City)
	assert.Equal(t, domain.NotificationPrefs{Email: false, SMS: true}, profile.Notifications)

	stored, err := repo.GetUser(context.Background(), "USR-1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
}

func TestProfileService_Overview(t *testing.T) {
	repo := repotest.New()
	seedClient(repo)
	seedLawyer(repo, "LAW-1", 300, true)
	require.NoError(t, repo.AddFavorite(context.Background(), "USR-1", "LAW-1", fixedNow))
	repo.PutBooking(domain.Booking{ID: "BK-past", ClientID: "USR-1", Status: domain.BookingConfirmed, ScheduledAt: fixedNow.Add(-time.Hour)})
	repo.PutBooking(domain.Booking{ID: "BK-next", ClientID: "USR-1", Status: domain.BookingPending, ScheduledAt: fixedNow.Add(24 * time.Hour)})
	repo.PutBooking(domain.Booking{ID: "BK-cancelled", ClientID: "USR-1", Status: domain.BookingCancelled, ScheduledAt: fixedNow.Add(48 * time.Hour)})

	overview, err := newProfileService(repo).Overview(context.Background(), clientPrincipal)
	require.NoError(t, err)
	assert.Equal(t, int64(3), overview.Profile.BookingsCount)
	require.Len(t, overview.Upcoming, 1)
	assert.Equal(t, "BK-next", overview.Upcoming[0].ID)
	require.Len(t, overview.Favorites, 1)
	assert.Equal(t, "LAW-1", overview.Favorites[0].Lawyer.ID)
}

func TestProfileService_OverviewMissingUser(t *testing.T) {
	repo := repotest.New()
	_, err := newProfileService(repo).Overview(context.Background(), clientPrincipal)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProfileService_Bookings(t *testing.T) {
	repo := repotest.New()
	repo.BookingList = domain.BookingListResult{
		Items: []domain.Booking{{ID: "BK-1"}},
		Total: 45,
	}
	svc := newProfileService(repo)

	page, err := svc.Bookings(context.Background(), clientPrincipal, BookingsParams{Status: " Confirmed ", Page: 3, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, repository.ListBookingsOptions{ClientID: "USR-1", Status: "confirmed", Offset: 40, Limit: 20}, repo.LastBookingOptions())
	assert.Equal(t, PaginationMeta{Page: 3, PageSize: 20, TotalItems: 45, TotalPages: 3}, page.Pagination)

	_, err = svc.Bookings(context.Background(), clientPrincipal, BookingsParams{Status: "archived"})
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "invalid_choice", verrs.Code("status"))
}

func TestProfileService_Favorites(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New()
	seedClient(repo)
	seedLawyer(repo, "LAW-1", 300, true)
	svc := newProfileService(repo)

	require.ErrorIs(t, svc.AddFavorite(ctx, clientPrincipal, "LAW-404"), ErrNotFound)
	require.ErrorIs(t, svc.AddFavorite(ctx, clientPrincipal, " "), ErrNotFound)

	require.NoError(t, svc.AddFavorite(ctx, clientPrincipal, "LAW-1"))
	require.NoError(t, svc.AddFavorite(ctx, clientPrincipal, "LAW-1"))
	favs, err := svc.Favorites(ctx, clientPrincipal)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, fixedNow, favs[0].AddedAt)

	require.NoError(t, svc.RemoveFavorite(ctx, clientPrincipal, "LAW-1"))
	require.NoError(t, svc.RemoveFavorite(ctx, clientPrincipal, "LAW-1"))
	favs, err = svc.Favorites(ctx, clientPrincipal)
	require.NoError(t, err)
	assert.Empty(t, favs)
}
