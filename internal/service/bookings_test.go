package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/notify"
	"github.com/wakili/backend/internal/repository/repotest"
	"github.com/wakili/backend/internal/validation"
)

func newBookingFixture() (*BookingService, *repotest.Memory, *notify.Recorder) {
	repo := repotest.New()
	seedClient(repo)
	seedLawyer(repo, "LAW-1", 400, true)
	seedLawyer(repo, "LAW-BUSY", 400, false)
	recorder := &notify.Recorder{}
	svc := NewBookingService(repo, recorder, discardLogger())
	svc.WithClock(fixedClock)
	return svc, repo, recorder
}

func TestBookingService_Create(t *testing.T) {
	svc, repo, recorder := newBookingFixture()

	booking, err := svc.Create(context.Background(), clientPrincipal, BookingInput{
		LawyerID:        "LAW-1",
		Type:            "Video",
		ScheduledAt:     fixedNow.Add(26 * time.Hour),
		DurationMinutes: 90,
		Notes:           " نزاع <i>عمالي</i> ",
		Lang:            "ar",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, domain.BookingVideo, booking.Type)
	assert.Equal(t, domain.BookingPending, booking.Status)
	assert.Equal(t, 600.0, booking.Fee)
	assert.Equal(t, "أحمد العتيبي", booking.LawyerName)
	assert.Equal(t, "نزاع عمالي", booking.Notes)

	stored, err := repo.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking, stored)

	msg, ok := recorder.Last(notify.KindBookingCreated)
	require.True(t, ok)
	assert.Equal(t, "sara@example.sa", msg.To)
	assert.Equal(t, "600.00", msg.Fields["fee"])
}

func TestBookingService_CreateValidation(t *testing.T) {
	svc, _, _ := newBookingFixture()

	cases := []struct {
		name  string
		in    BookingInput
		field string
		code  string
	}{
		{"too soon", BookingInput{LawyerID: "LAW-1", Type: "phone", DurationMinutes: 30, ScheduledAt: fixedNow.Add(30 * time.Minute)}, "scheduledAt", "booking_too_soon"},
		{"too far", BookingInput{LawyerID: "LAW-1", Type: "phone", DurationMinutes: 30, ScheduledAt: fixedNow.AddDate(0, 0, 91)}, "scheduledAt", "booking_too_far"},
		{"missing time", BookingInput{LawyerID: "LAW-1", Type: "phone", DurationMinutes: 30}, "scheduledAt", "required"},
		{"bad duration", BookingInput{LawyerID: "LAW-1", Type: "phone", DurationMinutes: 45, ScheduledAt: fixedNow.Add(2 * time.Hour)}, "durationMinutes", "invalid_duration"},
		{"bad type", BookingInput{LawyerID: "LAW-1", Type: "fax", DurationMinutes: 30, ScheduledAt: fixedNow.Add(2 * time.Hour)}, "type", "invalid_choice"},
		{"missing lawyer", BookingInput{Type: "phone", DurationMinutes: 30, ScheduledAt: fixedNow.Add(2 * time.Hour)}, "lawyerId", "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), clientPrincipal, tc.in)
			var verrs *validation.Errors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tc.code, verrs.Code(tc.field))
		})
	}
}

func TestBookingService_CreateLawyerChecks(t *testing.T) {
	svc, _, _ := newBookingFixture()
	in := BookingInput{Type: "in_person", DurationMinutes: 60, ScheduledAt: fixedNow.Add(3 * time.Hour)}

	in.LawyerID = "LAW-BUSY"
	_, err := svc.Create(context.Background(), clientPrincipal, in)
	require.ErrorIs(t, err, ErrLawyerUnavailable)

	in.LawyerID = "LAW-404"
	_, err = svc.Create(context.Background(), clientPrincipal, in)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()
	svc, repo, recorder := newBookingFixture()
	repo.PutBooking(domain.Booking{ID: "BK-ok", ClientID: "USR-1", Status: domain.BookingConfirmed, ScheduledAt: fixedNow.Add(3 * time.Hour)})
	repo.PutBooking(domain.Booking{ID: "BK-soon", ClientID: "USR-1", Status: domain.BookingPending, ScheduledAt: fixedNow.Add(90 * time.Minute)})
	repo.PutBooking(domain.Booking{ID: "BK-done", ClientID: "USR-1", Status: domain.BookingCompleted, ScheduledAt: fixedNow.Add(72 * time.Hour)})
	repo.PutBooking(domain.Booking{ID: "BK-other", ClientID: "USR-2", Status: domain.BookingPending, ScheduledAt: fixedNow.Add(72 * time.Hour)})

	_, err := svc.Cancel(ctx, clientPrincipal, "BK-other", "ar")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Cancel(ctx, clientPrincipal, "BK-soon", "ar")
	require.ErrorIs(t, err, ErrBookingNotEditable)
	_, err = svc.Cancel(ctx, clientPrincipal, "BK-done", "ar")
	require.ErrorIs(t, err, ErrBookingNotEditable)
	_, err = svc.Cancel(ctx, clientPrincipal, "BK-missing", "ar")
	require.ErrorIs(t, err, ErrNotFound)

	booking, err := svc.Cancel(ctx, clientPrincipal, "BK-ok", "ar")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, booking.Status)
	stored, err := repo.GetBooking(ctx, "BK-ok")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, stored.Status)
	_, ok := recorder.Last(notify.KindBookingCancelled)
	assert.True(t, ok)

	_, err = svc.Cancel(ctx, clientPrincipal, "BK-ok", "ar")
	require.ErrorIs(t, err, ErrBookingNotEditable)
}

func TestBookingService_Get(t *testing.T) {
	svc, repo, _ := newBookingFixture()
	repo.PutBooking(domain.Booking{ID: "BK-1", ClientID: "USR-1"})

	_, err := svc.Get(context.Background(), clientPrincipal, "BK-1")
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), Principal{UserID: "USR-2", Role: domain.RoleClient}, "BK-1")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(context.Background(), Principal{UserID: "ADM-1", Role: domain.RoleAdmin}, "BK-1")
	require.NoError(t, err)
}
