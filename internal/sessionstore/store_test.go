package sessionstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func openTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}
	store.WithClock(clock.Now)
	return store, clock
}

func TestOpen_CreatesPrivateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "auth")
	store, err := Open(filepath.Join(dir, "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestSessions_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, clock := openTestStore(t)

	token, sess, err := store.CreateSession(ctx, "USR-1", "client", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEqual(t, token, sess.TokenHash)
	assert.Equal(t, clock.now.Add(time.Hour), sess.ExpiresAt)

	got, err := store.LookupSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "USR-1", got.UserID)
	assert.Equal(t, "client", got.Role)

	_, err = store.LookupSession(ctx, "forged-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.RevokeSession(ctx, token))
	_, err = store.LookupSession(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_ExpiredIsRejectedAndDeleted(t *testing.T) {
	ctx := context.Background()
	store, clock := openTestStore(t)

	token, _, err := store.CreateSession(ctx, "USR-1", "lawyer", 30*time.Minute)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = store.LookupSession(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.LookupSession(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_RevokeUserSessions(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	for i := 0; i < 3; i++ {
		_, _, err := store.CreateSession(ctx, "USR-1", "client", time.Hour)
		require.NoError(t, err)
	}
	other, _, err := store.CreateSession(ctx, "USR-2", "client", time.Hour)
	require.NoError(t, err)

	keep, _, err := store.CreateSession(ctx, "USR-1", "client", time.Hour)
	require.NoError(t, err)
	n, err := store.RevokeOtherSessions(ctx, "USR-1", keep)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	_, err = store.LookupSession(ctx, keep)
	require.NoError(t, err)

	n, err = store.RevokeUserSessions(ctx, "USR-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.LookupSession(ctx, other)
	assert.NoError(t, err)
}

func TestCodes_VerifyConsumesCode(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	code, err := store.IssueCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, 10*time.Minute, 5)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	// a reset code for the same subject lives in its own space
	assert.ErrorIs(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeResetPassword, code), ErrCodeNotFound)

	require.NoError(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, code))
	assert.ErrorIs(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, code), ErrCodeNotFound)
}

func TestCodes_AttemptsExhaust(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	code, err := store.IssueCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, 10*time.Minute, 2)
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	assert.ErrorIs(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, wrong), ErrCodeMismatch)
	assert.ErrorIs(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, wrong), ErrCodeMismatch)
	// the right code no longer helps once attempts are used up
	assert.ErrorIs(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, code), ErrCodeExpired)
	assert.ErrorIs(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeVerifyEmail, code), ErrCodeNotFound)
}

func TestCodes_ExpireAndReissue(t *testing.T) {
	ctx := context.Background()
	store, clock := openTestStore(t)

	first, err := store.IssueCode(ctx, "sara@wakili.sa", PurposeResetPassword, 15*time.Minute, 5)
	require.NoError(t, err)
	clock.Advance(16 * time.Minute)
	assert.ErrorIs(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeResetPassword, first), ErrCodeExpired)

	second, err := store.IssueCode(ctx, "sara@wakili.sa", PurposeResetPassword, 15*time.Minute, 5)
	require.NoError(t, err)
	require.NoError(t, store.VerifyCode(ctx, "sara@wakili.sa", PurposeResetPassword, second))
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	store, clock := openTestStore(t)

	_, _, err := store.CreateSession(ctx, "USR-1", "client", time.Minute)
	require.NoError(t, err)
	live, _, err := store.CreateSession(ctx, "USR-2", "client", time.Hour)
	require.NoError(t, err)
	_, err = store.IssueCode(ctx, "a@wakili.sa", PurposeVerifyEmail, time.Minute, 5)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	_, err = store.LookupSession(ctx, live)
	assert.NoError(t, err)
	require.NoError(t, store.Ping(ctx))
}

func TestSweeper_StartStop(t *testing.T) {
	store, clock := openTestStore(t)
	_, _, err := store.CreateSession(context.Background(), "USR-1", "client", time.Minute)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	sw := NewSweeper(store, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sw.Start(context.Background())

	assert.Eventually(t, func() bool {
		var n int
		if err := store.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
			return false
		}
		return n == 0
	}, time.Second, 10*time.Millisecond)

	sw.Stop()
	sw.Stop()
}

func TestSweeper_StopWithoutStart(t *testing.T) {
	store, _ := openTestStore(t)
	NewSweeper(store, 0, nil).Stop()
}
