package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/notify"
	"github.com/wakili/backend/internal/repository"
	"github.com/wakili/backend/internal/sessionstore"
	"github.com/wakili/backend/internal/textnorm"
	"github.com/wakili/backend/internal/validation"
)

// UserStore is the account storage contract of the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, hash string, at time.Time) error
}

// SessionStore keeps bearer sessions and one-time codes.
type SessionStore interface {
	CreateSession(ctx context.Context, userID, role string, ttl time.Duration) (string, sessionstore.Session, error)
	LookupSession(ctx context.Context, token string) (sessionstore.Session, error)
	RevokeSession(ctx context.Context, token string) error
	RevokeUserSessions(ctx context.Context, userID string) (int64, error)
	RevokeOtherSessions(ctx context.Context, userID, keepToken string) (int64, error)
	IssueCode(ctx context.Context, subject string, purpose sessionstore.Purpose, ttl time.Duration, maxAttempts int) (string, error)
	VerifyCode(ctx context.Context, subject string, purpose sessionstore.Purpose, code string) error
}

// AuthOptions tunes token lifetimes and hashing.
type AuthOptions struct {
	SessionTTL      time.Duration
	CodeTTL         time.Duration
	ResetTTL        time.Duration
	MaxCodeAttempts int
	BcryptCost      int
}

func (o AuthOptions) withDefaults() AuthOptions {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 24 * time.Hour
	}
	if o.CodeTTL <= 0 {
		o.CodeTTL = 10 * time.Minute
	}
	if o.ResetTTL <= 0 {
		o.ResetTTL = 15 * time.Minute
	}
	if o.MaxCodeAttempts <= 0 {
		o.MaxCodeAttempts = 5
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	return o
}

// AuthService implements registration, email verification, sign-in and
// password management.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	notifier notify.Notifier
	opts     AuthOptions
	logger   *slog.Logger
	nowFn    func() time.Time
	idFn     func() string

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore, sessions SessionStore, notifier notify.Notifier, opts AuthOptions, logger *slog.Logger) *AuthService {
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		notifier: notifier,
		opts:     opts.withDefaults(),
		logger:   logger.With("component", "auth"),
		nowFn:    time.Now,
		idFn:     uuid.NewString,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *AuthService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Register creates an unverified account and emails a verification code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.AuthUser, error) {
	in.FullName = textnorm.Clean(in.FullName)
	in.Email = textnorm.Email(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = string(domain.RoleClient)
	}

	if err := validation.Struct(in).Err(); err != nil {
		return domain.AuthUser{}, err
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return domain.AuthUser{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return domain.AuthUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return domain.AuthUser{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.nowFn().UTC()
	user := domain.User{
		ID:            s.idFn(),
		FullName:      in.FullName,
		Email:         in.Email,
		Phone:         textnorm.Phone(in.Phone),
		Role:          domain.Role(in.Role),
		PasswordHash:  string(hash),
		Notifications: domain.NotificationPrefs{Email: true},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.AuthUser{}, ErrEmailTaken
		}
		return domain.AuthUser{}, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	if err := s.sendCode(ctx, user, sessionstore.PurposeVerifyEmail, notify.KindVerifyEmail, s.opts.CodeTTL, in.Lang); err != nil {
		return domain.AuthUser{}, err
	}
	return user.Public(), nil
}

// VerifyEmail consumes the verification code of email.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = textnorm.Email(email)
	code = strings.TrimSpace(code)
	if err := checkCodeInput(email, code); err != nil {
		return err
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if err := s.verifyCode(ctx, user.ID, sessionstore.PurposeVerifyEmail, code); err != nil {
		return err
	}
	return s.users.MarkEmailVerified(ctx, user.ID, s.nowFn().UTC())
}

// ResendVerification issues a fresh verification code. Unknown or already
// verified addresses are ignored silently.
func (s *AuthService) ResendVerification(ctx context.Context, email, lang string) error {
	user, err := s.users.GetUserByEmail(ctx, textnorm.Email(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.sendCode(ctx, user, sessionstore.PurposeVerifyEmail, notify.KindVerifyEmail, s.opts.CodeTTL, lang)
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = textnorm.Email(email)
	errs := validation.New()
	errs.Var("email", email, "required")
	errs.Var("password", password, "required")
	if err := errs.Err(); err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// keep the response time close to a real comparison
			_ = bcrypt.CompareHashAndPassword(s.timingHash(), []byte(password))
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return LoginResult{}, ErrEmailNotVerified
	}

	token, sess, err := s.sessions.CreateSession(ctx, user.ID, string(user.Role), s.opts.SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}
	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID)
	return LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: user.Public()}, nil
}

// ForgetPassword emails a reset code when the address belongs to an account.
func (s *AuthService) ForgetPassword(ctx context.Context, email, lang string) error {
	user, err := s.users.GetUserByEmail(ctx, textnorm.Email(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.DebugContext(ctx, "password reset for unknown email")
			return nil
		}
		return err
	}
	return s.sendCode(ctx, user, sessionstore.PurposeResetPassword, notify.KindPasswordReset, s.opts.ResetTTL, lang)
}

// ResetPassword sets a new password with a reset code and signs the user out
// everywhere. A successful reset also proves ownership of the address.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = textnorm.Email(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	if err := validation.Struct(in).Err(); err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if err := s.verifyCode(ctx, user.ID, sessionstore.PurposeResetPassword, in.Code); err != nil {
		return err
	}
	if err := s.setPassword(ctx, user.ID, in.NewPassword); err != nil {
		return err
	}
	now := s.nowFn().UTC()
	if !user.EmailVerified {
		if err := s.users.MarkEmailVerified(ctx, user.ID, now); err != nil {
			return err
		}
	}
	revoked, err := s.sessions.RevokeUserSessions(ctx, user.ID)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID, "sessions_revoked", revoked)
	s.notify(ctx, notify.Message{Kind: notify.KindPasswordChanged, To: user.Email, Lang: in.Lang})
	return nil
}

// Authenticate resolves a bearer token into the calling principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrUnauthorized
	}
	sess, err := s.sessions.LookupSession(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, sessionstore.ErrSessionExpired):
		return Principal{}, ErrSessionExpired
	case errors.Is(err, sessionstore.ErrSessionNotFound):
		return Principal{}, ErrUnauthorized
	default:
		return Principal{}, err
	}
	return Principal{UserID: sess.UserID, Role: domain.Role(sess.Role), ExpiresAt: sess.ExpiresAt}, nil
}

// Me returns the account of the principal.
func (s *AuthService) Me(ctx context.Context, p Principal) (domain.AuthUser, error) {
	user, err := s.users.GetUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.AuthUser{}, ErrUnauthorized
		}
		return domain.AuthUser{}, err
	}
	return user.Public(), nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.sessions.RevokeSession(ctx, token)
	if errors.Is(err, sessionstore.ErrSessionNotFound) {
		return nil
	}
	return err
}

// ChangePassword replaces the password of a signed-in user and closes every
// other session of that user.
func (s *AuthService) ChangePassword(ctx context.Context, p Principal, token string, in ChangePasswordInput) error {
	if err := validation.Struct(in).Err(); err != nil {
		return err
	}

	user, err := s.users.GetUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return ErrWrongPassword
	}
	if err := s.setPassword(ctx, user.ID, in.NewPassword); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeOtherSessions(ctx, user.ID, token); err != nil {
		return err
	}
	s.notify(ctx, notify.Message{Kind: notify.KindPasswordChanged, To: user.Email, Lang: in.Lang})
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash), s.nowFn().UTC())
}

func (s *AuthService) sendCode(ctx context.Context, user domain.User, purpose sessionstore.Purpose, kind notify.Kind, ttl time.Duration, lang string) error {
	code, err := s.sessions.IssueCode(ctx, user.ID, purpose, ttl, s.opts.MaxCodeAttempts)
	if err != nil {
		return fmt.Errorf("issue %s code: %w", purpose, err)
	}
	s.notify(ctx, notify.Message{
		Kind: kind,
		To:   user.Email,
		Lang: lang,
		Fields: map[string]string{
			"name":       user.FullName,
			"code":       code,
			"expires_in": ttl.String(),
		},
	})
	return nil
}

func (s *AuthService) verifyCode(ctx context.Context, subject string, purpose sessionstore.Purpose, code string) error {
	err := s.sessions.VerifyCode(ctx, subject, purpose, code)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sessionstore.ErrCodeMismatch):
		return ErrInvalidCode
	case errors.Is(err, sessionstore.ErrCodeExpired), errors.Is(err, sessionstore.ErrCodeNotFound):
		return ErrCodeExpired
	default:
		return err
	}
}

// notify delivers msg; delivery failures are logged, never surfaced.
func (s *AuthService) notify(ctx context.Context, msg notify.Message) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "kind", msg.Kind, "error", err)
	}
}

func (s *AuthService) timingHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.idFn()), s.opts.BcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// codeInput is a verification code submission.
type codeInput struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required,len=6,number" msg:"invalid_code_format"`
}

func checkCodeInput(email, code string) error {
	return validation.Struct(codeInput{Email: email, Code: code}).Err()
}
