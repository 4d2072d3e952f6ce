package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/notify"
	"github.com/wakili/backend/internal/onboarding"
	"github.com/wakili/backend/internal/validation"
)

const maxApplicationsListed = 100

// ApplicationRepository is the storage contract of the onboarding and admin
// services.
type ApplicationRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetLawyerByUserID(ctx context.Context, userID string) (domain.Lawyer, error)
	GetApplication(ctx context.Context, userID string) (domain.Application, error)
	SaveApplication(ctx context.Context, app domain.Application) error
	ApproveApplication(ctx context.Context, app domain.Application, lawyer domain.Lawyer) error
	ListApplications(ctx context.Context, status string, limit int) ([]domain.Application, error)
}

// ApplicationView pairs the stored application with its wizard progress.
type ApplicationView struct {
	Application domain.Application
	Progress    onboarding.Progress
}

func viewOf(app domain.Application) ApplicationView {
	return ApplicationView{Application: app, Progress: onboarding.ProgressOf(app)}
}

// OnboardingService runs the lawyer application wizard for signed-in lawyers.
type OnboardingService struct {
	repo   ApplicationRepository
	wizard *onboarding.Wizard
	nowFn  func() time.Time
}

// NewOnboardingService constructs an OnboardingService.
func NewOnboardingService(repo ApplicationRepository) *OnboardingService {
	return &OnboardingService{repo: repo, wizard: onboarding.NewWizard(), nowFn: time.Now}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *OnboardingService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
		s.wizard.WithClock(nowFn)
	}
}

// Progress returns the application of p, or a fresh draft when p has not
// saved any step yet.
func (s *OnboardingService) Progress(ctx context.Context, p Principal) (ApplicationView, error) {
	app, err := s.load(ctx, p)
	if err != nil {
		return ApplicationView{}, err
	}
	return viewOf(app), nil
}

// SaveBasicInfo stores the first wizard page.
func (s *OnboardingService) SaveBasicInfo(ctx context.Context, p Principal, data domain.BasicInfoData) (ApplicationView, error) {
	return s.mutate(ctx, p, func(app *domain.Application) error {
		return s.wizard.SaveBasicInfo(app, data)
	})
}

// SaveEducation stores the second wizard page.
func (s *OnboardingService) SaveEducation(ctx context.Context, p Principal, data domain.EducationData) (ApplicationView, error) {
	return s.mutate(ctx, p, func(app *domain.Application) error {
		return s.wizard.SaveEducation(app, data)
	})
}

// SaveExperience stores the third wizard page.
func (s *OnboardingService) SaveExperience(ctx context.Context, p Principal, data domain.ExperienceData) (ApplicationView, error) {
	return s.mutate(ctx, p, func(app *domain.Application) error {
		return s.wizard.SaveExperience(app, data)
	})
}

// SaveVerification stores the fourth wizard page.
func (s *OnboardingService) SaveVerification(ctx context.Context, p Principal, data domain.VerificationData) (ApplicationView, error) {
	return s.mutate(ctx, p, func(app *domain.Application) error {
		return s.wizard.SaveVerification(app, data)
	})
}

// Submit sends the application for review.
func (s *OnboardingService) Submit(ctx context.Context, p Principal) (ApplicationView, error) {
	return s.mutate(ctx, p, s.wizard.Submit)
}

func (s *OnboardingService) mutate(ctx context.Context, p Principal, apply func(*domain.Application) error) (ApplicationView, error) {
	app, err := s.load(ctx, p)
	if err != nil {
		return ApplicationView{}, err
	}
	if err := apply(&app); err != nil {
		return ApplicationView{}, err
	}
	if err := s.repo.SaveApplication(ctx, app); err != nil {
		return ApplicationView{}, err
	}
	return viewOf(app), nil
}

func (s *OnboardingService) load(ctx context.Context, p Principal) (domain.Application, error) {
	if p.Role != domain.RoleLawyer {
		return domain.Application{}, ErrForbidden
	}
	app, err := s.repo.GetApplication(ctx, p.UserID)
	if errors.Is(err, ErrNotFound) {
		return onboarding.NewApplication(p.UserID, s.nowFn().UTC()), nil
	}
	return app, err
}

// AdminService reviews submitted lawyer applications.
type AdminService struct {
	repo     ApplicationRepository
	wizard   *onboarding.Wizard
	notifier notify.Notifier
	logger   *slog.Logger
	idFn     func() string
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo ApplicationRepository, notifier notify.Notifier, logger *slog.Logger) *AdminService {
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		repo:     repo,
		wizard:   onboarding.NewWizard(),
		notifier: notifier,
		logger:   logger.With("component", "admin"),
		idFn:     uuid.NewString,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *AdminService) WithClock(nowFn func() time.Time) {
	s.wizard.WithClock(nowFn)
}

// ListApplications returns applications in status, all when status is empty.
func (s *AdminService) ListApplications(ctx context.Context, status string) ([]ApplicationView, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if errs := validation.New(); !errs.Var("status", status, "omitempty,oneof=draft submitted approved rejected") {
		return nil, errs
	}
	apps, err := s.repo.ListApplications(ctx, status, maxApplicationsListed)
	if err != nil {
		return nil, err
	}
	out := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		out = append(out, viewOf(app))
	}
	return out, nil
}

// Approve accepts the submitted application of userID and publishes a
// verified lawyer profile. A previously published profile keeps its ID.
func (s *AdminService) Approve(ctx context.Context, userID, lang string) (ApplicationView, domain.Lawyer, error) {
	app, err := s.repo.GetApplication(ctx, strings.TrimSpace(userID))
	if err != nil {
		return ApplicationView{}, domain.Lawyer{}, err
	}
	lawyer, err := s.wizard.Approve(&app)
	if err != nil {
		return ApplicationView{}, domain.Lawyer{}, err
	}
	existing, err := s.repo.GetLawyerByUserID(ctx, app.UserID)
	switch {
	case err == nil:
		lawyer.ID = existing.ID
	case errors.Is(err, ErrNotFound):
		lawyer.ID = s.idFn()
	default:
		return ApplicationView{}, domain.Lawyer{}, err
	}
	if err := s.repo.ApproveApplication(ctx, app, lawyer); err != nil {
		return ApplicationView{}, domain.Lawyer{}, err
	}
	s.logger.InfoContext(ctx, "application approved", "user_id", app.UserID, "lawyer_id", lawyer.ID)
	s.notifyDecision(ctx, app, lang)
	return viewOf(app), lawyer, nil
}

// Reject returns the submitted application of userID to its owner.
func (s *AdminService) Reject(ctx context.Context, userID, reason, lang string) (ApplicationView, error) {
	app, err := s.repo.GetApplication(ctx, strings.TrimSpace(userID))
	if err != nil {
		return ApplicationView{}, err
	}
	if err := s.wizard.Reject(&app, reason); err != nil {
		return ApplicationView{}, err
	}
	if err := s.repo.SaveApplication(ctx, app); err != nil {
		return ApplicationView{}, err
	}
	s.logger.InfoContext(ctx, "application rejected", "user_id", app.UserID)
	s.notifyDecision(ctx, app, lang)
	return viewOf(app), nil
}

func (s *AdminService) notifyDecision(ctx context.Context, app domain.Application, lang string) {
	user, err := s.repo.GetUser(ctx, app.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "decision notification skipped", "user_id", app.UserID, "error", err)
		return
	}
	msg := notify.Message{
		Kind: notify.KindApplication,
		To:   user.Email,
		Lang: lang,
		Fields: map[string]string{
			"status": string(app.Status),
			"reason": app.RejectionReason,
		},
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "kind", msg.Kind, "error", err)
	}
}
