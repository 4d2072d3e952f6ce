// Package onboarding implements the five-step lawyer application wizard:
// per-step validation, step ordering and the review lifecycle.
package onboarding

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/textnorm"
	"github.com/wakili/backend/internal/validation"
)

var (
	// ErrStepOutOfOrder is returned when an earlier step has not been completed.
	ErrStepOutOfOrder = errors.New("onboarding: previous steps are not completed")
	// ErrApplicationLocked is returned when a submitted or approved application is edited.
	ErrApplicationLocked = errors.New("onboarding: application is locked")
	// ErrIncompleteApplication is returned by Submit when steps are missing or invalid.
	ErrIncompleteApplication = errors.New("onboarding: application is incomplete")
	// ErrInvalidTransition is returned for review decisions outside the submitted state.
	ErrInvalidTransition = errors.New("onboarding: invalid status transition")
)

// IncompleteError details why Submit refused an application. It matches
// ErrIncompleteApplication with errors.Is and unwraps to the field errors.
type IncompleteError struct {
	Missing []domain.Step
	Invalid *validation.Errors
}

func (e *IncompleteError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, 0, len(e.Missing))
		for _, s := range e.Missing {
			names = append(names, s.String())
		}
		return fmt.Sprintf("%s: missing %s", ErrIncompleteApplication, strings.Join(names, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrIncompleteApplication, e.Invalid.Error())
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteApplication
}

func (e *IncompleteError) Unwrap() error {
	if e.Invalid.Empty() {
		return nil
	}
	return e.Invalid
}

// Wizard applies wizard transitions to an Application.
type Wizard struct {
	nowFn func() time.Time
}

// NewWizard constructs a Wizard using the wall clock.
func NewWizard() *Wizard {
	return &Wizard{nowFn: time.Now}
}

// WithClock overrides the time provider (used primarily in tests).
func (w *Wizard) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		w.nowFn = nowFn
	}
}

// NewApplication starts an empty draft for userID.
func NewApplication(userID string, now time.Time) domain.Application {
	now = now.UTC()
	return domain.Application{
		UserID:      userID,
		Status:      domain.ApplicationDraft,
		CurrentStep: domain.StepBasicInfo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Editable reports whether the applicant may still change the application.
func Editable(app domain.Application) bool {
	return app.Status == domain.ApplicationDraft || app.Status == domain.ApplicationRejected
}

// SaveBasicInfo validates and stores step 1.
func (w *Wizard) SaveBasicInfo(app *domain.Application, data domain.BasicInfoData) error {
	now := w.nowFn()
	data = NormalizeBasicInfo(data)
	return w.save(app, domain.StepBasicInfo, ValidateBasicInfo(data, now), func() {
		app.BasicInfo = &data
	})
}

// SaveEducation validates and stores step 2.
func (w *Wizard) SaveEducation(app *domain.Application, data domain.EducationData) error {
	now := w.nowFn()
	data = NormalizeEducation(data)
	return w.save(app, domain.StepEducation, ValidateEducation(data, app.BasicInfo, now), func() {
		app.Education = &data
	})
}

// SaveExperience validates and stores step 3.
func (w *Wizard) SaveExperience(app *domain.Application, data domain.ExperienceData) error {
	data = NormalizeExperience(data)
	return w.save(app, domain.StepExperience, ValidateExperience(data), func() {
		app.Experience = &data
	})
}

// SaveVerification validates and stores step 4.
func (w *Wizard) SaveVerification(app *domain.Application, data domain.VerificationData) error {
	now := w.nowFn()
	data = NormalizeVerification(data)
	return w.save(app, domain.StepVerification, ValidateVerification(data, now), func() {
		app.Verification = &data
	})
}

// save enforces the shared rules of every step: the application must be
// editable, earlier steps completed and the payload valid. Nothing on app
// changes when an error is returned.
func (w *Wizard) save(app *domain.Application, step domain.Step, errs *validation.Errors, store func()) error {
	if !Editable(*app) {
		return ErrApplicationLocked
	}
	for s := domain.StepBasicInfo; s < step; s++ {
		if !app.IsCompleted(s) {
			return fmt.Errorf("%w: %s before %s", ErrStepOutOfOrder, s, step)
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	store()
	if app.Status == domain.ApplicationRejected {
		app.Status = domain.ApplicationDraft
	}
	markCompleted(app, step)
	if next := step + 1; next > app.CurrentStep {
		app.CurrentStep = next
	}
	app.UpdatedAt = w.nowFn().UTC()
	return nil
}

// Submit re-validates every stored step and moves the application to review.
func (w *Wizard) Submit(app *domain.Application) error {
	if !Editable(*app) {
		return ErrApplicationLocked
	}
	now := w.nowFn()

	var missing []domain.Step
	for s := domain.StepBasicInfo; s < domain.StepReview; s++ {
		if !app.IsCompleted(s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}

	invalid := validation.New()
	invalid.Merge(domain.StepBasicInfo.String(), ValidateBasicInfo(*app.BasicInfo, now))
	invalid.Merge(domain.StepEducation.String(), ValidateEducation(*app.Education, app.BasicInfo, now))
	invalid.Merge(domain.StepExperience.String(), ValidateExperience(*app.Experience))
	invalid.Merge(domain.StepVerification.String(), ValidateVerification(*app.Verification, now))
	if !invalid.Empty() {
		return &IncompleteError{Invalid: invalid}
	}

	ts := now.UTC()
	app.Status = domain.ApplicationSubmitted
	app.CurrentStep = domain.StepReview
	app.RejectionReason = ""
	app.SubmittedAt = &ts
	app.ReviewedAt = nil
	app.UpdatedAt = ts
	markCompleted(app, domain.StepReview)
	return nil
}

// Approve accepts a submitted application and returns the lawyer profile to
// publish. The caller assigns the lawyer ID.
func (w *Wizard) Approve(app *domain.Application) (domain.Lawyer, error) {
	if app.Status != domain.ApplicationSubmitted {
		return domain.Lawyer{}, fmt.Errorf("%w: cannot approve %s application", ErrInvalidTransition, app.Status)
	}
	ts := w.nowFn().UTC()
	app.Status = domain.ApplicationApproved
	app.ReviewedAt = &ts
	app.UpdatedAt = ts
	return LawyerFromApplication(*app, ts), nil
}

// Reject returns a submitted application to the applicant with a reason.
func (w *Wizard) Reject(app *domain.Application, reason string) error {
	if app.Status != domain.ApplicationSubmitted {
		return fmt.Errorf("%w: cannot reject %s application", ErrInvalidTransition, app.Status)
	}
	reason = textnorm.Clean(reason)
	errs := validation.New()
	if errs.Check(reason != "", "reason", "reason_required", nil) {
		errs.Var("reason", reason, "max=500")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	ts := w.nowFn().UTC()
	app.Status = domain.ApplicationRejected
	app.RejectionReason = reason
	app.ReviewedAt = &ts
	app.UpdatedAt = ts
	unmarkCompleted(app, domain.StepReview)
	return nil
}

var degreeTitles = map[string]string{
	"bachelor":  "محامٍ",
	"master":    "محامٍ ومستشار قانوني",
	"doctorate": "د. مستشار قانوني",
}

// LawyerFromApplication builds the searchable profile of an approved applicant.
func LawyerFromApplication(app domain.Application, now time.Time) domain.Lawyer {
	lawyer := domain.Lawyer{
		UserID:    app.UserID,
		Verified:  true,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if b := app.BasicInfo; b != nil {
		lawyer.FullName = b.FullName
		lawyer.City = b.City
	}
	if e := app.Education; e != nil {
		lawyer.Title = degreeTitles[e.Degree]
	}
	if x := app.Experience; x != nil {
		lawyer.Specializations = append([]string(nil), x.PracticeAreas...)
		lawyer.Languages = append([]string(nil), x.Languages...)
		lawyer.YearsOfExperience = x.YearsOfExperience
		lawyer.ConsultationFee = x.ConsultationFee
		lawyer.Bio = x.Bio
	}
	return lawyer
}

func markCompleted(app *domain.Application, step domain.Step) {
	if app.IsCompleted(step) {
		return
	}
	app.CompletedSteps = append(app.CompletedSteps, step)
	sort.Slice(app.CompletedSteps, func(i, j int) bool { return app.CompletedSteps[i] < app.CompletedSteps[j] })
}

func unmarkCompleted(app *domain.Application, step domain.Step) {
	kept := app.CompletedSteps[:0]
	for _, s := range app.CompletedSteps {
		if s != step {
			kept = append(kept, s)
		}
	}
	app.CompletedSteps = kept
}
