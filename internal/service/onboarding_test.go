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
	"github.com/wakili/backend/internal/onboarding"
	"github.com/wakili/backend/internal/repository/repotest"
	"github.com/wakili/backend/internal/validation"
)

var applicant = Principal{UserID: "USR-L1", Role: domain.RoleLawyer}

func basicInfo() domain.BasicInfoData {
	return domain.BasicInfoData{
		FullName:    "عبدالله الشهري",
		Email:       "abdullah@example.sa",
		Phone:       "+966501234567",
		NationalID:  "1012345678",
		City:        "الرياض",
		Gender:      "male",
		DateOfBirth: time.Date(1988, time.May, 4, 0, 0, 0, 0, time.UTC),
	}
}

func education() domain.EducationData {
	return domain.EducationData{
		Degree:         "doctorate",
		University:     "جامعة الملك عبدالعزيز",
		Major:          "القانون",
		GraduationYear: 2014,
	}
}

func experience() domain.ExperienceData {
	return domain.ExperienceData{
		YearsOfExperience: 10,
		PracticeAreas:     []string{"corporate"},
		Bio:               "محامٍ متخصص في تأسيس الشركات وحوكمتها وصياغة عقود المساهمين منذ أكثر من عشر سنوات.",
		ConsultationFee:   500,
		Languages:         []string{"ar"},
	}
}

func verification() domain.VerificationData {
	return domain.VerificationData{
		LicenseNumber:      "SA12345",
		LicenseExpiry:      fixedNow.AddDate(2, 0, 0),
		BarAssociation:     "الهيئة السعودية للمحامين",
		LicenseDocumentURL: "https://files.wakili.sa/l.pdf",
		IDDocumentURL:      "https://files.wakili.sa/id.pdf",
		AgreedToTerms:      true,
	}
}

func newOnboardingFixture() (*OnboardingService, *AdminService, *repotest.Memory, *notify.Recorder) {
	repo := repotest.New()
	repo.PutUser(domain.User{ID: "USR-L1", Email: "abdullah@example.sa", Role: domain.RoleLawyer, EmailVerified: true})
	recorder := &notify.Recorder{}
	svc := NewOnboardingService(repo)
	svc.WithClock(fixedClock)
	admin := NewAdminService(repo, recorder, discardLogger())
	admin.WithClock(fixedClock)
	return svc, admin, repo, recorder
}

func submitApplication(t *testing.T, svc *OnboardingService) ApplicationView {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SaveBasicInfo(ctx, applicant, basicInfo())
	require.NoError(t, err)
	_, err = svc.SaveEducation(ctx, applicant, education())
	require.NoError(t, err)
	_, err = svc.SaveExperience(ctx, applicant, experience())
	require.NoError(t, err)
	_, err = svc.SaveVerification(ctx, applicant, verification())
	require.NoError(t, err)
	view, err := svc.Submit(ctx, applicant)
	require.NoError(t, err)
	return view
}

func TestOnboardingService_RequiresLawyerRole(t *testing.T) {
	svc, _, _, _ := newOnboardingFixture()
	_, err := svc.Progress(context.Background(), clientPrincipal)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.SaveBasicInfo(context.Background(), clientPrincipal, basicInfo())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestOnboardingService_ProgressOfNewApplicant(t *testing.T) {
	svc, _, repo, _ := newOnboardingFixture()

	view, err := svc.Progress(context.Background(), applicant)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationDraft, view.Progress.Status)
	assert.Equal(t, domain.StepBasicInfo, view.Progress.CurrentStep)
	assert.Equal(t, 0, view.Progress.Percent)
	assert.Zero(t, repo.SaveApplicationCalls())
}

func TestOnboardingService_StepsPersistAndResume(t *testing.T) {
	ctx := context.Background()
	svc, _, repo, _ := newOnboardingFixture()

	_, err := svc.SaveEducation(ctx, applicant, education())
	require.ErrorIs(t, err, onboarding.ErrStepOutOfOrder)

	bad := basicInfo()
	bad.NationalID = "12"
	_, err = svc.SaveBasicInfo(ctx, applicant, bad)
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "invalid_national_id", verrs.Code("nationalId"))
	assert.Zero(t, repo.SaveApplicationCalls())

	view, err := svc.SaveBasicInfo(ctx, applicant, basicInfo())
	require.NoError(t, err)
	assert.Equal(t, domain.StepEducation, view.Progress.CurrentStep)
	assert.Equal(t, 20, view.Progress.Percent)

	resumed, err := svc.Progress(ctx, applicant)
	require.NoError(t, err)
	assert.Equal(t, view.Progress, resumed.Progress)
	require.NotNil(t, resumed.Application.BasicInfo)
	assert.Equal(t, "عبدالله الشهري", resumed.Application.BasicInfo.FullName)
}

func TestOnboardingService_SubmitIncomplete(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newOnboardingFixture()
	_, err := svc.SaveBasicInfo(ctx, applicant, basicInfo())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, applicant)
	require.ErrorIs(t, err, onboarding.ErrIncompleteApplication)
	var incomplete *onboarding.IncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []domain.Step{domain.StepEducation, domain.StepExperience, domain.StepVerification}, incomplete.Missing)
}

func TestOnboardingService_SubmitLocksApplication(t *testing.T) {
	svc, _, _, _ := newOnboardingFixture()
	view := submitApplication(t, svc)
	assert.Equal(t, domain.ApplicationSubmitted, view.Progress.Status)
	assert.Equal(t, 100, view.Progress.Percent)
	require.NotNil(t, view.Application.SubmittedAt)

	_, err := svc.SaveBasicInfo(context.Background(), applicant, basicInfo())
	require.ErrorIs(t, err, onboarding.ErrApplicationLocked)
}

func TestAdminService_ApprovePublishesLawyer(t *testing.T) {
	ctx := context.Background()
	svc, admin, repo, recorder := newOnboardingFixture()
	submitApplication(t, svc)

	pending, err := admin.ListApplications(ctx, "Submitted")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	view, lawyer, err := admin.Approve(ctx, "USR-L1", "ar")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApproved, view.Progress.Status)
	assert.NotEmpty(t, lawyer.ID)
	assert.Equal(t, "USR-L1", lawyer.UserID)
	assert.Equal(t, "د. مستشار قانوني", lawyer.Title)
	assert.True(t, lawyer.Verified)

	published, err := repo.GetLawyerByUserID(ctx, "USR-L1")
	require.NoError(t, err)
	assert.Equal(t, lawyer.ID, published.ID)

	msg, ok := recorder.Last(notify.KindApplication)
	require.True(t, ok)
	assert.Equal(t, "approved", msg.Fields["status"])
	assert.Equal(t, "abdullah@example.sa", msg.To)

	_, _, err = admin.Approve(ctx, "USR-L1", "ar")
	require.ErrorIs(t, err, onboarding.ErrInvalidTransition)
}

func TestAdminService_RejectAndResubmit(t *testing.T) {
	ctx := context.Background()
	svc, admin, _, recorder := newOnboardingFixture()
	submitApplication(t, svc)

	_, err := admin.Reject(ctx, "USR-L1", "  ", "ar")
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "reason_required", verrs.Code("reason"))

	view, err := admin.Reject(ctx, "USR-L1", "صورة الرخصة غير واضحة", "ar")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, view.Progress.Status)
	assert.Equal(t, "صورة الرخصة غير واضحة", view.Progress.RejectionReason)
	msg, ok := recorder.Last(notify.KindApplication)
	require.True(t, ok)
	assert.Equal(t, "rejected", msg.Fields["status"])

	edited, err := svc.SaveVerification(ctx, applicant, verification())
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationDraft, edited.Progress.Status)

	resubmitted, err := svc.Submit(ctx, applicant)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationSubmitted, resubmitted.Progress.Status)
	assert.Empty(t, resubmitted.Progress.RejectionReason)
}

func TestAdminService_ListApplicationsValidation(t *testing.T) {
	_, admin, _, _ := newOnboardingFixture()
	_, err := admin.ListApplications(context.Background(), "archived")
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))

	_, _, err = admin.Approve(context.Background(), "USR-404", "ar")
	require.ErrorIs(t, err, ErrNotFound)
}
