package domain

import "time"

// Step identifies a page of the lawyer onboarding wizard.
type Step int

const (
	StepBasicInfo Step = iota + 1
	StepEducation
	StepExperience
	StepVerification
	StepReview
)

// TotalSteps is the number of wizard pages including review.
const TotalSteps = int(StepReview)

var stepNames = map[Step]string{
	StepBasicInfo:    "basic_info",
	StepEducation:    "education",
	StepExperience:   "experience",
	StepVerification: "verification",
	StepReview:       "review",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the five wizard steps.
func (s Step) Valid() bool {
	return s >= StepBasicInfo && s <= StepReview
}

// ParseStep converts a step name ("education") back into a Step.
func ParseStep(name string) (Step, bool) {
	for step, n := range stepNames {
		if n == name {
			return step, true
		}
	}
	return 0, false
}

// ApplicationStatus is the lifecycle state of an onboarding application.
type ApplicationStatus string

const (
	ApplicationDraft     ApplicationStatus = "draft"
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// BasicInfoData is the payload of the basic information step.
type BasicInfoData struct {
	FullName    string    `json:"fullName" validate:"required,min=3,max=100"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone" validate:"required,phone"`
	NationalID  string    `json:"nationalId" validate:"required,len=10,number" msg:"invalid_national_id"`
	City        string    `json:"city" validate:"required"`
	Gender      string    `json:"gender" validate:"required,oneof=male female"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required"`
}

// EducationData is the payload of the education step.
type EducationData struct {
	Degree         string   `json:"degree" validate:"required,oneof=bachelor master doctorate"`
	University     string   `json:"university" validate:"required,min=2,max=150"`
	Major          string   `json:"major" validate:"required"`
	GraduationYear int      `json:"graduationYear" validate:"required"`
	Certifications []string `json:"certifications" validate:"max=10,dive,min=2,max=150"`
}

// ExperienceData is the payload of the professional experience step.
type ExperienceData struct {
	YearsOfExperience int      `json:"yearsOfExperience" validate:"gte=0,lte=60"`
	PracticeAreas     []string `json:"practiceAreas" validate:"min=1,max=5,unique,dive,specialization"`
	CurrentFirm       string   `json:"currentFirm" validate:"max=150"`
	Bio               string   `json:"bio" validate:"required,min=50,max=1000"`
	ConsultationFee   float64  `json:"consultationFee" validate:"gte=50,lte=10000"`
	Languages         []string `json:"languages" validate:"min=1,unique,dive,oneof=ar en fr ur"`
}

// VerificationData is the payload of the license verification step.
type VerificationData struct {
	LicenseNumber      string    `json:"licenseNumber" validate:"required,min=5,max=20,alphanum" msg:"invalid_license_number"`
	LicenseExpiry      time.Time `json:"licenseExpiry" validate:"required"`
	BarAssociation     string    `json:"barAssociation" validate:"required"`
	LicenseDocumentURL string    `json:"licenseDocumentUrl" validate:"required,http_url"`
	IDDocumentURL      string    `json:"idDocumentUrl" validate:"required,http_url"`
	AgreedToTerms      bool      `json:"agreedToTerms" validate:"eq=true" msg:"terms_required"`
}

// Application is the persisted state of a lawyer's onboarding wizard.
type Application struct {
	UserID          string
	Status          ApplicationStatus
	CurrentStep     Step
	CompletedSteps  []Step
	BasicInfo       *BasicInfoData
	Education       *EducationData
	Experience      *ExperienceData
	Verification    *VerificationData
	RejectionReason string
	SubmittedAt     *time.Time
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCompleted reports whether step has been saved successfully.
func (a Application) IsCompleted(step Step) bool {
	for _, s := range a.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}
