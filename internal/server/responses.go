package server

import (
	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/onboarding"
	"github.com/wakili/backend/internal/service"
)

type paginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

func toPagination(meta service.PaginationMeta) paginationResponse {
	return paginationResponse{
		Page:       meta.Page,
		PageSize:   meta.PageSize,
		TotalItems: meta.TotalItems,
		TotalPages: meta.TotalPages,
	}
}

type authUserResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	City          string `json:"city,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

func toAuthUser(u domain.AuthUser) authUserResponse {
	return authUserResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		City:          u.City,
		AvatarURL:     u.AvatarURL,
		CreatedAt:     formatTime(u.CreatedAt),
	}
}

type loginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt string           `json:"expiresAt"`
	User      authUserResponse `json:"user"`
}

type notificationsResponse struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

type profileResponse struct {
	User           authUserResponse      `json:"user"`
	Notifications  notificationsResponse `json:"notifications"`
	BookingsCount  int64                 `json:"bookingsCount"`
	FavoritesCount int64                 `json:"favoritesCount"`
}

func toProfile(p domain.ClientProfile) profileResponse {
	return profileResponse{
		User:           toAuthUser(p.User),
		Notifications:  notificationsResponse{Email: p.Notifications.Email, SMS: p.Notifications.SMS},
		BookingsCount:  p.BookingsCount,
		FavoritesCount: p.FavoritesCount,
	}
}

type overviewResponse struct {
	Profile          profileResponse    `json:"profile"`
	UpcomingBookings []bookingResponse  `json:"upcomingBookings"`
	Favorites        []favoriteResponse `json:"favorites"`
}

type lawyerResponse struct {
	ID                string   `json:"id"`
	FullName          string   `json:"fullName"`
	Title             string   `json:"title"`
	City              string   `json:"city"`
	Specializations   []string `json:"specializations"`
	Languages         []string `json:"languages"`
	YearsOfExperience int      `json:"yearsOfExperience"`
	ConsultationFee   float64  `json:"consultationFee"`
	Rating            float64  `json:"rating"`
	ReviewsCount      int64    `json:"reviewsCount"`
	Bio               string   `json:"bio,omitempty"`
	AvatarURL         string   `json:"avatarUrl,omitempty"`
	Verified          bool     `json:"verified"`
	Available         bool     `json:"available"`
	CreatedAt         string   `json:"createdAt"`
}

func toLawyer(l domain.Lawyer) lawyerResponse {
	return lawyerResponse{
		ID:                l.ID,
		FullName:          l.FullName,
		Title:             l.Title,
		City:              l.City,
		Specializations:   nonNil(l.Specializations),
		Languages:         nonNil(l.Languages),
		YearsOfExperience: l.YearsOfExperience,
		ConsultationFee:   l.ConsultationFee,
		Rating:            l.Rating,
		ReviewsCount:      l.ReviewsCount,
		Bio:               l.Bio,
		AvatarURL:         l.AvatarURL,
		Verified:          l.Verified,
		Available:         l.Available,
		CreatedAt:         formatTime(l.CreatedAt),
	}
}

type listLawyersResponse struct {
	Items      []lawyerResponse   `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

type favoriteResponse struct {
	Lawyer  lawyerResponse `json:"lawyer"`
	AddedAt string         `json:"addedAt"`
}

func toFavorites(favs []domain.FavoriteLawyer) []favoriteResponse {
	out := make([]favoriteResponse, 0, len(favs))
	for _, f := range favs {
		out = append(out, favoriteResponse{Lawyer: toLawyer(f.Lawyer), AddedAt: formatTime(f.AddedAt)})
	}
	return out
}

type testimonialResponse struct {
	ID         string `json:"id"`
	LawyerID   string `json:"lawyerId"`
	ClientName string `json:"clientName"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

func toTestimonials(items []domain.Testimonial) []testimonialResponse {
	out := make([]testimonialResponse, 0, len(items))
	for _, t := range items {
		out = append(out, testimonialResponse{
			ID:         t.ID,
			LawyerID:   t.LawyerID,
			ClientName: t.ClientName,
			Rating:     t.Rating,
			Comment:    t.Comment,
			CreatedAt:  formatTime(t.CreatedAt),
		})
	}
	return out
}

type specializationResponse struct {
	Code    string `json:"code"`
	LabelAR string `json:"labelAr"`
	LabelEN string `json:"labelEn"`
}

type bookingResponse struct {
	ID              string  `json:"id"`
	LawyerID        string  `json:"lawyerId"`
	LawyerName      string  `json:"lawyerName"`
	Type            string  `json:"type"`
	ScheduledAt     string  `json:"scheduledAt"`
	DurationMinutes int     `json:"durationMinutes"`
	Fee             float64 `json:"fee"`
	Notes           string  `json:"notes,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toBooking(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		LawyerID:        b.LawyerID,
		LawyerName:      b.LawyerName,
		Type:            string(b.Type),
		ScheduledAt:     formatTime(b.ScheduledAt),
		DurationMinutes: b.DurationMinutes,
		Fee:             b.Fee,
		Notes:           b.Notes,
		Status:          string(b.Status),
		CreatedAt:       formatTime(b.CreatedAt),
		UpdatedAt:       formatTime(b.UpdatedAt),
	}
}

func toBookings(items []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toBooking(b))
	}
	return out
}

type listBookingsResponse struct {
	Items      []bookingResponse  `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

type contractReviewResponse struct {
	ID           string   `json:"id"`
	ClientID     string   `json:"clientId"`
	LawyerID     string   `json:"lawyerId,omitempty"`
	Title        string   `json:"title"`
	ContractType string   `json:"contractType"`
	Content      string   `json:"content"`
	Notes        string   `json:"notes,omitempty"`
	Status       string   `json:"status"`
	Findings     []string `json:"findings"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

func toContractReview(cr domain.ContractReview) contractReviewResponse {
	return contractReviewResponse{
		ID:           cr.ID,
		ClientID:     cr.ClientID,
		LawyerID:     cr.LawyerID,
		Title:        cr.Title,
		ContractType: cr.ContractType,
		Content:      cr.Content,
		Notes:        cr.Notes,
		Status:       string(cr.Status),
		Findings:     nonNil(cr.Findings),
		CreatedAt:    formatTime(cr.CreatedAt),
		UpdatedAt:    formatTime(cr.UpdatedAt),
	}
}

type basicInfoResponse struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	NationalID  string `json:"nationalId"`
	City        string `json:"city"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
}

type verificationResponse struct {
	LicenseNumber      string `json:"licenseNumber"`
	LicenseExpiry      string `json:"licenseExpiry"`
	BarAssociation     string `json:"barAssociation"`
	LicenseDocumentURL string `json:"licenseDocumentUrl"`
	IDDocumentURL      string `json:"idDocumentUrl"`
	AgreedToTerms      bool   `json:"agreedToTerms"`
}

type applicationResponse struct {
	UserID          string                 `json:"userId"`
	Status          string                 `json:"status"`
	CurrentStep     string                 `json:"currentStep"`
	CompletedSteps  []string               `json:"completedSteps"`
	BasicInfo       *basicInfoResponse     `json:"basicInfo,omitempty"`
	Education       *domain.EducationData  `json:"education,omitempty"`
	Experience      *domain.ExperienceData `json:"experience,omitempty"`
	Verification    *verificationResponse  `json:"verification,omitempty"`
	RejectionReason string                 `json:"rejectionReason,omitempty"`
	SubmittedAt     string                 `json:"submittedAt,omitempty"`
	ReviewedAt      string                 `json:"reviewedAt,omitempty"`
	CreatedAt       string                 `json:"createdAt"`
	UpdatedAt       string                 `json:"updatedAt"`
}

type stepStateResponse struct {
	Step      int    `json:"step"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

type progressResponse struct {
	CurrentStep     int                 `json:"currentStep"`
	CurrentStepName string              `json:"currentStepName"`
	CompletedSteps  []int               `json:"completedSteps"`
	Percent         int                 `json:"percent"`
	Status          string              `json:"status"`
	Steps           []stepStateResponse `json:"steps"`
	RejectionReason string              `json:"rejectionReason,omitempty"`
}

type applicationViewResponse struct {
	Application applicationResponse `json:"application"`
	Progress    progressResponse    `json:"progress"`
}

type approvalResponse struct {
	applicationViewResponse
	Lawyer lawyerResponse `json:"lawyer"`
}

func toApplicationView(view service.ApplicationView) applicationViewResponse {
	return applicationViewResponse{
		Application: toApplication(view.Application),
		Progress:    toProgress(view.Progress),
	}
}

func toApplication(app domain.Application) applicationResponse {
	resp := applicationResponse{
		UserID:          app.UserID,
		Status:          string(app.Status),
		CurrentStep:     app.CurrentStep.String(),
		CompletedSteps:  make([]string, 0, len(app.CompletedSteps)),
		Education:       app.Education,
		Experience:      app.Experience,
		RejectionReason: app.RejectionReason,
		SubmittedAt:     formatTimePtr(app.SubmittedAt),
		ReviewedAt:      formatTimePtr(app.ReviewedAt),
		CreatedAt:       formatTime(app.CreatedAt),
		UpdatedAt:       formatTime(app.UpdatedAt),
	}
	for _, step := range app.CompletedSteps {
		resp.CompletedSteps = append(resp.CompletedSteps, step.String())
	}
	if b := app.BasicInfo; b != nil {
		resp.BasicInfo = &basicInfoResponse{
			FullName:    b.FullName,
			Email:       b.Email,
			Phone:       b.Phone,
			NationalID:  b.NationalID,
			City:        b.City,
			Gender:      b.Gender,
			DateOfBirth: formatDate(b.DateOfBirth),
		}
	}
	if v := app.Verification; v != nil {
		resp.Verification = &verificationResponse{
			LicenseNumber:      v.LicenseNumber,
			LicenseExpiry:      formatDate(v.LicenseExpiry),
			BarAssociation:     v.BarAssociation,
			LicenseDocumentURL: v.LicenseDocumentURL,
			IDDocumentURL:      v.IDDocumentURL,
			AgreedToTerms:      v.AgreedToTerms,
		}
	}
	return resp
}

func toProgress(p onboarding.Progress) progressResponse {
	resp := progressResponse{
		CurrentStep:     int(p.CurrentStep),
		CurrentStepName: p.CurrentStep.String(),
		CompletedSteps:  make([]int, 0, len(p.CompletedSteps)),
		Percent:         p.Percent,
		Status:          string(p.Status),
		Steps:           make([]stepStateResponse, 0, len(p.Steps)),
		RejectionReason: p.RejectionReason,
	}
	for _, step := range p.CompletedSteps {
		resp.CompletedSteps = append(resp.CompletedSteps, int(step))
	}
	for _, s := range p.Steps {
		resp.Steps = append(resp.Steps, stepStateResponse{
			Step:      int(s.Step),
			Name:      s.Name,
			Completed: s.Completed,
			Current:   s.Current,
		})
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
