package onboarding

import (
	"strings"
	"time"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/textnorm"
	"github.com/wakili/backend/internal/validation"
)

const (
	minApplicantAge    = 21
	minGraduationAge   = 18
	earliestGraduation = 1950
)

// NormalizeBasicInfo trims and canonicalises a basic info payload.
func NormalizeBasicInfo(d domain.BasicInfoData) domain.BasicInfoData {
	d.FullName = textnorm.Clean(d.FullName)
	d.Email = textnorm.Email(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.NationalID = strings.TrimSpace(d.NationalID)
	d.City = textnorm.Clean(d.City)
	d.Gender = strings.ToLower(strings.TrimSpace(d.Gender))
	return d
}

// ValidateBasicInfo checks the first wizard page.
func ValidateBasicInfo(d domain.BasicInfoData, now time.Time) *validation.Errors {
	errs := validation.Struct(d)
	if !errs.Has("dateOfBirth") {
		errs.Check(validation.AgeOn(d.DateOfBirth, now) >= minApplicantAge, "dateOfBirth", "min_age", validation.Min(minApplicantAge))
	}
	return errs
}

// NormalizeEducation trims an education payload.
func NormalizeEducation(d domain.EducationData) domain.EducationData {
	d.Degree = strings.ToLower(strings.TrimSpace(d.Degree))
	d.University = textnorm.Clean(d.University)
	d.Major = textnorm.Clean(d.Major)
	d.Certifications = textnorm.CleanList(d.Certifications)
	return d
}

// ValidateEducation checks the education page. basic may be nil when the
// first step was never saved; the birth year rule is then skipped.
func ValidateEducation(d domain.EducationData, basic *domain.BasicInfoData, now time.Time) *validation.Errors {
	errs := validation.Struct(d)
	if errs.Has("graduationYear") {
		return errs
	}
	year := now.UTC().Year()
	if errs.Check(d.GraduationYear >= earliestGraduation && d.GraduationYear <= year, "graduationYear", "year_range", validation.Range(earliestGraduation, year)) &&
		basic != nil && !basic.DateOfBirth.IsZero() {
		errs.Check(d.GraduationYear >= basic.DateOfBirth.UTC().Year()+minGraduationAge, "graduationYear", "graduation_before_adulthood", nil)
	}
	return errs
}

// NormalizeExperience trims an experience payload, strips markup from the
// bio and drops repeated practice areas and languages.
func NormalizeExperience(d domain.ExperienceData) domain.ExperienceData {
	d.PracticeAreas = textnorm.Codes(d.PracticeAreas)
	d.CurrentFirm = textnorm.Clean(d.CurrentFirm)
	d.Bio = textnorm.Clean(d.Bio)
	d.Languages = textnorm.Codes(d.Languages)
	return d
}

// ValidateExperience checks the professional experience page.
func ValidateExperience(d domain.ExperienceData) *validation.Errors {
	return validation.Struct(d)
}

// NormalizeVerification trims a verification payload.
func NormalizeVerification(d domain.VerificationData) domain.VerificationData {
	d.LicenseNumber = strings.ToUpper(strings.TrimSpace(d.LicenseNumber))
	d.BarAssociation = textnorm.Clean(d.BarAssociation)
	d.LicenseDocumentURL = strings.TrimSpace(d.LicenseDocumentURL)
	d.IDDocumentURL = strings.TrimSpace(d.IDDocumentURL)
	return d
}

// ValidateVerification checks the license verification page.
func ValidateVerification(d domain.VerificationData, now time.Time) *validation.Errors {
	errs := validation.Struct(d)
	if !errs.Has("licenseExpiry") {
		errs.Check(d.LicenseExpiry.UTC().After(endOfDay(now)), "licenseExpiry", "license_expired", nil)
	}
	return errs
}

// endOfDay returns the last instant of now's UTC calendar day, so a license
// expiring today is already rejected.
func endOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
