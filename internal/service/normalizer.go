package service

import (
	"math"
	"strings"
	"time"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/textnorm"
)

// canonicalLawyerInput trims and cleans a seed payload before validation.
func canonicalLawyerInput(in LawyerInput) LawyerInput {
	in.ID = strings.TrimSpace(in.ID)
	in.FullName = textnorm.Clean(in.FullName)
	in.Title = textnorm.Clean(in.Title)
	in.City = textnorm.Clean(in.City)
	in.Specializations = textnorm.Codes(in.Specializations)
	in.Languages = textnorm.Codes(in.Languages)
	in.ConsultationFee = roundMoney(in.ConsultationFee)
	in.Bio = textnorm.CleanMultiline(in.Bio)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	return in
}

// normalizeLawyer converts a canonical seed payload into a verified lawyer
// profile.
func normalizeLawyer(in LawyerInput, now time.Time) domain.Lawyer {
	created := now
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		created = in.CreatedAt.UTC()
	}
	return domain.Lawyer{
		ID:                in.ID,
		FullName:          in.FullName,
		Title:             in.Title,
		City:              in.City,
		Specializations:   in.Specializations,
		Languages:         in.Languages,
		YearsOfExperience: in.YearsOfExperience,
		ConsultationFee:   in.ConsultationFee,
		Bio:               in.Bio,
		AvatarURL:         in.AvatarURL,
		Verified:          true,
		Available:         in.Available,
		CreatedAt:         created,
		UpdatedAt:         now,
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
