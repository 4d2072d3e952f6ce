package domain

import "time"

// Lawyer is a published, searchable lawyer profile.
type Lawyer struct {
	ID                string
	UserID            string
	FullName          string
	Title             string
	City              string
	Specializations   []string
	Languages         []string
	YearsOfExperience int
	ConsultationFee   float64
	Rating            float64
	ReviewsCount      int64
	Bio               string
	AvatarURL         string
	Verified          bool
	Available         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Testimonial is a client's rating of a lawyer.
type Testimonial struct {
	ID         string
	ClientName string
	LawyerID   string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// Specialization is a practice area with its display labels.
type Specialization struct {
	Code    string
	LabelAR string
	LabelEN string
}

// Specializations lists the practice areas lawyers can be searched by.
var Specializations = []Specialization{
	{Code: "criminal", LabelAR: "القانون الجنائي", LabelEN: "Criminal law"},
	{Code: "family", LabelAR: "الأحوال الشخصية", LabelEN: "Family law"},
	{Code: "commercial", LabelAR: "القانون التجاري", LabelEN: "Commercial law"},
	{Code: "labor", LabelAR: "قانون العمل", LabelEN: "Labor law"},
	{Code: "real_estate", LabelAR: "العقارات", LabelEN: "Real estate"},
	{Code: "corporate", LabelAR: "الشركات", LabelEN: "Corporate law"},
	{Code: "intellectual_property", LabelAR: "الملكية الفكرية", LabelEN: "Intellectual property"},
	{Code: "administrative", LabelAR: "القانون الإداري", LabelEN: "Administrative law"},
	{Code: "banking", LabelAR: "القانون المصرفي", LabelEN: "Banking law"},
	{Code: "inheritance", LabelAR: "المواريث", LabelEN: "Inheritance"},
}

// IsSpecialization reports whether code names a known practice area.
func IsSpecialization(code string) bool {
	for _, s := range Specializations {
		if s.Code == code {
			return true
		}
	}
	return false
}
