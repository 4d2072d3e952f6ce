package domain

import "time"

// ContractReviewStatus tracks a review request.
type ContractReviewStatus string

const (
	ReviewPending   ContractReviewStatus = "pending"
	ReviewInReview  ContractReviewStatus = "in_review"
	ReviewCompleted ContractReviewStatus = "completed"
)

// ContractReview is a client's request to have a contract reviewed.
type ContractReview struct {
	ID           string
	ClientID     string
	LawyerID     string
	Title        string
	ContractType string
	Content      string
	Notes        string
	Status       ContractReviewStatus
	Findings     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
