package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/textnorm"
	"github.com/wakili/backend/internal/validation"
)

const (
	maxReviewsListed = 100
)

// ContractRepository is the storage contract of the contract review service.
type ContractRepository interface {
	GetLawyer(ctx context.Context, lawyerID string, includeUnverified bool) (domain.Lawyer, error)
	GetLawyerByUserID(ctx context.Context, userID string) (domain.Lawyer, error)
	CreateContractReview(ctx context.Context, cr domain.ContractReview) error
	GetContractReview(ctx context.Context, reviewID string) (domain.ContractReview, error)
	ListContractReviews(ctx context.Context, clientID, lawyerID string, limit int) ([]domain.ContractReview, error)
	UpdateContractReviewStatus(ctx context.Context, reviewID string, status domain.ContractReviewStatus, findings []string, at time.Time) error
}

// ContractReviewService handles contract review requests.
type ContractReviewService struct {
	repo  ContractRepository
	nowFn func() time.Time
	idFn  func() string
}

// NewContractReviewService constructs a ContractReviewService.
func NewContractReviewService(repo ContractRepository) *ContractReviewService {
	return &ContractReviewService{repo: repo, nowFn: time.Now, idFn: uuid.NewString}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *ContractReviewService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Create files a pending review request for the client p.
func (s *ContractReviewService) Create(ctx context.Context, p Principal, in ContractReviewInput) (domain.ContractReview, error) {
	in.Title = textnorm.Clean(in.Title)
	in.ContractType = textnorm.Clean(in.ContractType)
	in.Content = textnorm.CleanMultiline(in.Content)
	in.Notes = textnorm.CleanMultiline(in.Notes)
	in.LawyerID = strings.TrimSpace(in.LawyerID)

	if err := validation.Struct(in).Err(); err != nil {
		return domain.ContractReview{}, err
	}

	if in.LawyerID != "" {
		if _, err := s.repo.GetLawyer(ctx, in.LawyerID, false); err != nil {
			return domain.ContractReview{}, err
		}
	}
	now := s.nowFn().UTC()
	review := domain.ContractReview{
		ID:           s.idFn(),
		ClientID:     p.UserID,
		LawyerID:     in.LawyerID,
		Title:        in.Title,
		ContractType: in.ContractType,
		Content:      in.Content,
		Notes:        in.Notes,
		Status:       domain.ReviewPending,
		Findings:     []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateContractReview(ctx, review); err != nil {
		return domain.ContractReview{}, err
	}
	return review, nil
}

// List returns the requests of a client, or the requests assigned to the
// lawyer profile of a lawyer.
func (s *ContractReviewService) List(ctx context.Context, p Principal) ([]domain.ContractReview, error) {
	switch p.Role {
	case domain.RoleClient:
		return s.repo.ListContractReviews(ctx, p.UserID, "", maxReviewsListed)
	case domain.RoleLawyer:
		lawyer, err := s.repo.GetLawyerByUserID(ctx, p.UserID)
		if errors.Is(err, ErrNotFound) {
			return []domain.ContractReview{}, nil
		}
		if err != nil {
			return nil, err
		}
		return s.repo.ListContractReviews(ctx, "", lawyer.ID, maxReviewsListed)
	default:
		return nil, ErrForbidden
	}
}

// Get returns a request visible to its owner, its assigned lawyer or an admin.
func (s *ContractReviewService) Get(ctx context.Context, p Principal, reviewID string) (domain.ContractReview, error) {
	review, err := s.repo.GetContractReview(ctx, strings.TrimSpace(reviewID))
	if err != nil {
		return domain.ContractReview{}, err
	}
	if review.ClientID == p.UserID || p.Role == domain.RoleAdmin {
		return review, nil
	}
	assigned, err := s.isAssigned(ctx, p, review)
	if err != nil {
		return domain.ContractReview{}, err
	}
	if !assigned {
		return domain.ContractReview{}, ErrForbidden
	}
	return review, nil
}

// Start moves a pending request assigned to p into review.
func (s *ContractReviewService) Start(ctx context.Context, p Principal, reviewID string) (domain.ContractReview, error) {
	review, err := s.assignedReview(ctx, p, reviewID)
	if err != nil {
		return domain.ContractReview{}, err
	}
	if review.Status != domain.ReviewPending {
		return domain.ContractReview{}, ErrConflict
	}
	return s.transition(ctx, review, domain.ReviewInReview, review.Findings)
}

// Complete records the findings of the assigned lawyer and closes a request
// that is in review.
func (s *ContractReviewService) Complete(ctx context.Context, p Principal, reviewID string, findings []string) (domain.ContractReview, error) {
	findings = textnorm.CleanList(findings)
	errs := validation.New()
	if errs.Var("findings", findings, "min=1") {
		errs.Var("findings", findings, "max=50,dive,max=1000")
	}
	if err := errs.Err(); err != nil {
		return domain.ContractReview{}, err
	}

	review, err := s.assignedReview(ctx, p, reviewID)
	if err != nil {
		return domain.ContractReview{}, err
	}
	if review.Status != domain.ReviewInReview {
		return domain.ContractReview{}, ErrConflict
	}
	return s.transition(ctx, review, domain.ReviewCompleted, findings)
}

func (s *ContractReviewService) transition(ctx context.Context, review domain.ContractReview, status domain.ContractReviewStatus, findings []string) (domain.ContractReview, error) {
	now := s.nowFn().UTC()
	if err := s.repo.UpdateContractReviewStatus(ctx, review.ID, status, findings, now); err != nil {
		return domain.ContractReview{}, err
	}
	review.Status = status
	review.Findings = findings
	review.UpdatedAt = now
	return review, nil
}

func (s *ContractReviewService) assignedReview(ctx context.Context, p Principal, reviewID string) (domain.ContractReview, error) {
	review, err := s.repo.GetContractReview(ctx, strings.TrimSpace(reviewID))
	if err != nil {
		return domain.ContractReview{}, err
	}
	assigned, err := s.isAssigned(ctx, p, review)
	if err != nil {
		return domain.ContractReview{}, err
	}
	if !assigned {
		return domain.ContractReview{}, ErrForbidden
	}
	return review, nil
}

func (s *ContractReviewService) isAssigned(ctx context.Context, p Principal, review domain.ContractReview) (bool, error) {
	if p.Role != domain.RoleLawyer || review.LawyerID == "" {
		return false, nil
	}
	lawyer, err := s.repo.GetLawyerByUserID(ctx, p.UserID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return lawyer.ID == review.LawyerID, nil
}
