package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/repository"
	"github.com/wakili/backend/internal/textnorm"
	"github.com/wakili/backend/internal/validation"
)

const (
	defaultTestimonials = 6
	maxTestimonials     = 50
	maxRating           = 5
)

// LawyerRepository is the storage contract of the lawyer directory.
type LawyerRepository interface {
	UpsertLawyer(ctx context.Context, lawyer domain.Lawyer) error
	GetLawyer(ctx context.Context, lawyerID string, includeUnverified bool) (domain.Lawyer, error)
	ListLawyers(ctx context.Context, opts repository.ListLawyersOptions) (domain.LawyerListResult, error)
	AddTestimonial(ctx context.Context, t domain.Testimonial) error
	ListTestimonials(ctx context.Context, lawyerID string, limit int) ([]domain.Testimonial, error)
	LatestTestimonials(ctx context.Context, limit int) ([]domain.Testimonial, error)
}

// LawyerService serves the public lawyer directory and seeds it.
type LawyerService struct {
	repo  LawyerRepository
	nowFn func() time.Time
}

// NewLawyerService constructs a LawyerService.
func NewLawyerService(repo LawyerRepository) *LawyerService {
	return &LawyerService{repo: repo, nowFn: time.Now}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *LawyerService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Search retrieves paginated verified lawyers matching the filters.
func (s *LawyerService) Search(ctx context.Context, params LawyerSearchParams) (LawyersPage, error) {
	params.Specialization = strings.ToLower(strings.TrimSpace(params.Specialization))
	params.Language = strings.ToLower(strings.TrimSpace(params.Language))
	params.SortField = strings.ToLower(strings.TrimSpace(params.SortField))
	params.SortOrder = strings.ToLower(strings.TrimSpace(params.SortOrder))
	if err := validation.Struct(params).Err(); err != nil {
		return LawyersPage{}, err
	}

	page, pageSize := normalizePagination(params.Page, params.PageSize)
	minRating := 0.0
	if params.MinRating != nil {
		minRating = clampFloat(*params.MinRating, 0, maxRating)
	}
	maxFee := 0.0
	if params.MaxFee != nil {
		maxFee = clampFloat(*params.MaxFee, 0, 0)
	}

	result, err := s.repo.ListLawyers(ctx, repository.ListLawyersOptions{
		Offset:         (page - 1) * pageSize,
		Limit:          pageSize,
		Search:         strings.TrimSpace(params.Search),
		Specialization: params.Specialization,
		City:           strings.TrimSpace(params.City),
		Language:       params.Language,
		MinRating:      minRating,
		MaxFee:         maxFee,
		AvailableOnly:  params.AvailableOnly,
		SortField:      params.SortField,
		SortOrder:      params.SortOrder,
	})
	if err != nil {
		return LawyersPage{}, err
	}
	return LawyersPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

// Get returns a verified lawyer profile.
func (s *LawyerService) Get(ctx context.Context, lawyerID string) (domain.Lawyer, error) {
	return s.repo.GetLawyer(ctx, strings.TrimSpace(lawyerID), false)
}

// Testimonials lists the latest testimonials of a verified lawyer.
func (s *LawyerService) Testimonials(ctx context.Context, lawyerID string, limit int) ([]domain.Testimonial, error) {
	if _, err := s.Get(ctx, lawyerID); err != nil {
		return nil, err
	}
	return s.repo.ListTestimonials(ctx, strings.TrimSpace(lawyerID), clampLimit(limit, defaultTestimonials, maxTestimonials))
}

// LatestTestimonials lists the most recent testimonials across all lawyers.
func (s *LawyerService) LatestTestimonials(ctx context.Context, limit int) ([]domain.Testimonial, error) {
	return s.repo.LatestTestimonials(ctx, clampLimit(limit, defaultTestimonials, maxTestimonials))
}

// Specializations returns the practice areas lawyers can be searched by.
func (s *LawyerService) Specializations() []domain.Specialization {
	return append([]domain.Specialization(nil), domain.Specializations...)
}

// UpsertLawyer validates and stores a seeded lawyer profile.
func (s *LawyerService) UpsertLawyer(ctx context.Context, in LawyerInput) error {
	in = canonicalLawyerInput(in)
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if err := validation.Struct(in).Err(); err != nil {
		return fmt.Errorf("lawyer %s: %w", in.ID, err)
	}
	return s.repo.UpsertLawyer(ctx, normalizeLawyer(in, s.nowFn().UTC()))
}

// AddTestimonial validates and stores a testimonial, refreshing the rating of
// the lawyer it is about.
func (s *LawyerService) AddTestimonial(ctx context.Context, in TestimonialInput) error {
	in.ID = strings.TrimSpace(in.ID)
	in.LawyerID = strings.TrimSpace(in.LawyerID)
	in.ClientName = textnorm.Clean(in.ClientName)
	in.Comment = textnorm.CleanMultiline(in.Comment)
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if err := validation.Struct(in).Err(); err != nil {
		return fmt.Errorf("testimonial %s: %w", in.ID, err)
	}

	t := domain.Testimonial{
		ID:         in.ID,
		LawyerID:   in.LawyerID,
		ClientName: in.ClientName,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  s.nowFn().UTC(),
	}
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		t.CreatedAt = in.CreatedAt.UTC()
	}
	if err := s.repo.AddTestimonial(ctx, t); err != nil {
		return fmt.Errorf("testimonial %s for lawyer %s: %w", t.ID, t.LawyerID, err)
	}
	return nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
