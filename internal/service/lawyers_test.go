package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/repository"
	"github.com/wakili/backend/internal/repository/repotest"
	"github.com/wakili/backend/internal/validation"
)

func newLawyerService(repo *repotest.Memory) *LawyerService {
	svc := NewLawyerService(repo)
	svc.WithClock(fixedClock)
	return svc
}

func floatPtr(v float64) *float64 { return &v }

func TestLawyerService_Search(t *testing.T) {
	repo := repotest.New()
	repo.LawyerList = domain.LawyerListResult{
		Items: []domain.Lawyer{{ID: "LAW-1", FullName: "أحمد العتيبي"}},
		Total: 1,
	}
	svc := newLawyerService(repo)

	result, err := svc.Search(context.Background(), LawyerSearchParams{
		Page:           0,
		PageSize:       500,
		Search:         "  أحمد ",
		Specialization: "Commercial",
		City:           " الرياض",
		Language:       "EN",
		MinRating:      floatPtr(7),
		MaxFee:         floatPtr(-10),
		AvailableOnly:  true,
		SortField:      "Fee",
		SortOrder:      "ASC",
	})
	require.NoError(t, err)

	want := repository.ListLawyersOptions{
		Offset:         0,
		Limit:          maxPageSize,
		Search:         "أحمد",
		Specialization: "commercial",
		City:           "الرياض",
		Language:       "en",
		MinRating:      5,
		MaxFee:         0,
		AvailableOnly:  true,
		SortField:      "fee",
		SortOrder:      "asc",
	}
	if diff := cmp.Diff(want, repo.LastLawyerOptions()); diff != "" {
		t.Fatalf("unexpected list options (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, 1, result.Pagination.TotalPages)
	assert.Len(t, result.Items, 1)
}

func TestLawyerService_SearchValidation(t *testing.T) {
	svc := newLawyerService(repotest.New())

	_, err := svc.Search(context.Background(), LawyerSearchParams{
		Specialization: "astrology",
		Language:       "de",
		SortField:      "popularity",
		SortOrder:      "sideways",
	})
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "invalid_choice", verrs.Code("specialization"))
	assert.Equal(t, "invalid_choice", verrs.Code("language"))
	assert.Equal(t, "invalid_choice", verrs.Code("sortField"))
	assert.Equal(t, "invalid_choice", verrs.Code("sortOrder"))
}

func TestLawyerService_GetHidesUnverified(t *testing.T) {
	repo := repotest.New()
	repo.PutLawyer(domain.Lawyer{ID: "LAW-2", FullName: "محامٍ تحت المراجعة"})
	svc := newLawyerService(repo)

	_, err := svc.Get(context.Background(), "LAW-2")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Testimonials(context.Background(), "LAW-2", 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLawyerService_UpsertLawyerNormalizes(t *testing.T) {
	repo := repotest.New()
	svc := newLawyerService(repo)

	err := svc.UpsertLawyer(context.Background(), LawyerInput{
		ID:                "LAW-9",
		FullName:          "  نورة   الدوسري ",
		City:              "الدمام",
		Specializations:   []string{"Family", "family", " inheritance "},
		Languages:         []string{"AR", "en", "ar"},
		YearsOfExperience: 8,
		ConsultationFee:   349.999,
		Bio:               "<script>x</script>محامية في الأحوال الشخصية",
		Available:         true,
	})
	require.NoError(t, err)

	got, err := repo.GetLawyer(context.Background(), "LAW-9", false)
	require.NoError(t, err)
	assert.Equal(t, "نورة الدوسري", got.FullName)
	assert.Equal(t, []string{"family", "inheritance"}, got.Specializations)
	assert.Equal(t, []string{"ar", "en"}, got.Languages)
	assert.Equal(t, 350.0, got.ConsultationFee)
	assert.Equal(t, "محامية في الأحوال الشخصية", got.Bio)
	assert.True(t, got.Verified)
	assert.Equal(t, fixedNow, got.CreatedAt)
}

func TestLawyerService_UpsertLawyerValidation(t *testing.T) {
	svc := newLawyerService(repotest.New())
	err := svc.UpsertLawyer(context.Background(), LawyerInput{ID: "LAW-1", FullName: "أحمد", Specializations: []string{"astrology"}})
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs), "got %v", err)
	assert.Equal(t, "required", verrs.Code("city"))
	assert.Equal(t, "invalid_choice", verrs.Code("specializations"))
}

func TestLawyerService_Testimonials(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New()
	seedLawyer(repo, "LAW-1", 300, true)
	svc := newLawyerService(repo)

	require.NoError(t, svc.AddTestimonial(ctx, TestimonialInput{LawyerID: "LAW-1", ClientName: "م. خالد", Rating: 5, Comment: "ممتاز"}))
	require.NoError(t, svc.AddTestimonial(ctx, TestimonialInput{LawyerID: "LAW-1", ClientName: "ريم", Rating: 4}))

	err := svc.AddTestimonial(ctx, TestimonialInput{LawyerID: "LAW-1", ClientName: "ريم", Rating: 6})
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "number_range", verrs.Code("rating"))

	err = svc.AddTestimonial(ctx, TestimonialInput{LawyerID: "LAW-404", ClientName: "ريم", Rating: 3})
	require.ErrorIs(t, err, ErrNotFound)

	list, err := svc.Testimonials(ctx, "LAW-1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, item := range list {
		assert.NotEmpty(t, item.ID)
	}

	lawyer, err := svc.Get(ctx, "LAW-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), lawyer.ReviewsCount)
	assert.InDelta(t, 4.5, lawyer.Rating, 0.001)

	latest, err := svc.LatestTestimonials(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestLawyerService_Specializations(t *testing.T) {
	svc := newLawyerService(repotest.New())
	specs := svc.Specializations()
	require.NotEmpty(t, specs)
	specs[0].Code = "changed"
	assert.NotEqual(t, "changed", domain.Specializations[0].Code)
}

func TestBulkIngestorAggregatesErrors(t *testing.T) {
	repo := repotest.New()
	repo.UpsertLawyerErr = errors.New("boom")
	ingestor := NewBulkIngestor(newLawyerService(repo), 2)

	err := ingestor.IngestLawyers(context.Background(), []LawyerInput{
		{ID: "LAW-1", FullName: "أحمد العتيبي", City: "الرياض", Specializations: []string{"labor"}},
		{ID: "LAW-2", FullName: "نورة الدوسري", City: "الدمام", Specializations: []string{"family"}},
	})
	require.Error(t, err)
	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr), "expected TaskError, got %T", err)
	assert.Len(t, taskErr.Errors, 2)
}

func TestBulkIngestorLoadsLawyersAndTestimonials(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New()
	ingestor := NewBulkIngestor(newLawyerService(repo), 3)

	lawyers := []LawyerInput{
		{ID: "LAW-1", FullName: "أحمد العتيبي", City: "الرياض", Specializations: []string{"labor"}},
		{ID: "LAW-2", FullName: "نورة الدوسري", City: "الدمام", Specializations: []string{"family"}},
	}
	require.NoError(t, ingestor.IngestLawyers(ctx, lawyers))

	var testimonials []TestimonialInput
	for i := 0; i < 10; i++ {
		lawyerID := "LAW-1"
		if i%2 == 1 {
			lawyerID = "LAW-2"
		}
		testimonials = append(testimonials, TestimonialInput{LawyerID: lawyerID, ClientName: "عميل", Rating: 4 + i%2})
	}
	require.NoError(t, ingestor.IngestTestimonials(ctx, testimonials))

	first, err := repo.GetLawyer(ctx, "LAW-1", false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), first.ReviewsCount)
	assert.InDelta(t, 4.0, first.Rating, 0.001)
	second, err := repo.GetLawyer(ctx, "LAW-2", false)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, second.Rating, 0.001)
}
