package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/repository/repotest"
	"github.com/wakili/backend/internal/validation"
)

var (
	assignedLawyer = Principal{UserID: "USR-L1", Role: domain.RoleLawyer}
	otherLawyer    = Principal{UserID: "USR-L2", Role: domain.RoleLawyer}
)

func newContractFixture() (*ContractReviewService, *repotest.Memory) {
	repo := repotest.New()
	seedClient(repo)
	repo.PutLawyer(domain.Lawyer{ID: "LAW-1", UserID: "USR-L1", FullName: "أحمد العتيبي", Verified: true, Available: true})
	repo.PutLawyer(domain.Lawyer{ID: "LAW-2", UserID: "USR-L2", FullName: "نورة الدوسري", Verified: true, Available: true})
	svc := NewContractReviewService(repo)
	svc.WithClock(fixedClock)
	return svc, repo
}

func contractBody() string {
	return strings.Repeat("يلتزم الطرف الأول بسداد الأجرة في موعدها. ", 3)
}

func TestContractReviewService_Create(t *testing.T) {
	svc, repo := newContractFixture()

	review, err := svc.Create(context.Background(), clientPrincipal, ContractReviewInput{
		Title:        "عقد إيجار تجاري",
		ContractType: "lease",
		Content:      "<p>" + contractBody() + "</p>",
		LawyerID:     "LAW-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewPending, review.Status)
	assert.Equal(t, "USR-1", review.ClientID)
	assert.NotContains(t, review.Content, "<p>")
	assert.Equal(t, fixedNow, review.CreatedAt)

	stored, err := repo.GetContractReview(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, "LAW-1", stored.LawyerID)
}

func TestContractReviewService_CreateValidation(t *testing.T) {
	svc, _ := newContractFixture()

	_, err := svc.Create(context.Background(), clientPrincipal, ContractReviewInput{
		Title:   "ع",
		Content: "<b>قصير</b>",
	})
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "length_between", verrs.Code("title"))
	assert.Equal(t, "required", verrs.Code("contractType"))
	assert.Equal(t, "length_between", verrs.Code("content"))

	_, err = svc.Create(context.Background(), clientPrincipal, ContractReviewInput{
		Title:        "عقد عمل",
		ContractType: "employment",
		Content:      contractBody(),
		LawyerID:     "LAW-404",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContractReviewService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContractFixture()
	review, err := svc.Create(ctx, clientPrincipal, ContractReviewInput{
		Title: "عقد شراكة", ContractType: "partnership", Content: contractBody(), LawyerID: "LAW-1",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, Principal{UserID: "USR-9", Role: domain.RoleClient}, review.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, otherLawyer, review.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, assignedLawyer, review.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, assignedLawyer, review.ID, []string{"ملاحظة"})
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.Start(ctx, otherLawyer, review.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Start(ctx, clientPrincipal, review.ID)
	require.ErrorIs(t, err, ErrForbidden)

	started, err := svc.Start(ctx, assignedLawyer, review.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewInReview, started.Status)
	_, err = svc.Start(ctx, assignedLawyer, review.ID)
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.Complete(ctx, assignedLawyer, review.ID, []string{"  ", ""})
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "required", verrs.Code("findings"))

	done, err := svc.Complete(ctx, assignedLawyer, review.ID, []string{" البند الخامس غامض ", "<i>لا يوجد شرط جزائي</i>"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewCompleted, done.Status)
	assert.Equal(t, []string{"البند الخامس غامض", "لا يوجد شرط جزائي"}, done.Findings)

	owned, err := svc.Get(ctx, clientPrincipal, review.ID)
	require.NoError(t, err)
	assert.Equal(t, done.Findings, owned.Findings)

	_, err = svc.Complete(ctx, assignedLawyer, review.ID, []string{"ملاحظة"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestContractReviewService_CompleteUnassigned(t *testing.T) {
	ctx := context.Background()
	svc, repo := newContractFixture()
	repo.PutReview(domain.ContractReview{ID: "CR-1", ClientID: "USR-1", Status: domain.ReviewPending})

	_, err := svc.Complete(ctx, assignedLawyer, "CR-1", []string{"ملاحظة"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestContractReviewService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo := newContractFixture()
	repo.PutReview(domain.ContractReview{ID: "CR-1", ClientID: "USR-1", LawyerID: "LAW-1"})
	repo.PutReview(domain.ContractReview{ID: "CR-2", ClientID: "USR-1"})
	repo.PutReview(domain.ContractReview{ID: "CR-3", ClientID: "USR-3", LawyerID: "LAW-2"})

	mine, err := svc.List(ctx, clientPrincipal)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assigned, err := svc.List(ctx, assignedLawyer)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "CR-1", assigned[0].ID)

	none, err := svc.List(ctx, Principal{UserID: "USR-L9", Role: domain.RoleLawyer})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.List(ctx, Principal{UserID: "ADM", Role: domain.RoleAdmin})
	require.ErrorIs(t, err, ErrForbidden)
}
