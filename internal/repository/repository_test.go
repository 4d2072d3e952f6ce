package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/graph"
)

func TestRepository_CreateUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	user := domain.User{
		ID:           "USR-001",
		FullName:     "سارة القحطاني",
		Email:        "sara@wakili.sa",
		Phone:        "+966501234567",
		Role:         domain.RoleClient,
		PasswordHash: "$2a$12$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	call := calls[0]
	if call.Query != createUserCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", createUserCypher, call.Query)
	}
	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["email"] != user.Email || props["role"] != "client" {
		t.Errorf("unexpected props %v", props)
	}
	if props["createdAt"] != "2026-03-01T09:00:00Z" {
		t.Errorf("expected RFC3339 createdAt, got %v", props["createdAt"])
	}
}

func TestRepository_CreateUser_DuplicateEmail(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteError(graph.ErrConstraintViolation)
	repo := New(mem)

	err := repo.CreateUser(context.Background(), domain.User{ID: "USR-002", Email: "taken@wakili.sa"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRepository_GetUserByEmail(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadRecords(graph.Record{"user": map[string]any{
		"userId":        "USR-001",
		"fullName":      "سارة القحطاني",
		"email":         "sara@wakili.sa",
		"role":          "lawyer",
		"emailVerified": true,
		"notifyEmail":   true,
		"createdAt":     "2026-03-01T09:00:00Z",
	}})
	repo := New(mem)

	user, err := repo.GetUserByEmail(context.Background(), "sara@wakili.sa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != domain.RoleLawyer || !user.EmailVerified || !user.Notifications.Email || user.Notifications.SMS {
		t.Errorf("unexpected user %+v", user)
	}
	if !user.CreatedAt.Equal(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected createdAt %v", user.CreatedAt)
	}

	if _, err := repo.GetUserByEmail(context.Background(), "ghost@wakili.sa"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_UpdatePassword_Missing(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	err := repo.UpdatePassword(context.Background(), "USR-404", "hash", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_UpsertLawyer_FoldsSearchKeys(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	lawyer := domain.Lawyer{
		ID:              "LAW-001",
		FullName:        "أحمد الزهراني",
		City:            "الرياض",
		Specializations: []string{"criminal"},
		Verified:        true,
	}
	if err := repo.UpsertLawyer(context.Background(), lawyer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := mem.WriteCalls()[0]
	props := call.Params["props"].(map[string]any)
	if props["searchName"] != "احمد الزهراني" {
		t.Errorf("expected folded search name, got %v", props["searchName"])
	}
	if langs, ok := props["languages"].([]string); !ok || langs == nil {
		t.Errorf("expected empty languages slice, got %#v", props["languages"])
	}
}

func TestRepository_ListLawyers(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadRecords(graph.Record{"lawyer": map[string]any{
		"lawyerId":          "LAW-001",
		"fullName":          "أحمد الزهراني",
		"specializations":   []any{"criminal", "family"},
		"languages":         []any{"ar"},
		"yearsOfExperience": int64(12),
		"consultationFee":   350.0,
		"rating":            4.8,
		"reviewsCount":      int64(31),
		"verified":          true,
		"available":         true,
	}})
	mem.PushReadRecords(graph.Record{"total": int64(7)})
	repo := New(mem)

	res, err := repo.ListLawyers(context.Background(), ListLawyersOptions{
		Offset:    20,
		Limit:     500,
		Search:    "  أَحمد ",
		City:      "الرياض",
		SortField: "fee",
		SortOrder: "asc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 7 || len(res.Items) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	want := domain.Lawyer{
		ID:                "LAW-001",
		FullName:          "أحمد الزهراني",
		Specializations:   []string{"criminal", "family"},
		Languages:         []string{"ar"},
		YearsOfExperience: 12,
		ConsultationFee:   350,
		Rating:            4.8,
		ReviewsCount:      31,
		Verified:          true,
		Available:         true,
	}
	if diff := cmp.Diff(want, res.Items[0]); diff != "" {
		t.Errorf("lawyer mismatch (-want +got):\n%s", diff)
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected list and count queries, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Query, "ORDER BY coalesce(l.consultationFee, 0.0) ASC") {
		t.Errorf("expected fee ordering, got\n%s", calls[0].Query)
	}
	params := calls[0].Params
	if params["search"] != "احمد" || params["city"] != "الرياض" {
		t.Errorf("expected folded filters, got search=%v city=%v", params["search"], params["city"])
	}
	if params["limit"] != maxLimit || params["skip"] != 20 {
		t.Errorf("expected clamped paging, got skip=%v limit=%v", params["skip"], params["limit"])
	}
}

func TestLawyerOrderClause_DefaultsToRating(t *testing.T) {
	got := lawyerOrderClause("", "")
	if !strings.HasPrefix(got, "coalesce(l.rating, 0.0) DESC") {
		t.Fatalf("unexpected default order %q", got)
	}
}

func TestRepository_GetLawyer_HidesUnverified(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadRecords(graph.Record{"lawyer": map[string]any{"lawyerId": "LAW-9", "verified": false}})
	mem.PushReadRecords(graph.Record{"lawyer": map[string]any{"lawyerId": "LAW-9", "verified": false}})
	repo := New(mem)

	if _, err := repo.GetLawyer(context.Background(), "LAW-9", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unverified lawyer, got %v", err)
	}
	if _, err := repo.GetLawyer(context.Background(), "LAW-9", true); err != nil {
		t.Fatalf("expected lawyer when unverified allowed, got %v", err)
	}
}

func TestRepository_AddFavorite_UnknownLawyer(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	err := repo.AddFavorite(context.Background(), "USR-1", "LAW-404", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ListBookings(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadRecords(graph.Record{"booking": map[string]any{
		"bookingId":       "BK-1",
		"clientId":        "USR-1",
		"lawyerId":        "LAW-1",
		"type":            "video",
		"scheduledAt":     "2026-03-05T15:00:00Z",
		"durationMinutes": int64(60),
		"fee":             300.0,
		"status":          "confirmed",
	}})
	mem.PushReadRecords(graph.Record{"total": int64(1)})
	repo := New(mem)

	res, err := repo.ListBookings(context.Background(), ListBookingsOptions{ClientID: "USR-1", Status: " Confirmed "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Items[0].DurationMinutes != 60 || res.Items[0].Type != domain.BookingVideo {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := mem.ReadCalls()[0].Params["status"]; got != "confirmed" {
		t.Errorf("expected normalised status, got %v", got)
	}
}

func TestRepository_ApplicationRoundTrip(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	submitted := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	app := domain.Application{
		UserID:         "USR-7",
		Status:         domain.ApplicationSubmitted,
		CurrentStep:    domain.StepReview,
		CompletedSteps: []domain.Step{1, 2, 3, 4, 5},
		BasicInfo:      &domain.BasicInfoData{FullName: "خالد العتيبي", DateOfBirth: time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC)},
		Experience:     &domain.ExperienceData{PracticeAreas: []string{"labor"}, ConsultationFee: 300},
		SubmittedAt:    &submitted,
		CreatedAt:      submitted,
		UpdatedAt:      submitted,
	}
	mem.PushWriteRecords(graph.Record{"userId": "USR-7"})
	if err := repo.SaveApplication(context.Background(), app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SaveApplication(context.Background(), app); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound when the owner is missing, got %v", err)
	}

	props := mem.WriteCalls()[0].Params["props"].(map[string]any)
	if props["educationJson"] != "" {
		t.Errorf("expected empty education payload, got %v", props["educationJson"])
	}

	// feed the written properties back as the stored node
	stored := map[string]any{"userId": "USR-7"}
	for k, v := range props {
		stored[k] = v
	}
	steps := []any{}
	for _, s := range props["completedSteps"].([]int64) {
		steps = append(steps, s)
	}
	stored["completedSteps"] = steps
	mem.PushReadRecords(graph.Record{"application": stored})

	got, err := repo.GetApplication(context.Background(), "USR-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(app, got); diff != "" {
		t.Errorf("application mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_ApproveApplication_UsesOneBatch(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	app := domain.Application{UserID: "USR-7", Status: domain.ApplicationApproved}
	lawyer := domain.Lawyer{ID: "LAW-7", UserID: "USR-7", FullName: "خالد العتيبي", Verified: true}
	if err := repo.ApproveApplication(context.Background(), app, lawyer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := mem.WriteCalls()
	if len(calls) != 2 || calls[0].Query != saveApplicationCypher || calls[1].Query != upsertLawyerCypher {
		t.Fatalf("unexpected batch %+v", calls)
	}
}

func TestRepository_EnsureSchema(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := mem.WriteCalls()
	if len(calls) != len(schemaStatements) {
		t.Fatalf("expected %d schema statements, got %d", len(schemaStatements), len(calls))
	}
	for i, call := range calls {
		if call.Query != schemaStatements[i] {
			t.Fatalf("statement %d ran out of order: %q", i, call.Query)
		}
	}

	stopping := graph.NewMemoryClient()
	stopping.PushWriteError(errors.New("schema lock"))
	if err := New(stopping).EnsureSchema(context.Background()); err == nil {
		t.Fatal("expected schema error")
	}
	if got := len(stopping.WriteCalls()); got != 1 {
		t.Fatalf("expected schema setup to stop after the first failure, ran %d statements", got)
	}

	failing := New(graph.NewMemoryClient().WithError(errors.New("boom")))
	if err := failing.EnsureSchema(context.Background()); err == nil {
		t.Fatal("expected schema error")
	}
}

func TestRepository_ListContractReviews(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadRecords(graph.Record{"review": map[string]any{
		"reviewId": "CR-1",
		"clientId": "USR-1",
		"title":    "عقد إيجار",
		"status":   "pending",
		"findings": []any{},
	}})
	repo := New(mem)

	items, err := repo.ListContractReviews(context.Background(), "USR-1", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Status != domain.ReviewPending || items[0].Title != "عقد إيجار" {
		t.Fatalf("unexpected reviews %+v", items)
	}
	if got := mem.ReadCalls()[0].Params["limit"]; got != defaultLimit {
		t.Errorf("expected default limit, got %v", got)
	}
}
