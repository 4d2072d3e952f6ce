package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/graph"
)

// SaveApplication upserts the onboarding application of a lawyer account.
func (r *Repository) SaveApplication(ctx context.Context, app domain.Application) error {
	params, err := applicationParams(app)
	if err != nil {
		return err
	}
	res, err := r.write(ctx, "save application "+app.UserID, saveApplicationCypher, params)
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("application owner %s: %w", app.UserID, ErrNotFound)
	}
	return nil
}

// ApproveApplication stores the approved application and publishes the
// lawyer profile in one transaction.
func (r *Repository) ApproveApplication(ctx context.Context, app domain.Application, lawyer domain.Lawyer) error {
	params, err := applicationParams(app)
	if err != nil {
		return err
	}
	if lawyer.ID == "" {
		return errors.New("lawyer id is required")
	}
	_, err = r.client.ExecuteWriteBatch(ctx, []graph.Statement{
		{Query: saveApplicationCypher, Params: params},
		upsertLawyerStatement(lawyer),
	})
	if err != nil {
		return fmt.Errorf("approve application %s: %w", app.UserID, err)
	}
	return nil
}

// GetApplication loads the application of userID.
func (r *Repository) GetApplication(ctx context.Context, userID string) (domain.Application, error) {
	res, err := r.read(ctx, "get application", getApplicationCypher, map[string]any{"userId": userID})
	if err != nil {
		return domain.Application{}, err
	}
	rec := res.First()
	if rec == nil {
		return domain.Application{}, fmt.Errorf("application %s: %w", userID, ErrNotFound)
	}
	return decodeApplication(toMap(rec["application"]))
}

// ListApplications returns applications in status (all when empty), oldest submission first.
func (r *Repository) ListApplications(ctx context.Context, status string, limit int) ([]domain.Application, error) {
	_, limit = clampPage(0, limit)
	res, err := r.read(ctx, "list applications", listApplicationsCypher, map[string]any{
		"status": strings.ToLower(strings.TrimSpace(status)),
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Application, 0, len(res.Records))
	for _, rec := range res.Records {
		app, err := decodeApplication(toMap(rec["application"]))
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, nil
}

func applicationParams(app domain.Application) (map[string]any, error) {
	if app.UserID == "" {
		return nil, errors.New("application user id is required")
	}
	steps := make([]int64, 0, len(app.CompletedSteps))
	for _, s := range app.CompletedSteps {
		steps = append(steps, int64(s))
	}
	props := map[string]any{
		"status":          string(app.Status),
		"currentStep":     int64(app.CurrentStep),
		"completedSteps":  steps,
		"rejectionReason": app.RejectionReason,
		"submittedAt":     formatTimePtr(app.SubmittedAt),
		"reviewedAt":      formatTimePtr(app.ReviewedAt),
		"createdAt":       formatTime(app.CreatedAt),
		"updatedAt":       formatTime(app.UpdatedAt),
	}
	payloads := []struct {
		key   string
		value any
		set   bool
	}{
		{"basicInfoJson", app.BasicInfo, app.BasicInfo != nil},
		{"educationJson", app.Education, app.Education != nil},
		{"experienceJson", app.Experience, app.Experience != nil},
		{"verificationJson", app.Verification, app.Verification != nil},
	}
	for _, p := range payloads {
		if !p.set {
			props[p.key] = ""
			continue
		}
		encoded, err := json.Marshal(p.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.key, err)
		}
		props[p.key] = string(encoded)
	}
	return map[string]any{"userId": app.UserID, "props": props}, nil
}

func decodeApplication(m map[string]any) (domain.Application, error) {
	app := domain.Application{
		UserID:          toString(m["userId"]),
		Status:          domain.ApplicationStatus(toString(m["status"])),
		CurrentStep:     domain.Step(toInt64(m["currentStep"])),
		RejectionReason: toString(m["rejectionReason"]),
		SubmittedAt:     toTimePtr(m["submittedAt"]),
		ReviewedAt:      toTimePtr(m["reviewedAt"]),
		CreatedAt:       toTime(m["createdAt"]),
		UpdatedAt:       toTime(m["updatedAt"]),
	}
	if raw, ok := m["completedSteps"].([]any); ok {
		for _, v := range raw {
			app.CompletedSteps = append(app.CompletedSteps, domain.Step(toInt64(v)))
		}
	}

	var err error
	if app.BasicInfo, err = decodePayload[domain.BasicInfoData](m["basicInfoJson"]); err != nil {
		return domain.Application{}, err
	}
	if app.Education, err = decodePayload[domain.EducationData](m["educationJson"]); err != nil {
		return domain.Application{}, err
	}
	if app.Experience, err = decodePayload[domain.ExperienceData](m["experienceJson"]); err != nil {
		return domain.Application{}, err
	}
	if app.Verification, err = decodePayload[domain.VerificationData](m["verificationJson"]); err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

func decodePayload[T any](val any) (*T, error) {
	raw := toString(val)
	if raw == "" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode application payload: %w", err)
	}
	return &out, nil
}

const saveApplicationCypher = `
MATCH (u:User {userId: $userId})
MERGE (a:Application {userId: $userId})
SET a += $props
MERGE (u)-[:APPLIED]->(a)
RETURN a.userId AS userId
`

const getApplicationCypher = `
MATCH (a:Application {userId: $userId})
RETURN a {.*} AS application
`

const listApplicationsCypher = `
MATCH (a:Application)
WHERE $status = "" OR a.status = $status
RETURN a {.*} AS application
ORDER BY coalesce(a.submittedAt, a.updatedAt) ASC
LIMIT $limit
`
