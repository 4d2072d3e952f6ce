package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wakili/backend/internal/domain"
)

// CreateContractReview stores a review request and links the assigned lawyer
// when one was chosen.
func (r *Repository) CreateContractReview(ctx context.Context, cr domain.ContractReview) error {
	if cr.ID == "" {
		return errors.New("contract review id is required")
	}
	params := map[string]any{
		"reviewId": cr.ID,
		"clientId": cr.ClientID,
		"lawyerId": cr.LawyerID,
		"props": map[string]any{
			"clientId":     cr.ClientID,
			"lawyerId":     cr.LawyerID,
			"title":        cr.Title,
			"contractType": cr.ContractType,
			"content":      cr.Content,
			"notes":        cr.Notes,
			"status":       string(cr.Status),
			"findings":     nonNil(cr.Findings),
			"createdAt":    formatTime(cr.CreatedAt),
			"updatedAt":    formatTime(cr.UpdatedAt),
		},
	}
	res, err := r.write(ctx, "create contract review "+cr.ID, createContractReviewCypher, params)
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("contract review client %s: %w", cr.ClientID, ErrNotFound)
	}
	return nil
}

// GetContractReview loads a review request by id.
func (r *Repository) GetContractReview(ctx context.Context, reviewID string) (domain.ContractReview, error) {
	res, err := r.read(ctx, "get contract review", getContractReviewCypher, map[string]any{"reviewId": reviewID})
	if err != nil {
		return domain.ContractReview{}, err
	}
	rec := res.First()
	if rec == nil {
		return domain.ContractReview{}, fmt.Errorf("contract review %s: %w", reviewID, ErrNotFound)
	}
	return decodeContractReview(toMap(rec["review"])), nil
}

// ListContractReviews returns the requests of a client, or those assigned to
// a lawyer when lawyerID is set.
func (r *Repository) ListContractReviews(ctx context.Context, clientID, lawyerID string, limit int) ([]domain.ContractReview, error) {
	_, limit = clampPage(0, limit)
	res, err := r.read(ctx, "list contract reviews", listContractReviewsCypher, map[string]any{
		"clientId": clientID,
		"lawyerId": lawyerID,
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.ContractReview, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, decodeContractReview(toMap(rec["review"])))
	}
	return out, nil
}

// UpdateContractReviewStatus moves a review to status and stores its findings.
func (r *Repository) UpdateContractReviewStatus(ctx context.Context, reviewID string, status domain.ContractReviewStatus, findings []string, at time.Time) error {
	res, err := r.write(ctx, "update contract review", updateContractReviewCypher, map[string]any{
		"reviewId":  reviewID,
		"status":    string(status),
		"findings":  nonNil(findings),
		"updatedAt": formatTime(at),
	})
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("contract review %s: %w", reviewID, ErrNotFound)
	}
	return nil
}

func decodeContractReview(m map[string]any) domain.ContractReview {
	return domain.ContractReview{
		ID:           toString(m["reviewId"]),
		ClientID:     toString(m["clientId"]),
		LawyerID:     toString(m["lawyerId"]),
		Title:        toString(m["title"]),
		ContractType: toString(m["contractType"]),
		Content:      toString(m["content"]),
		Notes:        toString(m["notes"]),
		Status:       domain.ContractReviewStatus(toString(m["status"])),
		Findings:     toStringSlice(m["findings"]),
		CreatedAt:    toTime(m["createdAt"]),
		UpdatedAt:    toTime(m["updatedAt"]),
	}
}

const createContractReviewCypher = `
MATCH (u:User {userId: $clientId})
CREATE (r:ContractReview {reviewId: $reviewId})
SET r += $props
MERGE (u)-[:REQUESTED]->(r)
WITH r
OPTIONAL MATCH (l:Lawyer {lawyerId: $lawyerId})
FOREACH (_ IN CASE WHEN l IS NULL THEN [] ELSE [1] END |
	MERGE (r)-[:ASSIGNED_TO]->(l)
)
RETURN r.reviewId AS reviewId
`

const getContractReviewCypher = `
MATCH (r:ContractReview {reviewId: $reviewId})
RETURN r {.*} AS review
`

const listContractReviewsCypher = `
MATCH (r:ContractReview)
WHERE ($clientId <> "" AND r.clientId = $clientId)
   OR ($lawyerId <> "" AND r.lawyerId = $lawyerId)
RETURN r {.*} AS review
ORDER BY r.createdAt DESC
LIMIT $limit
`

const updateContractReviewCypher = `
MATCH (r:ContractReview {reviewId: $reviewId})
SET r.status = $status, r.findings = $findings, r.updatedAt = $updatedAt
RETURN r.reviewId AS reviewId
`
