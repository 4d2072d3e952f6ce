package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/graph"
	"github.com/wakili/backend/internal/textnorm"
)

// ListLawyersOptions defines filters and pagination for the lawyer directory.
type ListLawyersOptions struct {
	Offset         int
	Limit          int
	Search         string
	Specialization string
	City           string
	Language       string
	MinRating      float64
	MaxFee         float64
	AvailableOnly  bool
	SortField      string
	SortOrder      string
}

// UpsertLawyer creates or refreshes a lawyer profile and links it to its
// owning account when UserID is set.
func (r *Repository) UpsertLawyer(ctx context.Context, lawyer domain.Lawyer) error {
	if lawyer.ID == "" {
		return errors.New("lawyer id is required")
	}
	if _, err := r.write(ctx, "upsert lawyer "+lawyer.ID, upsertLawyerCypher, lawyerParams(lawyer)); err != nil {
		return err
	}
	return nil
}

// GetLawyer loads a lawyer. Unverified profiles are hidden unless includeUnverified.
func (r *Repository) GetLawyer(ctx context.Context, lawyerID string, includeUnverified bool) (domain.Lawyer, error) {
	res, err := r.read(ctx, "get lawyer", getLawyerCypher, map[string]any{"lawyerId": lawyerID})
	if err != nil {
		return domain.Lawyer{}, err
	}
	rec := res.First()
	if rec == nil {
		return domain.Lawyer{}, fmt.Errorf("lawyer %s: %w", lawyerID, ErrNotFound)
	}
	lawyer := decodeLawyer(toMap(rec["lawyer"]))
	if !lawyer.Verified && !includeUnverified {
		return domain.Lawyer{}, fmt.Errorf("lawyer %s: %w", lawyerID, ErrNotFound)
	}
	return lawyer, nil
}

// GetLawyerByUserID loads the profile owned by a lawyer account.
func (r *Repository) GetLawyerByUserID(ctx context.Context, userID string) (domain.Lawyer, error) {
	res, err := r.read(ctx, "get lawyer by user", getLawyerByUserCypher, map[string]any{"userId": userID})
	if err != nil {
		return domain.Lawyer{}, err
	}
	rec := res.First()
	if rec == nil {
		return domain.Lawyer{}, fmt.Errorf("lawyer for user %s: %w", userID, ErrNotFound)
	}
	return decodeLawyer(toMap(rec["lawyer"])), nil
}

// ListLawyers returns verified lawyers matching the provided filters.
func (r *Repository) ListLawyers(ctx context.Context, opts ListLawyersOptions) (domain.LawyerListResult, error) {
	offset, limit := clampPage(opts.Offset, opts.Limit)

	params := map[string]any{
		"search":         textnorm.Fold(opts.Search),
		"specialization": strings.ToLower(strings.TrimSpace(opts.Specialization)),
		"city":           textnorm.Fold(opts.City),
		"language":       strings.ToLower(strings.TrimSpace(opts.Language)),
		"minRating":      opts.MinRating,
		"maxFee":         opts.MaxFee,
		"availableOnly":  opts.AvailableOnly,
		"skip":           offset,
		"limit":          limit,
	}

	query := fmt.Sprintf(listLawyersCypherTemplate, lawyerFilterClause, lawyerOrderClause(opts.SortField, opts.SortOrder))
	res, err := r.read(ctx, "list lawyers query", query, params)
	if err != nil {
		return domain.LawyerListResult{}, err
	}

	items := make([]domain.Lawyer, 0, len(res.Records))
	for _, record := range res.Records {
		items = append(items, decodeLawyer(toMap(record["lawyer"])))
	}

	total, err := r.count(ctx, "count lawyers query", fmt.Sprintf(countLawyersCypherTemplate, lawyerFilterClause), params)
	if err != nil {
		return domain.LawyerListResult{}, err
	}
	return domain.LawyerListResult{Items: items, Total: total}, nil
}

func lawyerParams(l domain.Lawyer) map[string]any {
	return map[string]any{
		"lawyerId": l.ID,
		"userId":   l.UserID,
		"props":    lawyerProperties(l),
	}
}

func lawyerProperties(l domain.Lawyer) map[string]any {
	props := map[string]any{
		"userId":            l.UserID,
		"fullName":          l.FullName,
		"searchName":        textnorm.Fold(l.FullName),
		"title":             l.Title,
		"city":              l.City,
		"cityKey":           textnorm.Fold(l.City),
		"specializations":   nonNil(l.Specializations),
		"languages":         nonNil(l.Languages),
		"yearsOfExperience": int64(l.YearsOfExperience),
		"consultationFee":   l.ConsultationFee,
		"bio":               l.Bio,
		"avatarUrl":         l.AvatarURL,
		"verified":          l.Verified,
		"available":         l.Available,
		"updatedAt":         formatTime(l.UpdatedAt),
	}
	if !l.CreatedAt.IsZero() {
		props["createdAt"] = formatTime(l.CreatedAt)
	}
	return props
}

func decodeLawyer(m map[string]any) domain.Lawyer {
	return domain.Lawyer{
		ID:                toString(m["lawyerId"]),
		UserID:            toString(m["userId"]),
		FullName:          toString(m["fullName"]),
		Title:             toString(m["title"]),
		City:              toString(m["city"]),
		Specializations:   toStringSlice(m["specializations"]),
		Languages:         toStringSlice(m["languages"]),
		YearsOfExperience: int(toInt64(m["yearsOfExperience"])),
		ConsultationFee:   toFloat64(m["consultationFee"]),
		Rating:            toFloat64(m["rating"]),
		ReviewsCount:      toInt64(m["reviewsCount"]),
		Bio:               toString(m["bio"]),
		AvatarURL:         toString(m["avatarUrl"]),
		Verified:          toBool(m["verified"]),
		Available:         toBool(m["available"]),
		CreatedAt:         toTime(m["createdAt"]),
		UpdatedAt:         toTime(m["updatedAt"]),
	}
}

// upsertLawyerStatement is shared with the application approval batch.
func upsertLawyerStatement(l domain.Lawyer) graph.Statement {
	return graph.Statement{Query: upsertLawyerCypher, Params: lawyerParams(l)}
}

func lawyerOrderClause(field, order string) string {
	dir := "DESC"
	if strings.EqualFold(order, "ASC") {
		dir = "ASC"
	}
	switch strings.ToLower(field) {
	case "fee":
		return fmt.Sprintf("coalesce(l.consultationFee, 0.0) %s, l.lawyerId", dir)
	case "experience":
		return fmt.Sprintf("coalesce(l.yearsOfExperience, 0) %s, l.lawyerId", dir)
	case "name":
		return fmt.Sprintf("l.searchName %s, l.lawyerId", dir)
	default:
		return fmt.Sprintf("coalesce(l.rating, 0.0) %s, coalesce(l.reviewsCount, 0) DESC, l.lawyerId", dir)
	}
}

const upsertLawyerCypher = `
MERGE (l:Lawyer {lawyerId: $lawyerId})
ON CREATE SET l.rating = 0.0, l.reviewsCount = 0
SET l += $props
WITH l
OPTIONAL MATCH (u:User {userId: $userId})
FOREACH (_ IN CASE WHEN u IS NULL THEN [] ELSE [1] END |
	MERGE (u)-[:HAS_PROFILE]->(l)
)
RETURN l.lawyerId AS lawyerId
`

const getLawyerCypher = `
MATCH (l:Lawyer {lawyerId: $lawyerId})
RETURN l {.*} AS lawyer
`

const getLawyerByUserCypher = `
MATCH (:User {userId: $userId})-[:HAS_PROFILE]->(l:Lawyer)
RETURN l {.*} AS lawyer
`

const listLawyersCypherTemplate = `
MATCH (l:Lawyer)
%s
RETURN l {.*} AS lawyer
ORDER BY %s
SKIP $skip LIMIT $limit
`

const countLawyersCypherTemplate = `
MATCH (l:Lawyer)
%s
RETURN count(l) AS total
`

const lawyerFilterClause = `
WHERE l.verified = true
  AND ($search = "" OR l.searchName CONTAINS $search OR l.cityKey CONTAINS $search)
  AND ($specialization = "" OR $specialization IN l.specializations)
  AND ($city = "" OR l.cityKey = $city)
  AND ($language = "" OR $language IN l.languages)
  AND ($minRating <= 0 OR coalesce(l.rating, 0.0) >= $minRating)
  AND ($maxFee <= 0 OR coalesce(l.consultationFee, 0.0) <= $maxFee)
  AND ($availableOnly = false OR l.available = true)
`
