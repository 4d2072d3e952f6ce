package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/graph"
)

// AddTestimonial stores a testimonial and refreshes the lawyer's rating average.
func (r *Repository) AddTestimonial(ctx context.Context, t domain.Testimonial) error {
	if t.ID == "" {
		return errors.New("testimonial id is required")
	}
	params := map[string]any{
		"testimonialId": t.ID,
		"lawyerId":      t.LawyerID,
		"props": map[string]any{
			"clientName": t.ClientName,
			"rating":     int64(t.Rating),
			"comment":    t.Comment,
			"createdAt":  formatTime(t.CreatedAt),
		},
	}
	res, err := r.write(ctx, "add testimonial "+t.ID, addTestimonialCypher, params)
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("testimonial lawyer %s: %w", t.LawyerID, ErrNotFound)
	}
	return nil
}

// ListTestimonials returns the newest testimonials of one lawyer.
func (r *Repository) ListTestimonials(ctx context.Context, lawyerID string, limit int) ([]domain.Testimonial, error) {
	_, limit = clampPage(0, limit)
	res, err := r.read(ctx, "list testimonials", lawyerTestimonialsCypher, map[string]any{"lawyerId": lawyerID, "limit": limit})
	if err != nil {
		return nil, err
	}
	return decodeTestimonials(res.Records), nil
}

// LatestTestimonials returns the newest testimonials across verified lawyers.
func (r *Repository) LatestTestimonials(ctx context.Context, limit int) ([]domain.Testimonial, error) {
	_, limit = clampPage(0, limit)
	res, err := r.read(ctx, "latest testimonials", latestTestimonialsCypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	return decodeTestimonials(res.Records), nil
}

func decodeTestimonials(records []graph.Record) []domain.Testimonial {
	out := make([]domain.Testimonial, 0, len(records))
	for _, rec := range records {
		m := toMap(rec["testimonial"])
		out = append(out, domain.Testimonial{
			ID:         toString(m["testimonialId"]),
			ClientName: toString(m["clientName"]),
			LawyerID:   toString(rec["lawyerId"]),
			Rating:     int(toInt64(m["rating"])),
			Comment:    toString(m["comment"]),
			CreatedAt:  toTime(m["createdAt"]),
		})
	}
	return out
}

const addTestimonialCypher = `
MATCH (l:Lawyer {lawyerId: $lawyerId})
MERGE (t:Testimonial {testimonialId: $testimonialId})
SET t += $props
MERGE (t)-[:ABOUT]->(l)
WITH l
MATCH (all:Testimonial)-[:ABOUT]->(l)
WITH l, avg(toFloat(all.rating)) AS rating, count(all) AS reviews
SET l.rating = round(rating * 10) / 10.0,
    l.reviewsCount = reviews
RETURN l.lawyerId AS lawyerId
`

const lawyerTestimonialsCypher = `
MATCH (t:Testimonial)-[:ABOUT]->(l:Lawyer {lawyerId: $lawyerId})
RETURN t {.*} AS testimonial, l.lawyerId AS lawyerId
ORDER BY t.createdAt DESC
LIMIT $limit
`

const latestTestimonialsCypher = `
MATCH (t:Testimonial)-[:ABOUT]->(l:Lawyer)
WHERE l.verified = true
RETURN t {.*} AS testimonial, l.lawyerId AS lawyerId
ORDER BY t.createdAt DESC
LIMIT $limit
`
