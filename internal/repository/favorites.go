package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wakili/backend/internal/domain"
)

// AddFavorite links a client to a verified lawyer. Adding twice is a no-op.
func (r *Repository) AddFavorite(ctx context.Context, userID, lawyerID string, at time.Time) error {
	res, err := r.write(ctx, "add favorite", addFavoriteCypher, map[string]any{
		"userId":   userID,
		"lawyerId": lawyerID,
		"addedAt":  formatTime(at),
	})
	if err != nil {
		return err
	}
	if res.First() == nil {
		return fmt.Errorf("favorite lawyer %s: %w", lawyerID, ErrNotFound)
	}
	return nil
}

// RemoveFavorite unlinks a lawyer. Removing an absent favorite is a no-op.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, lawyerID string) error {
	_, err := r.write(ctx, "remove favorite", removeFavoriteCypher, map[string]any{
		"userId":   userID,
		"lawyerId": lawyerID,
	})
	return err
}

// ListFavorites returns the client's favorite lawyers, newest first.
func (r *Repository) ListFavorites(ctx context.Context, userID string, limit int) ([]domain.FavoriteLawyer, error) {
	_, limit = clampPage(0, limit)
	res, err := r.read(ctx, "list favorites", listFavoritesCypher, map[string]any{"userId": userID, "limit": limit})
	if err != nil {
		return nil, err
	}
	out := make([]domain.FavoriteLawyer, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, domain.FavoriteLawyer{
			Lawyer:  decodeLawyer(toMap(rec["lawyer"])),
			AddedAt: toTime(rec["addedAt"]),
		})
	}
	return out, nil
}

const addFavoriteCypher = `
MATCH (u:User {userId: $userId})
MATCH (l:Lawyer {lawyerId: $lawyerId})
WHERE l.verified = true
MERGE (u)-[f:FAVORITED]->(l)
ON CREATE SET f.addedAt = $addedAt
RETURN l.lawyerId AS lawyerId
`

const removeFavoriteCypher = `
MATCH (:User {userId: $userId})-[f:FAVORITED]->(:Lawyer {lawyerId: $lawyerId})
DELETE f
`

const listFavoritesCypher = `
MATCH (:User {userId: $userId})-[f:FAVORITED]->(l:Lawyer)
RETURN l {.*} AS lawyer, f.addedAt AS addedAt
ORDER BY f.addedAt DESC
LIMIT $limit
`
