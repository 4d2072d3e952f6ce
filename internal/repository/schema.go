package repository

import (
	"context"
	"fmt"
)

// schemaStatements are idempotent. Each runs in its own schema transaction,
// one after another, since schema transactions contend on the same lock.
var schemaStatements = []string{
	`CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.userId IS UNIQUE`,
	`CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE CONSTRAINT lawyer_id IF NOT EXISTS FOR (l:Lawyer) REQUIRE l.lawyerId IS UNIQUE`,
	`CREATE CONSTRAINT booking_id IF NOT EXISTS FOR (b:Booking) REQUIRE b.bookingId IS UNIQUE`,
	`CREATE CONSTRAINT testimonial_id IF NOT EXISTS FOR (t:Testimonial) REQUIRE t.testimonialId IS UNIQUE`,
	`CREATE CONSTRAINT application_user IF NOT EXISTS FOR (a:Application) REQUIRE a.userId IS UNIQUE`,
	`CREATE CONSTRAINT contract_review_id IF NOT EXISTS FOR (r:ContractReview) REQUIRE r.reviewId IS UNIQUE`,
	`CREATE INDEX lawyer_search_name IF NOT EXISTS FOR (l:Lawyer) ON (l.searchName)`,
	`CREATE INDEX lawyer_city IF NOT EXISTS FOR (l:Lawyer) ON (l.cityKey)`,
	`CREATE INDEX application_status IF NOT EXISTS FOR (a:Application) ON (a.status)`,
}

// EnsureSchema creates the uniqueness constraints and lookup indexes.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema %q: %w", stmt, err)
		}
	}
	return nil
}
