package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ListingRepository implements domain.ListingRepository on PostgreSQL. Every
// filter is evaluated by the database; relations are loaded afterwards in
// one query per table.
type ListingRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

func NewListingRepository(db *sqlx.DB, log *logger.Logger) *ListingRepository {
	return &ListingRepository{db: db, logger: log.Named("PGListingRepository")}
}

func (r *ListingRepository) FindAvailable(ctx context.Context) ([]*domain.Listing, error) {
	query, args := buildSearchQuery(domain.Criteria{})
	return r.selectListings(ctx, query, args...)
}

func (r *ListingRepository) Search(ctx context.Context, c domain.Criteria) ([]*domain.Listing, error) {
	query, args := buildSearchQuery(c)
	r.logger.Debug("Searching listings", zap.Stringer("criteria", c), zap.Int("args", len(args)))
	return r.selectListings(ctx, query, args...)
}

// FindByID does not check status flags. Ids that are not UUIDs cannot exist
// and are reported as not found without a query.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrListingNotFound
	}

	var row listingRow
	err := r.db.GetContext(ctx, &row, "SELECT "+listingColumns+" FROM listings l WHERE l.id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing by ID", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("select listing: %w", err)
	}

	listings := []*domain.Listing{row.toDomain()}
	if err := r.hydrate(ctx, listings); err != nil {
		return nil, err
	}
	return listings[0], nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM listings"); err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

func (r *ListingRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, name FROM categories ORDER BY name"); err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("select categories: %w", err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, c := range rows {
		out = append(out, domain.Category{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (r *ListingRepository) selectListings(ctx context.Context, query string, args ...any) ([]*domain.Listing, error) {
	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error("Failed to select listings", zap.Error(err))
		return nil, fmt.Errorf("select listings: %w", err)
	}
	listings := make([]*domain.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, row.toDomain())
	}
	if err := r.hydrate(ctx, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// hydrate resolves categories, reviews and users for display.
func (r *ListingRepository) hydrate(ctx context.Context, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(listings))
	categoryIDs := make([]string, 0, len(listings))
	userIDs := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
		categoryIDs = append(categoryIDs, l.CategoryID)
		userIDs = append(userIDs, l.HostID)
	}

	var categories []categoryRow
	if err := r.db.SelectContext(ctx, &categories,
		"SELECT id, name FROM categories WHERE id = ANY($1::uuid[])", pq.Array(dedupe(categoryIDs))); err != nil {
		return fmt.Errorf("select categories: %w", err)
	}

	var reviews []reviewRow
	if err := r.db.SelectContext(ctx, &reviews,
		"SELECT id, listing_id, customer_id, rating, text, host_comments, dispute FROM reviews WHERE listing_id = ANY($1::uuid[])", pq.Array(ids)); err != nil {
		return fmt.Errorf("select reviews: %w", err)
	}
	for _, rv := range reviews {
		userIDs = append(userIDs, rv.CustomerID)
	}

	var users []userRow
	if err := r.db.SelectContext(ctx, &users,
		"SELECT id, first_name, last_name, email FROM users WHERE id = ANY($1::uuid[])", pq.Array(dedupe(userIDs))); err != nil {
		return fmt.Errorf("select users: %w", err)
	}

	categoryByID := make(map[string]*domain.Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = &domain.Category{ID: c.ID, Name: c.Name}
	}
	userByID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u.toDomain()
	}
	reviewsByListing := make(map[string][]domain.Review, len(listings))
	for _, rv := range reviews {
		review := rv.toDomain()
		review.Customer = userByID[rv.CustomerID]
		reviewsByListing[rv.ListingID] = append(reviewsByListing[rv.ListingID], review)
	}

	for _, l := range listings {
		l.Category = categoryByID[l.CategoryID]
		l.Host = userByID[l.HostID]
		l.Reviews = reviewsByListing[l.ID]
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
